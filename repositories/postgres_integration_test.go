//go:build integration

package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/db"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./repositories/...
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, db.MigrateUp(url, logger))
	conn, err := db.Connect(context.Background(), url, db.PoolOptions{}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`TRUNCATE matches, championship_groups, championship_teams, championships,
		players, teams, disciplines, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

type fixture struct {
	teams         repositories.TeamRepository
	championships repositories.ChampionshipRepository
	matches       repositories.MatchRepository
	teamIDs       []int
	championship  *models.Championship
}

// newFixture stores a discipline, n teams and a draft championship enlisting them.
func newFixture(t *testing.T, conn *sql.DB, n int) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		teams:         repositories.NewPostgresTeamRepository(conn),
		championships: repositories.NewPostgresChampionshipRepository(conn),
		matches:       repositories.NewPostgresMatchRepository(conn),
	}

	discipline := &models.Discipline{Name: "Fútbol 5"}
	require.NoError(t, repositories.NewPostgresDisciplineRepository(conn).Create(ctx, discipline))

	for i := 1; i <= n; i++ {
		team := &models.Team{Name: fmt.Sprintf("Team %02d", i), DisciplineID: discipline.ID}
		require.NoError(t, f.teams.Create(ctx, team))
		f.teamIDs = append(f.teamIDs, team.ID)
	}

	f.championship = &models.Championship{
		Name:               "Apertura",
		DisciplineID:       discipline.ID,
		TeamIDs:            f.teamIDs,
		GroupCount:         1,
		QualifiersPerGroup: 2,
		Status:             models.StatusDraft,
	}
	require.NoError(t, f.championships.Create(ctx, f.championship))
	return f
}

func groupMatch(order, home, away int) models.Match {
	group := "Grupo A"
	return models.Match{
		Phase:      models.PhaseGroup,
		GroupName:  &group,
		Order:      order,
		HomeTeamID: &home,
		AwayTeamID: &away,
		Status:     models.MatchPending,
	}
}

// generateGroups stores one group with every team and a match for each pair
// of teams in the order they were enlisted.
func (f *fixture) generateGroups(t *testing.T) *models.Championship {
	t.Helper()
	c, err := f.championships.Mutate(context.Background(), f.championship.ID, func(c *models.Championship) error {
		c.Status = models.StatusGroupsGenerated
		c.Groups = []models.Group{{Name: "Grupo A", TeamIDs: append([]int{}, c.TeamIDs...)}}
		c.Matches = nil
		for i := 0; i < len(c.TeamIDs); i++ {
			for j := i + 1; j < len(c.TeamIDs); j++ {
				c.Matches = append(c.Matches, groupMatch(len(c.Matches), c.TeamIDs[i], c.TeamIDs[j]))
			}
		}
		return nil
	})
	require.NoError(t, err)
	return c
}

func TestPostgresMutateAssignsAndDeletesMatches(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, conn, 3)

	c := f.generateGroups(t)
	require.Len(t, c.Matches, 3)
	for _, m := range c.Matches {
		assert.Positive(t, m.ID)
		assert.Equal(t, c.ID, m.ChampionshipID)
	}

	stored, err := f.championships.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGroupsGenerated, stored.Status)
	assert.Equal(t, []models.Group{{Name: "Grupo A", TeamIDs: f.teamIDs}}, stored.Groups)
	require.Len(t, stored.Matches, 3)

	// Regenerating drops every match the aggregate no longer holds.
	kept, dropped := c.Matches[0], c.Matches[1:]
	c, err = f.championships.Mutate(ctx, c.ID, func(c *models.Championship) error {
		home, away := 2, 1
		c.Matches = c.Matches[:1]
		c.Matches[0].HomeScore, c.Matches[0].AwayScore = &home, &away
		c.Matches[0].Status = models.MatchPlayed
		c.Matches = append(c.Matches, groupMatch(1, f.teamIDs[2], f.teamIDs[1]))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, c.Matches, 2)
	assert.Equal(t, kept.ID, c.Matches[0].ID)
	assert.NotContains(t, []int{dropped[0].ID, dropped[1].ID}, c.Matches[1].ID)

	for _, m := range dropped {
		_, err := f.matches.ChampionshipIDOf(ctx, m.ID)
		assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
	}
	played := models.MatchPlayed
	matches, err := f.matches.List(ctx, repositories.MatchFilter{ChampionshipID: &c.ID, Status: &played})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, kept.ID, matches[0].ID)
	assert.Equal(t, 2, *matches[0].HomeScore)

	// Clearing every match deletes them all.
	_, err = f.championships.Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Status = models.StatusDraft
		c.Groups = nil
		c.Matches = nil
		return nil
	})
	require.NoError(t, err)
	matches, err = f.matches.List(ctx, repositories.MatchFilter{ChampionshipID: &c.ID})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPostgresMutateRollsBack(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, conn, 3)
	before := f.generateGroups(t)

	errStop := errors.New("stop")
	_, err := f.championships.Mutate(ctx, before.ID, func(c *models.Championship) error {
		c.Name = "Clausura"
		c.Matches = nil
		return errStop
	})
	assert.ErrorIs(t, err, errStop)

	// A failing write also leaves the stored aggregate untouched.
	_, err = f.championships.Mutate(ctx, before.ID, func(c *models.Championship) error {
		c.Name = "Clausura"
		c.TeamIDs = append(c.TeamIDs, 9999)
		return nil
	})
	assert.ErrorIs(t, err, repositories.ErrChampionshipTeamInvalid)

	after, err := f.championships.GetByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apertura", after.Name)
	assert.Equal(t, f.teamIDs, after.TeamIDs)
	assert.Len(t, after.Matches, len(before.Matches))

	_, err = f.championships.Mutate(ctx, before.ID+100, func(*models.Championship) error { return nil })
	assert.ErrorIs(t, err, repositories.ErrChampionshipNotFound)
}

func TestPostgresTeamDeleteDetachesFinishedChampionships(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, conn, 3)
	c := f.generateGroups(t)
	gone := f.teamIDs[0]

	assert.ErrorIs(t, f.teams.Delete(ctx, gone), repositories.ErrTeamInUse)

	_, err := f.championships.Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Status = models.StatusCompleted
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, f.teams.Delete(ctx, gone))
	assert.ErrorIs(t, f.teams.Delete(ctx, gone), repositories.ErrTeamNotFound)
	_, err = f.teams.GetByID(ctx, gone)
	assert.ErrorIs(t, err, repositories.ErrTeamNotFound)

	stored, err := f.championships.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teamIDs[1:], stored.TeamIDs)
	require.Len(t, stored.Groups, 1)
	assert.Equal(t, f.teamIDs[1:], stored.Groups[0].TeamIDs)

	require.Len(t, stored.Matches, 3)
	for _, m := range stored.Matches {
		if m.HomeTeamID != nil {
			assert.NotEqual(t, gone, *m.HomeTeamID)
		}
		if m.AwayTeamID != nil {
			assert.NotEqual(t, gone, *m.AwayTeamID)
		}
	}
	assert.Nil(t, stored.Matches[0].HomeTeamID, "matches keep their rows with the team cleared")
}
