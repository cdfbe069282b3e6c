package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

func seedTeams(t *testing.T, s *Store, n int) (models.Discipline, []int) {
	t.Helper()
	ctx := context.Background()

	d := models.Discipline{Name: "Fútbol 5"}
	require.NoError(t, s.Disciplines().Create(ctx, &d))

	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		team := models.Team{Name: string(rune('A' + i)), DisciplineID: d.ID}
		require.NoError(t, s.Teams().Create(ctx, &team))
		ids = append(ids, team.ID)
	}
	return d, ids
}

func TestDisciplineConstraints(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	d, _ := seedTeams(t, s, 1)

	dup := models.Discipline{Name: d.Name}
	assert.ErrorIs(t, s.Disciplines().Create(ctx, &dup), repositories.ErrDisciplineNameConflict)

	referenced, err := s.Disciplines().IsReferenced(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, referenced)
	assert.ErrorIs(t, s.Disciplines().Delete(ctx, d.ID), repositories.ErrDisciplineInUse)

	_, err = s.Disciplines().GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrDisciplineNotFound)
}

func TestPlayerNumberUniquePerTeam(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, teams := seedTeams(t, s, 2)

	first := models.Player{Name: "Riquelme", TeamID: teams[0], Number: 10}
	require.NoError(t, s.Players().Create(ctx, &first))

	clash := models.Player{Name: "Aimar", TeamID: teams[0], Number: 10}
	assert.ErrorIs(t, s.Players().Create(ctx, &clash), repositories.ErrPlayerNumberConflict)

	other := models.Player{Name: "Aimar", TeamID: teams[1], Number: 10}
	require.NoError(t, s.Players().Create(ctx, &other))

	orphan := models.Player{Name: "Nadie", TeamID: 999, Number: 1}
	assert.ErrorIs(t, s.Players().Create(ctx, &orphan), repositories.ErrPlayerTeamInvalid)

	players, err := s.Players().List(ctx, repositories.PlayerFilter{TeamIDs: []int{teams[1]}})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, other.ID, players[0].ID)
}

func TestMutateAssignsMatchIDsAndKeepsStateOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	d, teams := seedTeams(t, s, 2)

	c := models.Championship{Name: "Clausura", DisciplineID: d.ID, TeamIDs: teams, GroupCount: 1, QualifiersPerGroup: 1, Status: models.StatusDraft}
	require.NoError(t, s.Championships().Create(ctx, &c))

	home, away := teams[0], teams[1]
	group := "Grupo A"
	updated, err := s.Championships().Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Status = models.StatusGroupsGenerated
		c.Groups = []models.Group{{Name: group, TeamIDs: teams}}
		c.Matches = []models.Match{{Phase: models.PhaseGroup, GroupName: &group, Order: 1, HomeTeamID: &home, AwayTeamID: &away, Status: models.MatchPending}}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated.Matches, 1)
	matchID := updated.Matches[0].ID
	assert.NotZero(t, matchID)
	assert.Equal(t, c.ID, updated.Matches[0].ChampionshipID)

	owner, err := s.Matches().ChampionshipIDOf(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, owner)

	boom := errors.New("boom")
	_, err = s.Championships().Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Status = models.StatusCompleted
		c.Matches = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.Championships().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGroupsGenerated, stored.Status)
	assert.Len(t, stored.Matches, 1)

	// Results returned by the store are copies.
	stored.Groups[0].TeamIDs[0] = 999
	again, err := s.Championships().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, teams[0], again.Groups[0].TeamIDs[0])
}

func TestTeamDeleteRespectsActiveChampionships(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	d, teams := seedTeams(t, s, 2)

	p := models.Player{Name: "Palermo", TeamID: teams[0], Number: 9}
	require.NoError(t, s.Players().Create(ctx, &p))

	c := models.Championship{Name: "Copa", DisciplineID: d.ID, TeamIDs: teams, GroupCount: 1, QualifiersPerGroup: 1, Status: models.StatusDraft}
	require.NoError(t, s.Championships().Create(ctx, &c))

	assert.ErrorIs(t, s.Teams().Delete(ctx, teams[0]), repositories.ErrTeamInUse)

	champion := teams[0]
	_, err := s.Championships().Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Status = models.StatusCompleted
		c.ChampionID = &champion
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Teams().Delete(ctx, teams[0]))

	_, err = s.Players().GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrPlayerNotFound)

	stored, err := s.Championships().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{teams[1]}, stored.TeamIDs)
	assert.Nil(t, stored.ChampionID)
}

func TestMatchListFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	d, teams := seedTeams(t, s, 2)

	c := models.Championship{Name: "Liga", DisciplineID: d.ID, TeamIDs: teams, GroupCount: 1, QualifiersPerGroup: 1, Status: models.StatusDraft}
	require.NoError(t, s.Championships().Create(ctx, &c))

	home, away := teams[0], teams[1]
	group := "Grupo A"
	final := models.RoundFinal
	_, err := s.Championships().Mutate(ctx, c.ID, func(c *models.Championship) error {
		c.Matches = []models.Match{
			{Phase: models.PhaseKnockout, Round: &final, Order: 1, HomeTeamID: &home, AwayTeamID: &away, Status: models.MatchPending},
			{Phase: models.PhaseGroup, GroupName: &group, Order: 1, HomeTeamID: &home, AwayTeamID: &away, Status: models.MatchPending},
		}
		return nil
	})
	require.NoError(t, err)

	all, err := s.Matches().List(ctx, repositories.MatchFilter{ChampionshipID: &c.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.PhaseGroup, all[0].Phase)

	phase := models.PhaseKnockout
	knockout, err := s.Matches().List(ctx, repositories.MatchFilter{ChampionshipID: &c.ID, Phase: &phase})
	require.NoError(t, err)
	require.Len(t, knockout, 1)
	assert.Equal(t, models.RoundFinal, *knockout[0].Round)

	_, err = s.Matches().ChampionshipIDOf(ctx, 12345)
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
}
