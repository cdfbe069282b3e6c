package brackets

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
)

var testPlayedAt = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestChampionship(teams, groups, qualifiers int) (*models.Championship, map[int]string) {
	c := &models.Championship{
		ID:                 7,
		Name:               "Apertura",
		DisciplineID:       1,
		GroupCount:         groups,
		QualifiersPerGroup: qualifiers,
		Status:             models.StatusDraft,
	}
	names := make(map[int]string, teams)
	for i := 1; i <= teams; i++ {
		c.TeamIDs = append(c.TeamIDs, i)
		names[i] = fmt.Sprintf("Team %02d", i)
	}
	return c, names
}

// assignIDs mimics the store: new matches get the next free id.
func assignIDs(c *models.Championship) {
	next := 1
	for _, m := range c.Matches {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	for i := range c.Matches {
		if c.Matches[i].ID == 0 {
			c.Matches[i].ID = next
			next++
		}
	}
}

// playAll records score for every pending match of the given phase.
func playAll(t *testing.T, c *models.Championship, phase models.MatchPhase, score func(m models.Match) (int, int)) {
	t.Helper()
	assignIDs(c)
	for _, m := range c.Matches {
		if m.Phase != phase || m.IsPlayed() {
			continue
		}
		home, away := score(m)
		_, err := RecordResult(c, m.ID, home, away, testPlayedAt)
		require.NoError(t, err)
	}
}

// lowerIDWins makes the team with the lower id win by the id difference.
func lowerIDWins(m models.Match) (int, int) {
	h, a := *m.HomeTeamID, *m.AwayTeamID
	if h < a {
		return a - h, 0
	}
	return 0, h - a
}

func countByRound(c *models.Championship, round models.KnockoutRound) int {
	return len(KnockoutRoundMatches(c, round))
}
