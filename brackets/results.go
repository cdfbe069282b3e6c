package brackets

import (
	"fmt"
	"time"

	"github.com/leonelm2/PotreroMobile/models"
)

// RecordResult stores the score of a match and marks it played.
// Group results are frozen once the bracket exists, and a knockout result is
// frozen once a later round has been generated from it.
func RecordResult(c *models.Championship, matchID, homeScore, awayScore int, playedAt time.Time) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("%w: got %d-%d", ErrNegativeScore, homeScore, awayScore)
	}
	if c.Status == models.StatusCompleted {
		return nil, ErrChampionshipClosed
	}

	m := c.MatchByID(matchID)
	if m == nil {
		return nil, fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
	}
	if m.HomeTeamID == nil || m.AwayTeamID == nil {
		return nil, ErrMatchNotReady
	}

	switch m.Phase {
	case models.PhaseGroup:
		if c.Status != models.StatusGroupsGenerated {
			return nil, ErrGroupStageClosed
		}
	case models.PhaseKnockout:
		latest, _ := CurrentRound(c)
		if m.Round == nil || *m.Round != latest {
			return nil, ErrRoundClosed
		}
	}

	home, away := homeScore, awayScore
	at := playedAt.UTC()
	m.HomeScore = &home
	m.AwayScore = &away
	m.Status = models.MatchPlayed
	m.PlayedAt = &at

	return m, nil
}

// Finalize is the manual administrator transition to completed.
// It bypasses normal progression and is a no-op on a completed championship.
func Finalize(c *models.Championship) {
	if c.Status == models.StatusCompleted {
		return
	}
	if round, matches := CurrentRound(c); round == models.RoundFinal && len(matches) == 1 {
		if id, ok := matches[0].WinnerID(); ok {
			c.ChampionID = &id
		}
	}
	c.Status = models.StatusCompleted
}
