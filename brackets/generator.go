package brackets

import (
	"context"

	"github.com/leonelm2/PotreroMobile/models"
)

// BracketMatch is a fixture produced by a generator before it is attached to a championship.
type BracketMatch struct {
	Order      int
	HomeTeamID int
	AwayTeamID int
}

type GenerateParams struct {
	// TeamIDs are group members in group order, or seeds in seed order.
	TeamIDs []int
}

type FixtureGenerator interface {
	Generate(ctx context.Context, params GenerateParams) ([]BracketMatch, error)

	GetName() string
}

func toGroupMatches(championshipID int, groupName string, fixtures []BracketMatch) []models.Match {
	out := make([]models.Match, 0, len(fixtures))
	for _, f := range fixtures {
		name := groupName
		out = append(out, newMatch(championshipID, models.PhaseGroup, &name, nil, f))
	}
	return out
}

func toKnockoutMatches(championshipID int, round models.KnockoutRound, fixtures []BracketMatch) []models.Match {
	out := make([]models.Match, 0, len(fixtures))
	for _, f := range fixtures {
		r := round
		out = append(out, newMatch(championshipID, models.PhaseKnockout, nil, &r, f))
	}
	return out
}

func newMatch(championshipID int, phase models.MatchPhase, group *string, round *models.KnockoutRound, f BracketMatch) models.Match {
	home, away := f.HomeTeamID, f.AwayTeamID
	return models.Match{
		ChampionshipID: championshipID,
		Phase:          phase,
		GroupName:      group,
		Round:          round,
		Order:          f.Order,
		HomeTeamID:     &home,
		AwayTeamID:     &away,
		Status:         models.MatchPending,
	}
}
