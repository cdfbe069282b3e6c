package brackets

import (
	"context"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate creates a single round robin: every team meets every other team once.
// The earlier team in group order plays at home. A group of k teams yields k(k-1)/2 fixtures.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]BracketMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	teams := params.TeamIDs
	matches := make([]BracketMatch, 0, len(teams)*(len(teams)-1)/2+1)
	order := 0

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			order++
			matches = append(matches, BracketMatch{
				Order:      order,
				HomeTeamID: teams[i],
				AwayTeamID: teams[j],
			})
		}
	}

	return matches, nil
}
