package brackets

import (
	"context"
	"fmt"

	"github.com/leonelm2/PotreroMobile/models"
)

// supportedBracketSizes maps a bracket size to the label of its first round.
var supportedBracketSizes = []struct {
	size  int
	round models.KnockoutRound
}{
	{2, models.RoundFinal},
	{4, models.RoundSemifinal},
	{8, models.RoundQuarterfinal},
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() FixtureGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate pairs seeds for the first round in standard bracket order, so that
// seed 1 meets the last seed, and seeds 1 and 2 can only meet in the final
// once winners are paired match by match.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]BracketMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seeds := params.TeamIDs
	if len(seeds) < 2 {
		return nil, ErrTooFewTeams
	}
	if _, ok := FirstRound(len(seeds)); !ok {
		return nil, qualifierCountError(len(seeds))
	}

	positions := SeedPositions(len(seeds))
	matches := make([]BracketMatch, 0, len(seeds)/2)
	for i := 0; i < len(positions); i += 2 {
		matches = append(matches, BracketMatch{
			Order:      i/2 + 1,
			HomeTeamID: seeds[positions[i]-1],
			AwayTeamID: seeds[positions[i+1]-1],
		})
	}

	return matches, nil
}

// SeedPositions returns the 1-based seeds in bracket order for a power-of-two size.
// For 8: 1 8 4 5 2 7 3 6.
func SeedPositions(size int) []int {
	order := []int{1}
	for len(order) < size {
		sum := 2*len(order) + 1
		next := make([]int, 0, 2*len(order))
		for _, s := range order {
			next = append(next, s, sum-s)
		}
		order = next
	}
	return order
}

// FirstRound returns the round label a bracket of the given size starts with.
func FirstRound(size int) (models.KnockoutRound, bool) {
	for _, s := range supportedBracketSizes {
		if s.size == size {
			return s.round, true
		}
	}
	return "", false
}

// requiredQualifiers returns the smallest supported bracket size holding have teams.
func requiredQualifiers(have int) int {
	for _, s := range supportedBracketSizes {
		if have <= s.size {
			return s.size
		}
	}
	return supportedBracketSizes[len(supportedBracketSizes)-1].size
}

func qualifierCountError(have int) error {
	largest := supportedBracketSizes[len(supportedBracketSizes)-1].size
	if have > largest {
		return fmt.Errorf("%w: %d qualifiers, bracket sizes above %d are not supported", ErrQualifierCount, have, largest)
	}
	return fmt.Errorf("%w: %d qualifiers cannot fill a bracket without byes, %d required (supported sizes: 2, 4, 8)",
		ErrQualifierCount, have, requiredQualifiers(have))
}
