package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
)

func TestSeedPositions(t *testing.T) {
	assert.Equal(t, []int{1, 2}, SeedPositions(2))
	assert.Equal(t, []int{1, 4, 2, 3}, SeedPositions(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, SeedPositions(8))
}

func TestSingleEliminationFirstRound(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	fixtures, err := gen.Generate(context.Background(), GenerateParams{TeamIDs: []int{11, 12, 13, 14, 15, 16, 17, 18}})
	require.NoError(t, err)

	assert.Equal(t, []BracketMatch{
		{Order: 1, HomeTeamID: 11, AwayTeamID: 18},
		{Order: 2, HomeTeamID: 14, AwayTeamID: 15},
		{Order: 3, HomeTeamID: 12, AwayTeamID: 17},
		{Order: 4, HomeTeamID: 13, AwayTeamID: 16},
	}, fixtures)

	_, err = gen.Generate(context.Background(), GenerateParams{TeamIDs: []int{1, 2, 3, 4, 5, 6}})
	assert.ErrorIs(t, err, ErrQualifierCount)
	assert.Contains(t, err.Error(), "8 required")

	_, err = gen.Generate(context.Background(), GenerateParams{TeamIDs: []int{1}})
	assert.ErrorIs(t, err, ErrTooFewTeams)
}

func TestUnsupportedBracketSizes(t *testing.T) {
	tests := []struct {
		teams   int
		message string
	}{
		{3, "4 required"},
		{6, "8 required"},
		{12, "bracket sizes above 8 are not supported"},
		{16, "bracket sizes above 8 are not supported"},
	}
	gen := NewSingleEliminationGenerator()
	for _, tt := range tests {
		ids := make([]int, tt.teams)
		for i := range ids {
			ids[i] = i + 1
		}
		_, err := gen.Generate(context.Background(), GenerateParams{TeamIDs: ids})
		require.ErrorIs(t, err, ErrQualifierCount, "%d teams", tt.teams)
		assert.Contains(t, err.Error(), tt.message, "%d teams", tt.teams)
	}

	_, err := gen.Generate(context.Background(), GenerateParams{TeamIDs: make([]int, 16)})
	assert.NotContains(t, err.Error(), "required")
}

func TestQualifiersAreSeededRankByRank(t *testing.T) {
	c, names := newTestChampionship(8, 2, 2)
	require.NoError(t, GenerateGroupStage(context.Background(), c))
	playAll(t, c, models.PhaseGroup, lowerIDWins)

	// Grupo A = 1,3,5,7 and Grupo B = 2,4,6,8; lower ids win every match.
	assert.Equal(t, []int{1, 2, 3, 4}, Qualifiers(c, names))
}

func TestEightTeamsTwoGroupsScenario(t *testing.T) {
	ctx := context.Background()
	c, names := newTestChampionship(8, 2, 2)

	require.NoError(t, GenerateGroupStage(ctx, c))
	require.Len(t, c.Matches, 12)
	playAll(t, c, models.PhaseGroup, lowerIDWins)

	require.NoError(t, GenerateKnockout(ctx, c, names))
	assert.Equal(t, models.StatusKnockout, c.Status)

	semis := KnockoutRoundMatches(c, models.RoundSemifinal)
	require.Len(t, semis, 2)
	// Seeds 1..4 = A1, B1, A2, B2: 1v4 then 2v3.
	assert.Equal(t, []int{1, 4}, []int{*semis[0].HomeTeamID, *semis[0].AwayTeamID})
	assert.Equal(t, []int{2, 3}, []int{*semis[1].HomeTeamID, *semis[1].AwayTeamID})

	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))

	final := KnockoutRoundMatches(c, models.RoundFinal)
	require.Len(t, final, 1)
	assert.Equal(t, []int{1, 2}, []int{*final[0].HomeTeamID, *final[0].AwayTeamID})

	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))

	assert.Equal(t, models.StatusCompleted, c.Status)
	require.NotNil(t, c.ChampionID)
	assert.Equal(t, 1, *c.ChampionID)
	assert.Len(t, c.MatchesInPhase(models.PhaseKnockout), 3)
}

func TestEightQualifiersProgression(t *testing.T) {
	ctx := context.Background()
	c, names := newTestChampionship(16, 4, 2)

	require.NoError(t, GenerateGroupStage(ctx, c))
	playAll(t, c, models.PhaseGroup, lowerIDWins)
	require.NoError(t, GenerateKnockout(ctx, c, names))

	assert.Equal(t, 4, countByRound(c, models.RoundQuarterfinal))

	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))
	assert.Equal(t, 2, countByRound(c, models.RoundSemifinal))

	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))
	assert.Equal(t, 1, countByRound(c, models.RoundFinal))

	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))
	assert.Equal(t, models.StatusCompleted, c.Status)
	assert.Len(t, c.MatchesInPhase(models.PhaseKnockout), 7)
}

func TestGenerateKnockoutRequiresPowerOfTwo(t *testing.T) {
	ctx := context.Background()
	c, names := newTestChampionship(9, 3, 2)
	require.NoError(t, GenerateGroupStage(ctx, c))
	playAll(t, c, models.PhaseGroup, lowerIDWins)
	before := len(c.Matches)

	err := GenerateKnockout(ctx, c, names)

	require.ErrorIs(t, err, ErrQualifierCount)
	assert.Contains(t, err.Error(), "6 qualifiers")
	assert.Equal(t, models.StatusGroupsGenerated, c.Status)
	assert.Len(t, c.Matches, before)
}

func TestGenerateKnockoutRequiresCompleteGroupStage(t *testing.T) {
	ctx := context.Background()
	c, names := newTestChampionship(8, 2, 2)
	require.NoError(t, GenerateGroupStage(ctx, c))

	assert.ErrorIs(t, GenerateKnockout(ctx, c, names), ErrGroupStageIncomplete)

	draft, _ := newTestChampionship(8, 2, 2)
	assert.ErrorIs(t, GenerateKnockout(ctx, draft, names), ErrNotInGroupStage)
}

func TestAdvanceWithPendingMatchCreatesNothing(t *testing.T) {
	ctx := context.Background()
	c := knockoutChampionship(t)
	assignIDs(c)
	semis := KnockoutRoundMatches(c, models.RoundSemifinal)
	_, err := RecordResult(c, semis[0].ID, 2, 1, testPlayedAt)
	require.NoError(t, err)
	before := len(c.Matches)

	err = AdvanceKnockout(ctx, c)

	require.ErrorIs(t, err, ErrRoundIncomplete)
	assert.Len(t, c.Matches, before)
	assert.Equal(t, models.StatusKnockout, c.Status)
}

func TestAdvanceWithTieCreatesNothing(t *testing.T) {
	ctx := context.Background()
	c := knockoutChampionship(t)
	playAll(t, c, models.PhaseKnockout, func(models.Match) (int, int) { return 2, 2 })
	before := len(c.Matches)

	err := AdvanceKnockout(ctx, c)

	require.ErrorIs(t, err, ErrKnockoutTie)
	assert.Len(t, c.Matches, before)
}

func TestAdvanceTwiceReportsNextRoundExists(t *testing.T) {
	ctx := context.Background()
	c := knockoutChampionship(t)
	playAll(t, c, models.PhaseKnockout, lowerIDWins)
	require.NoError(t, AdvanceKnockout(ctx, c))
	before := len(c.Matches)

	err := AdvanceKnockout(ctx, c)

	require.ErrorIs(t, err, ErrNextRoundExists)
	assert.Len(t, c.Matches, before)
}

func TestAdvanceOutsideKnockout(t *testing.T) {
	c, _ := newTestChampionship(4, 1, 2)
	assert.ErrorIs(t, AdvanceKnockout(context.Background(), c), ErrNotInKnockout)

	c.Status = models.StatusCompleted
	assert.ErrorIs(t, AdvanceKnockout(context.Background(), c), ErrChampionshipClosed)
}

// knockoutChampionship returns 8 teams in 2 groups with semifinals generated.
func knockoutChampionship(t *testing.T) *models.Championship {
	t.Helper()
	c, names := newTestChampionship(8, 2, 2)
	require.NoError(t, GenerateGroupStage(context.Background(), c))
	playAll(t, c, models.PhaseGroup, lowerIDWins)
	require.NoError(t, GenerateKnockout(context.Background(), c, names))
	return c
}
