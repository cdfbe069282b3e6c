package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
)

func TestPartitionGroupsIsBalanced(t *testing.T) {
	for n := 1; n <= 24; n++ {
		for g := 1; g <= n; g++ {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = i + 1
			}
			groups, err := PartitionGroups(ids, g)
			require.NoError(t, err)
			require.Len(t, groups, g)

			total, minSize, maxSize := 0, n, 0
			for _, grp := range groups {
				total += len(grp.TeamIDs)
				minSize = min(minSize, len(grp.TeamIDs))
				maxSize = max(maxSize, len(grp.TeamIDs))
			}
			assert.Equal(t, n, total, "n=%d g=%d", n, g)
			assert.LessOrEqual(t, maxSize-minSize, 1, "n=%d g=%d", n, g)
		}
	}
}

func TestPartitionGroupsDealsInInputOrder(t *testing.T) {
	groups, err := PartitionGroups([]int{10, 20, 30, 40, 50}, 2)
	require.NoError(t, err)

	assert.Equal(t, []models.Group{
		{Name: "Grupo A", TeamIDs: []int{10, 30, 50}},
		{Name: "Grupo B", TeamIDs: []int{20, 40}},
	}, groups)
}

func TestPartitionGroupsErrors(t *testing.T) {
	_, err := PartitionGroups(nil, 2)
	assert.ErrorIs(t, err, ErrNoTeams)

	_, err = PartitionGroups([]int{1, 2}, 3)
	assert.ErrorIs(t, err, ErrTooManyGroups)

	_, err = PartitionGroups([]int{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidGroupCount)
	assert.True(t, IsInputError(err))
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "Grupo A", GroupName(0))
	assert.Equal(t, "Grupo D", GroupName(3))
	assert.Equal(t, "Grupo 27", GroupName(26))
}

func TestRoundRobinEveryPairOnce(t *testing.T) {
	gen := NewRoundRobinGenerator()
	assert.Equal(t, "RoundRobin", gen.GetName())

	for k := 0; k <= 9; k++ {
		ids := make([]int, k)
		for i := range ids {
			ids[i] = 100 + i
		}
		fixtures, err := gen.Generate(context.Background(), GenerateParams{TeamIDs: ids})
		require.NoError(t, err)
		assert.Len(t, fixtures, k*(k-1)/2)

		seen := map[[2]int]bool{}
		for i, f := range fixtures {
			assert.Equal(t, i+1, f.Order)
			assert.NotEqual(t, f.HomeTeamID, f.AwayTeamID)
			pair := [2]int{min(f.HomeTeamID, f.AwayTeamID), max(f.HomeTeamID, f.AwayTeamID)}
			assert.False(t, seen[pair], "pair %v repeated", pair)
			seen[pair] = true
		}
	}
}

func TestGenerateGroupStage(t *testing.T) {
	c, _ := newTestChampionship(8, 2, 2)

	require.NoError(t, GenerateGroupStage(context.Background(), c))

	assert.Equal(t, models.StatusGroupsGenerated, c.Status)
	require.Len(t, c.Groups, 2)
	assert.Equal(t, []int{1, 3, 5, 7}, c.Groups[0].TeamIDs)
	assert.Equal(t, []int{2, 4, 6, 8}, c.Groups[1].TeamIDs)
	require.Len(t, c.Matches, 12)

	perGroup := map[string]int{}
	for _, m := range c.Matches {
		assert.Equal(t, models.PhaseGroup, m.Phase)
		assert.Equal(t, models.MatchPending, m.Status)
		assert.Equal(t, c.ID, m.ChampionshipID)
		require.NotNil(t, m.GroupName)
		perGroup[*m.GroupName]++
	}
	assert.Equal(t, map[string]int{"Grupo A": 6, "Grupo B": 6}, perGroup)
}

func TestGenerateGroupStageReplacesPreviousMatches(t *testing.T) {
	c, _ := newTestChampionship(6, 2, 1)
	require.NoError(t, GenerateGroupStage(context.Background(), c))
	playAll(t, c, models.PhaseGroup, lowerIDWins)

	c.GroupCount = 3
	require.NoError(t, GenerateGroupStage(context.Background(), c))

	assert.Equal(t, models.StatusGroupsGenerated, c.Status)
	assert.Len(t, c.Groups, 3)
	assert.Len(t, c.Matches, 3)
	for _, m := range c.Matches {
		assert.Zero(t, m.ID)
		assert.False(t, m.IsPlayed())
	}
}

func TestGenerateGroupStageRejectedAfterBracket(t *testing.T) {
	for _, status := range []models.ChampionshipStatus{models.StatusKnockout, models.StatusCompleted} {
		c, _ := newTestChampionship(4, 1, 2)
		c.Status = status
		c.Matches = []models.Match{{ID: 1, Phase: models.PhaseKnockout}}

		err := GenerateGroupStage(context.Background(), c)

		require.Error(t, err)
		assert.False(t, IsInputError(err))
		assert.Len(t, c.Matches, 1, "status %s", status)
		assert.Equal(t, status, c.Status)
	}
}

func TestGenerateGroupStageValidation(t *testing.T) {
	c, _ := newTestChampionship(0, 1, 1)
	assert.ErrorIs(t, GenerateGroupStage(context.Background(), c), ErrNoTeams)

	c, _ = newTestChampionship(3, 4, 1)
	assert.ErrorIs(t, GenerateGroupStage(context.Background(), c), ErrTooManyGroups)
	assert.Equal(t, models.StatusDraft, c.Status)
	assert.Empty(t, c.Groups)
}
