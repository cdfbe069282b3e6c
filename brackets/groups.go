package brackets

import (
	"context"
	"fmt"

	"github.com/leonelm2/PotreroMobile/models"
)

// GroupName returns "Grupo A", "Grupo B", ... for the zero-based group index.
func GroupName(index int) string {
	if index < 26 {
		return fmt.Sprintf("Grupo %c", 'A'+index)
	}
	return fmt.Sprintf("Grupo %d", index+1)
}

// PartitionGroups deals teams into groupCount groups in input order
// (team i goes to group i mod groupCount), so sizes differ by at most one.
func PartitionGroups(teamIDs []int, groupCount int) ([]models.Group, error) {
	if groupCount < 1 {
		return nil, ErrInvalidGroupCount
	}
	if len(teamIDs) == 0 {
		return nil, ErrNoTeams
	}
	if groupCount > len(teamIDs) {
		return nil, fmt.Errorf("%w: %d groups for %d teams", ErrTooManyGroups, groupCount, len(teamIDs))
	}

	groups := make([]models.Group, groupCount)
	for i := range groups {
		groups[i] = models.Group{
			Name:    GroupName(i),
			TeamIDs: make([]int, 0, len(teamIDs)/groupCount+1),
		}
	}
	for i, id := range teamIDs {
		g := &groups[i%groupCount]
		g.TeamIDs = append(g.TeamIDs, id)
	}

	return groups, nil
}

// GenerateGroupStage replaces the groups and all matches of c with a fresh
// group stage and moves it to groups_generated. c is left untouched on error.
func GenerateGroupStage(ctx context.Context, c *models.Championship) error {
	switch c.Status {
	case models.StatusDraft, models.StatusGroupsGenerated:
	case models.StatusCompleted:
		return ErrChampionshipClosed
	default:
		return ErrGroupsLocked
	}

	groups, err := PartitionGroups(c.TeamIDs, c.GroupCount)
	if err != nil {
		return err
	}

	gen := NewRoundRobinGenerator()
	matches := make([]models.Match, 0)
	for _, g := range groups {
		fixtures, err := gen.Generate(ctx, GenerateParams{TeamIDs: g.TeamIDs})
		if err != nil {
			return fmt.Errorf("generate fixtures for %s: %w", g.Name, err)
		}
		matches = append(matches, toGroupMatches(c.ID, g.Name, fixtures)...)
	}

	c.Groups = groups
	c.Matches = matches
	c.ChampionID = nil
	c.Status = models.StatusGroupsGenerated
	return nil
}
