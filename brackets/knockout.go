package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/leonelm2/PotreroMobile/models"
)

// Qualifiers returns the seed list: group A rank 1, group B rank 1, ...,
// group A rank 2, ... Groups smaller than qualifiersPerGroup contribute all their teams.
func Qualifiers(c *models.Championship, names map[int]string) []int {
	tables := ChampionshipStandings(c, names)
	seeds := make([]int, 0, len(tables)*c.QualifiersPerGroup)
	for rank := 0; rank < c.QualifiersPerGroup; rank++ {
		for _, t := range tables {
			if rank < len(t.Standings) {
				seeds = append(seeds, t.Standings[rank].TeamID)
			}
		}
	}
	return seeds
}

// GenerateKnockout seeds the first knockout round from the group standings
// and moves c to the knockout status. Previous knockout matches are dropped.
func GenerateKnockout(ctx context.Context, c *models.Championship, names map[int]string) error {
	switch c.Status {
	case models.StatusGroupsGenerated:
	case models.StatusCompleted:
		return ErrChampionshipClosed
	default:
		return fmt.Errorf("%w: status is %s", ErrNotInGroupStage, c.Status)
	}
	if c.QualifiersPerGroup < 1 {
		return ErrInvalidQualifiers
	}

	groupMatches := c.MatchesInPhase(models.PhaseGroup)
	if pending := countPending(groupMatches); pending > 0 {
		return fmt.Errorf("%w: %d group matches still pending", ErrGroupStageIncomplete, pending)
	}

	seeds := Qualifiers(c, names)
	if _, ok := FirstRound(len(seeds)); !ok {
		return qualifierCountError(len(seeds))
	}

	fixtures, err := NewSingleEliminationGenerator().Generate(ctx, GenerateParams{TeamIDs: seeds})
	if err != nil {
		return err
	}
	round, _ := FirstRound(len(seeds))

	c.Matches = append(groupMatches, toKnockoutMatches(c.ID, round, fixtures)...)
	c.Status = models.StatusKnockout
	return nil
}

// AdvanceKnockout closes the current round and creates the next one from its
// winners, paired match 1 vs match 2, match 3 vs match 4 and so on. Once the
// final is decided the championship is completed and no match is created.
func AdvanceKnockout(ctx context.Context, c *models.Championship) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch c.Status {
	case models.StatusKnockout:
	case models.StatusCompleted:
		return ErrChampionshipClosed
	default:
		return fmt.Errorf("%w: status is %s", ErrNotInKnockout, c.Status)
	}

	round, current := CurrentRound(c)
	if len(current) == 0 {
		return ErrNoKnockoutMatches
	}

	if pending := countPending(current); pending > 0 {
		if pending == len(current) && hasEarlierRound(c, round) {
			return fmt.Errorf("%w: %s is waiting for results", ErrNextRoundExists, round)
		}
		return fmt.Errorf("%w: %d of %d %s matches still pending", ErrRoundIncomplete, pending, len(current), round)
	}

	winners := make([]int, 0, len(current))
	for _, m := range current {
		id, ok := m.WinnerID()
		if !ok {
			return fmt.Errorf("%w (%s match %d)", ErrKnockoutTie, round, m.Order)
		}
		winners = append(winners, id)
	}

	if len(winners) == 1 {
		champion := winners[0]
		c.ChampionID = &champion
		c.Status = models.StatusCompleted
		return nil
	}

	next, ok := FirstRound(len(winners))
	if !ok {
		return qualifierCountError(len(winners))
	}
	fixtures := make([]BracketMatch, 0, len(winners)/2)
	for i := 0; i+1 < len(winners); i += 2 {
		fixtures = append(fixtures, BracketMatch{
			Order:      i/2 + 1,
			HomeTeamID: winners[i],
			AwayTeamID: winners[i+1],
		})
	}

	c.Matches = append(c.Matches, toKnockoutMatches(c.ID, next, fixtures)...)
	return nil
}

// CurrentRound returns the latest knockout round and its matches in bracket order.
func CurrentRound(c *models.Championship) (models.KnockoutRound, []models.Match) {
	var round models.KnockoutRound
	for _, m := range c.Matches {
		if m.Phase == models.PhaseKnockout && m.Round != nil && m.Round.Rank() > round.Rank() {
			round = *m.Round
		}
	}
	if round == "" {
		return "", nil
	}
	return round, KnockoutRoundMatches(c, round)
}

func KnockoutRoundMatches(c *models.Championship, round models.KnockoutRound) []models.Match {
	out := make([]models.Match, 0)
	for _, m := range c.Matches {
		if m.Phase == models.PhaseKnockout && m.Round != nil && *m.Round == round {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func hasEarlierRound(c *models.Championship, round models.KnockoutRound) bool {
	for _, m := range c.Matches {
		if m.Phase == models.PhaseKnockout && m.Round != nil && m.Round.Rank() < round.Rank() {
			return true
		}
	}
	return false
}

func countPending(matches []models.Match) int {
	n := 0
	for _, m := range matches {
		if !m.IsPlayed() {
			n++
		}
	}
	return n
}
