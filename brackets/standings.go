package brackets

import (
	"fmt"
	"sort"

	"github.com/leonelm2/PotreroMobile/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

// CalculateStandings ranks the members of a group from its played matches.
// Every member gets a row even without played matches; pending matches and
// matches of other groups are ignored.
func CalculateStandings(group models.Group, matches []models.Match, names map[int]string) []models.StandingsRow {
	rows := make(map[int]*models.StandingsRow, len(group.TeamIDs))
	for _, id := range group.TeamIDs {
		rows[id] = &models.StandingsRow{TeamID: id, TeamName: teamName(names, id)}
	}

	for _, m := range matches {
		if m.Phase != models.PhaseGroup || m.GroupName == nil || *m.GroupName != group.Name {
			continue
		}
		if !m.IsPlayed() || m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue
		}
		home, okHome := rows[*m.HomeTeamID]
		away, okAway := rows[*m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		applyResult(home, *m.HomeScore, *m.AwayScore)
		applyResult(away, *m.AwayScore, *m.HomeScore)
	}

	table := make([]models.StandingsRow, 0, len(rows))
	for _, id := range group.TeamIDs {
		r := rows[id]
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		table = append(table, *r)
	}

	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})

	return table
}

// ChampionshipStandings returns one ranked table per group, in group order.
func ChampionshipStandings(c *models.Championship, names map[int]string) []models.GroupStandings {
	out := make([]models.GroupStandings, 0, len(c.Groups))
	for _, g := range c.Groups {
		out = append(out, models.GroupStandings{
			Name:      g.Name,
			Standings: CalculateStandings(g, c.Matches, names),
		})
	}
	return out
}

func applyResult(row *models.StandingsRow, scored, conceded int) {
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		row.Wins++
		row.Points += pointsWin
	case scored == conceded:
		row.Draws++
		row.Points += pointsDraw
	default:
		row.Losses++
		row.Points += pointsLoss
	}
}

func teamName(names map[int]string, id int) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Team #%d", id)
}
