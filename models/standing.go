package models

// StandingsRow is derived from match results on every request and never stored.
type StandingsRow struct {
	TeamID       int    `json:"teamId"`
	TeamName     string `json:"teamName"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
	GoalDiff     int    `json:"goalDiff"`
	Points       int    `json:"points"`
}

type GroupStandings struct {
	Name      string         `json:"name"`
	Standings []StandingsRow `json:"standings"`
}
