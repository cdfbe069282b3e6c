package models

import "time"

type MatchPhase string

const (
	PhaseGroup    MatchPhase = "group"
	PhaseKnockout MatchPhase = "knockout"
)

type MatchStatus string

const (
	MatchPending MatchStatus = "pending"
	MatchPlayed  MatchStatus = "played"
)

// KnockoutRound labels a single-elimination round by the number of matches it holds.
type KnockoutRound string

const (
	RoundQuarterfinal KnockoutRound = "quarterfinal"
	RoundSemifinal    KnockoutRound = "semifinal"
	RoundFinal        KnockoutRound = "final"
)

// Rank orders rounds from the earliest (lowest) to the final. Unknown labels rank 0.
func (r KnockoutRound) Rank() int {
	switch r {
	case RoundQuarterfinal:
		return 1
	case RoundSemifinal:
		return 2
	case RoundFinal:
		return 3
	default:
		return 0
	}
}

// Match is owned by its championship. Group matches carry GroupName,
// knockout matches carry Round. Order is the 1-based position within
// the group or the round (bracket order for knockout rounds).
type Match struct {
	ID             int            `json:"id" db:"id"`
	ChampionshipID int            `json:"championshipId" db:"championship_id"`
	Phase          MatchPhase     `json:"phase" db:"phase"`
	GroupName      *string        `json:"group,omitempty" db:"group_name"`
	Round          *KnockoutRound `json:"round,omitempty" db:"round"`
	Order          int            `json:"order" db:"match_order"`
	HomeTeamID     *int           `json:"homeTeamId" db:"home_team_id"`
	AwayTeamID     *int           `json:"awayTeamId" db:"away_team_id"`
	HomeScore      *int           `json:"homeScore" db:"home_score"`
	AwayScore      *int           `json:"awayScore" db:"away_score"`
	Status         MatchStatus    `json:"status" db:"status"`
	PlayedAt       *time.Time     `json:"playedAt,omitempty" db:"played_at"`
}

func (m Match) IsPlayed() bool {
	return m.Status == MatchPlayed && m.HomeScore != nil && m.AwayScore != nil
}

// WinnerID returns the team with the strictly higher score.
// ok is false for unplayed or tied matches.
func (m Match) WinnerID() (id int, ok bool) {
	if !m.IsPlayed() || m.HomeTeamID == nil || m.AwayTeamID == nil {
		return 0, false
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return *m.HomeTeamID, true
	case *m.AwayScore > *m.HomeScore:
		return *m.AwayTeamID, true
	default:
		return 0, false
	}
}

func (m Match) clone() Match {
	out := m
	out.GroupName = cloneString(m.GroupName)
	if m.Round != nil {
		r := *m.Round
		out.Round = &r
	}
	out.HomeTeamID = cloneInt(m.HomeTeamID)
	out.AwayTeamID = cloneInt(m.AwayTeamID)
	out.HomeScore = cloneInt(m.HomeScore)
	out.AwayScore = cloneInt(m.AwayScore)
	if m.PlayedAt != nil {
		t := *m.PlayedAt
		out.PlayedAt = &t
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
