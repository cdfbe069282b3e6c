package models

import "time"

// ChampionshipStatus follows draft -> groups_generated -> knockout -> completed.
// An administrator may jump to completed from any status; completed is terminal.
type ChampionshipStatus string

const (
	StatusDraft           ChampionshipStatus = "draft"
	StatusGroupsGenerated ChampionshipStatus = "groups_generated"
	StatusKnockout        ChampionshipStatus = "knockout"
	StatusCompleted       ChampionshipStatus = "completed"
)

func (s ChampionshipStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusGroupsGenerated, StatusKnockout, StatusCompleted:
		return true
	default:
		return false
	}
}

type Group struct {
	Name    string `json:"name" db:"name"`
	TeamIDs []int  `json:"teams" db:"team_ids"`
}

type Championship struct {
	ID                 int                `json:"id" db:"id"`
	Name               string             `json:"name" db:"name"`
	DisciplineID       int                `json:"disciplineId" db:"discipline_id"`
	TeamIDs            []int              `json:"teams" db:"-"`
	GroupCount         int                `json:"groupCount" db:"group_count"`
	QualifiersPerGroup int                `json:"qualifiersPerGroup" db:"qualifiers_per_group"`
	Status             ChampionshipStatus `json:"status" db:"status"`
	ChampionID         *int               `json:"champion,omitempty" db:"champion_id"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" db:"updated_at"`

	Groups  []Group `json:"groups" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

func (c *Championship) HasTeam(teamID int) bool {
	for _, id := range c.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// MatchByID returns a pointer into c.Matches so callers can update it in place.
func (c *Championship) MatchByID(id int) *Match {
	for i := range c.Matches {
		if c.Matches[i].ID == id {
			return &c.Matches[i]
		}
	}
	return nil
}

func (c *Championship) MatchesInPhase(phase MatchPhase) []Match {
	out := make([]Match, 0, len(c.Matches))
	for _, m := range c.Matches {
		if m.Phase == phase {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy; mutating the copy never touches c.
func (c *Championship) Clone() *Championship {
	if c == nil {
		return nil
	}
	out := *c
	out.TeamIDs = cloneIDs(c.TeamIDs)
	out.ChampionID = cloneInt(c.ChampionID)
	if c.Groups != nil {
		out.Groups = make([]Group, len(c.Groups))
		for i, g := range c.Groups {
			out.Groups[i] = Group{Name: g.Name, TeamIDs: cloneIDs(g.TeamIDs)}
		}
	}
	if c.Matches != nil {
		out.Matches = make([]Match, len(c.Matches))
		for i, m := range c.Matches {
			out.Matches[i] = m.clone()
		}
	}
	return &out
}

func cloneIDs(ids []int) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}
