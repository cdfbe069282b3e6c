package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	DisciplineID int       `json:"disciplineId" db:"discipline_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	// LogoKey is set for logos uploaded through storage; LogoURL may also be an external link.
	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logoUrl,omitempty" db:"logo_url"`

	Discipline *Discipline `json:"discipline,omitempty" db:"-"`
	Players    []Player    `json:"players,omitempty" db:"-"`
}

type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TeamID    int       `json:"teamId" db:"team_id"`
	Number    int       `json:"number" db:"number"`
	Position  string    `json:"position" db:"position"`
	Age       int       `json:"age" db:"age"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
