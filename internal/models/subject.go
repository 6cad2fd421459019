package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Code       string    `db:"code"`
	Semester   int       `db:"semester"`
	Department string    `db:"department"`
	CreatedAt  time.Time `db:"created_at"`
}

func (s Subject) RefID() string { return s.ID.String() }

func (s Subject) RefLabel() string {
	switch {
	case s.Name != "" && s.Code != "":
		return s.Name + " (" + s.Code + ")"
	case s.Name != "":
		return s.Name
	case s.Code != "":
		return s.Code
	default:
		return "N/A"
	}
}
