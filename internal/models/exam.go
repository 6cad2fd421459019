package models

import (
	"time"

	"github.com/google/uuid"
)

type Exam struct {
	ID        uuid.UUID    `db:"id"`
	Name      string       `db:"name"`
	Year      int          `db:"year"`
	Semester  int          `db:"semester"`
	StartDate time.Time    `db:"start_date"`
	EndDate   time.Time    `db:"end_date"`
	Subjects  []Ref[Subject]
	Rooms     []Ref[Room]
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (e Exam) RefID() string { return e.ID.String() }

func (e Exam) RefLabel() string {
	if e.Name == "" {
		return "N/A"
	}
	return e.Name
}
