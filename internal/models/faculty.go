package models

import (
	"time"

	"github.com/google/uuid"
)

type Faculty struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Designation string    `db:"designation"`
	Department  string    `db:"department"`
	CreatedAt   time.Time `db:"created_at"`
}

func (f Faculty) RefID() string { return f.ID.String() }

func (f Faculty) RefLabel() string {
	if f.Name == "" {
		return "N/A"
	}
	return f.Name
}
