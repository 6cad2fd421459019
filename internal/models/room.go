package models

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID        uuid.UUID `db:"id"`
	Number    string    `db:"number"`
	Building  string    `db:"building"`
	Floor     int       `db:"floor"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
}

func (r Room) RefID() string { return r.ID.String() }

func (r Room) RefLabel() string {
	if r.Number == "" {
		return "N/A"
	}
	if r.Building != "" {
		return "Room " + r.Number + ", " + r.Building
	}
	return "Room " + r.Number
}
