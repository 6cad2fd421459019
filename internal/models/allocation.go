package models

import (
	"time"

	"github.com/google/uuid"
)

// FacultyAllocation is one invigilation duty: a faculty member assigned to a
// room for one exam session.
type FacultyAllocation struct {
	ID        uuid.UUID `db:"id"`
	Exam      Ref[Exam]
	Subject   Ref[Subject]
	Room      Ref[Room]
	Faculty   Ref[Faculty]
	Date      time.Time `db:"date"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	CreatedAt time.Time `db:"created_at"`
}

// RoomAllocation is the student seating plan of one room for one exam session.
type RoomAllocation struct {
	ID        uuid.UUID `db:"id"`
	Exam      Ref[Exam]
	Room      Ref[Room]
	Subjects  []Ref[Subject]
	Date      time.Time `db:"date"`
	Students  []StudentSeat
	CreatedAt time.Time `db:"created_at"`
}

type StudentSeat struct {
	USN        string `json:"usn"`
	Name       string `json:"name"`
	Semester   int    `json:"semester"`
	SeatNumber int    `json:"seat_number"`
}
