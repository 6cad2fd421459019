package repository

import (
	"time"

	"github.com/google/uuid"
)

// Filters are sparse: a zero-value field means "no constraint". Every FindX
// call accepts one, so a caller composes exactly the constraints it has.

type ExamFilter struct {
	Name     string
	Year     *int
	Semester *int
	Limit    uint64
}

type SubjectFilter struct {
	Name     string
	Code     string
	Semester *int
	Limit    uint64
}

type RoomFilter struct {
	Number   string
	Building string
	Floor    *int
	Limit    uint64
}

type FacultyFilter struct {
	Name        string
	Email       string
	Designation string
	Limit       uint64
}

// TimeFilter is the uniform translation of a classified time period. At most
// one flag is set.
type TimeFilter struct {
	Upcoming bool
	Past     bool
	Today    bool
}

type AllocationFilter struct {
	FacultyID   *uuid.UUID
	FacultyName string
	RoomID      *uuid.UUID
	RoomNumber  string
	ExamID      *uuid.UUID
	Date        *time.Time
	Time        TimeFilter
	Limit       uint64
}

type RoomAllocationFilter struct {
	RoomID      *uuid.UUID
	RoomNumber  string
	RoomNumbers []string
	ExamID      *uuid.UUID
	Semester    *int
	StudentUSN  string
	StudentName string
	Date        *time.Time
	Time        TimeFilter
	Limit       uint64
}
