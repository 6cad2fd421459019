package models

// SystemStats is the global counter set, visible to admins only.
type SystemStats struct {
	Exams              int64 `json:"exams"`
	Subjects           int64 `json:"subjects"`
	Rooms              int64 `json:"rooms"`
	Faculty            int64 `json:"faculty"`
	FacultyAllocations int64 `json:"faculty_allocations"`
	RoomAllocations    int64 `json:"room_allocations"`
	StudentsSeated     int64 `json:"students_seated"`
}

// FacultyStats is the personal subset a non-admin caller sees instead.
type FacultyStats struct {
	TotalAllocations    int64 `json:"total_allocations"`
	UpcomingAllocations int64 `json:"upcoming_allocations"`
	PastAllocations     int64 `json:"past_allocations"`
}

// SearchResults groups keyword-search hits per entity kind.
type SearchResults struct {
	Exams    []Exam    `json:"exams"`
	Subjects []Subject `json:"subjects"`
	Rooms    []Room    `json:"rooms"`
	Faculty  []Faculty `json:"faculty"`
}

func (r SearchResults) IsEmpty() bool {
	return len(r.Exams) == 0 && len(r.Subjects) == 0 && len(r.Rooms) == 0 && len(r.Faculty) == 0
}
