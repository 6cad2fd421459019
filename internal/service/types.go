package service

import (
	"errors"
	"strings"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/google/uuid"
)

var (
	ErrValidation           = errors.New("invalid request")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrIndexNotReady        = errors.New("vector index not initialized")
	ErrRebuildInProgress    = errors.New("index rebuild already in progress")
)

// Query is a single immutable chat request together with the identity of the
// caller as established by the auth middleware.
type Query struct {
	Text           string
	Role           models.Role
	ActingUserID   *uuid.UUID
	ActingUserName string
	ActingEmail    string
}

// Intent is a coarse category of user request used to select retrieval logic.
type Intent string

const (
	IntentExamInfo          Intent = "exam_info"
	IntentFacultyAllocation Intent = "faculty_allocation"
	IntentRoomInfo          Intent = "room_info"
	IntentStudentAllocation Intent = "student_allocation"
	IntentFacultyInfo       Intent = "faculty_info"
	IntentSystemStats       Intent = "system_stats"
	IntentGeneral           Intent = "general"
)

// ParseIntent normalizes an untrusted intent string, falling back to general.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentExamInfo, IntentFacultyAllocation, IntentRoomInfo,
		IntentStudentAllocation, IntentFacultyInfo, IntentSystemStats:
		return Intent(strings.ToLower(strings.TrimSpace(s)))
	default:
		return IntentGeneral
	}
}

// TimePeriod is the temporal scope the classifier extracted from the query.
type TimePeriod string

const (
	TimePast    TimePeriod = "past"
	TimePresent TimePeriod = "present"
	TimeFuture  TimePeriod = "future"
	TimeNone    TimePeriod = "none"
)

func ParseTimePeriod(s string) TimePeriod {
	switch TimePeriod(strings.ToLower(strings.TrimSpace(s))) {
	case TimePast, TimePresent, TimeFuture:
		return TimePeriod(strings.ToLower(strings.TrimSpace(s)))
	default:
		return TimeNone
	}
}

// IntentClassification is the extractor's best-effort reading of a query.
// Every field is optional; consumers must default missing slots.
type IntentClassification struct {
	Intent     Intent            `json:"intent"`
	TimePeriod TimePeriod        `json:"time_period"`
	Entities   map[string]string `json:"entities"`
}

// Entity returns the named slot value with surrounding whitespace removed,
// or "" when the slot is absent.
func (c IntentClassification) Entity(name string) string {
	if c.Entities == nil {
		return ""
	}
	return strings.TrimSpace(c.Entities[name])
}

// EntityInt parses a numeric slot, returning nil when absent or malformed.
func (c IntentClassification) EntityInt(name string) *int {
	v := c.Entity(name)
	if v == "" {
		return nil
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int(r-'0')
	}
	return &n
}

// Dataset names the slots a ContextBundle may carry. The order of
// allDatasets is the order sections appear in formatted context.
type Dataset string

const (
	DatasetExams               Dataset = "exams"
	DatasetSubjects            Dataset = "subjects"
	DatasetRooms               Dataset = "rooms"
	DatasetAllocations         Dataset = "allocations"
	DatasetFacultyExams        Dataset = "facultyExams"
	DatasetFacultyRooms        Dataset = "facultyRooms"
	DatasetStudentAllocations  Dataset = "studentAllocations"
	DatasetRoomAllocations     Dataset = "roomAllocations"
	DatasetFacultyRoomStudents Dataset = "facultyRoomStudents"
	DatasetFaculty             Dataset = "faculty"
	DatasetFacultyData         Dataset = "facultyData"
	DatasetStats               Dataset = "stats"
	DatasetFacultyStats        Dataset = "facultyStats"
	DatasetSearchResults       Dataset = "searchResults"
)

var allDatasets = []Dataset{
	DatasetExams,
	DatasetSubjects,
	DatasetRooms,
	DatasetAllocations,
	DatasetFacultyExams,
	DatasetFacultyRooms,
	DatasetStudentAllocations,
	DatasetRoomAllocations,
	DatasetFacultyRoomStudents,
	DatasetFaculty,
	DatasetFacultyData,
	DatasetStats,
	DatasetFacultyStats,
	DatasetSearchResults,
}

// ContextBundle holds everything structured retrieval gathered for one query.
// Empty result sets are never stored, so formatting can iterate the data map
// without re-checking emptiness per dataset.
type ContextBundle struct {
	Intent         Intent
	Role           models.Role
	ActingUserName string
	Data           map[Dataset]interface{}
}

func newContextBundle(intent Intent, role models.Role, actingName string) *ContextBundle {
	return &ContextBundle{
		Intent:         intent,
		Role:           role,
		ActingUserName: actingName,
		Data:           make(map[Dataset]interface{}),
	}
}

func (b *ContextBundle) putExams(key Dataset, v []models.Exam) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putSubjects(key Dataset, v []models.Subject) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putRooms(key Dataset, v []models.Room) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putAllocations(key Dataset, v []models.FacultyAllocation) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putRoomAllocations(key Dataset, v []models.RoomAllocation) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putFaculty(key Dataset, v []models.Faculty) {
	if len(v) > 0 {
		b.Data[key] = v
	}
}

func (b *ContextBundle) putSearchResults(v *models.SearchResults) {
	if v != nil && !v.IsEmpty() {
		b.Data[DatasetSearchResults] = v
	}
}

// ConversationTurn is one prior message from the session history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	TurnUser      = "user"
	TurnAssistant = "assistant"
)

// RetrievalResult pairs an indexed document with its cosine similarity to
// the query vector.
type RetrievalResult struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// RebuildReport is the structured outcome of one index rebuild sweep.
type RebuildReport struct {
	Indexed    int   `json:"indexed"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	Generation int64 `json:"generation"`
}
