package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"go.uber.org/zap"
)

const (
	sampleSubjectCap = 3
	sampleStudentCap = 5
)

var datasetHeaders = map[Dataset]string{
	DatasetExams:               "EXAMS",
	DatasetSubjects:            "SUBJECTS",
	DatasetRooms:               "ROOMS",
	DatasetAllocations:         "FACULTY ALLOCATIONS",
	DatasetFacultyExams:        "YOUR EXAM DUTIES",
	DatasetFacultyRooms:        "YOUR ROOM ASSIGNMENTS",
	DatasetStudentAllocations:  "STUDENT SEATING",
	DatasetRoomAllocations:     "ROOM SEATING",
	DatasetFacultyRoomStudents: "STUDENT SEATING IN YOUR ROOMS",
	DatasetFaculty:             "FACULTY",
	DatasetFacultyData:         "YOUR PROFILE",
	DatasetStats:               "SYSTEM STATISTICS",
	DatasetFacultyStats:        "YOUR STATISTICS",
	DatasetSearchResults:       "SEARCH RESULTS",
}

// ContextService turns retrieved records into the bounded text block that
// feeds the prompt assembler.
type ContextService struct {
	cfg    *config.ChatConfig
	vector *config.VectorCacheConfig
	logger *zap.Logger
}

func NewContextService(cfg *config.ChatConfig, vector *config.VectorCacheConfig, logger *zap.Logger) *ContextService {
	return &ContextService{cfg: cfg, vector: vector, logger: logger}
}

// FormatBundle renders a structured bundle. The output always starts with
// intent and role headers, so even an empty bundle yields usable context.
// Datasets render in a fixed order regardless of retrieval order.
func (s *ContextService) FormatBundle(bundle *ContextBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUERY TYPE: %s\n", bundle.Intent)
	fmt.Fprintf(&b, "REQUESTER ROLE: %s\n", bundle.Role)
	if bundle.ActingUserName != "" {
		fmt.Fprintf(&b, "REQUESTER NAME: %s\n", bundle.ActingUserName)
	}

	for _, dataset := range allDatasets {
		value, ok := bundle.Data[dataset]
		if !ok {
			continue
		}
		section := s.renderDataset(dataset, value)
		if section == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n%s", datasetHeaders[dataset], section)
	}

	return s.truncate(b.String())
}

func (s *ContextService) renderDataset(dataset Dataset, value interface{}) string {
	switch v := value.(type) {
	case []models.Exam:
		return renderNumbered(v, renderExam)
	case []models.Subject:
		return renderNumbered(v, renderSubject)
	case []models.Room:
		return renderNumbered(v, renderRoom)
	case []models.FacultyAllocation:
		return renderNumbered(v, renderAllocation)
	case []models.RoomAllocation:
		return renderNumbered(v, renderRoomAllocation)
	case []models.Faculty:
		return renderNumbered(v, renderFaculty)
	case models.Faculty:
		return renderFaculty(v) + "\n"
	case *models.SystemStats:
		return renderSystemStats(v)
	case models.FacultyStats:
		return renderFacultyStats(v)
	case *models.SearchResults:
		return s.renderSearchResults(v)
	default:
		s.logger.Warn("Unknown dataset value type skipped", zap.String("dataset", string(dataset)))
		return ""
	}
}

func renderNumbered[T any](items []T, render func(T) string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, render(item))
	}
	return b.String()
}

func renderExam(e models.Exam) string {
	parts := []string{
		fmt.Sprintf("%s (year %d, semester %d)", summarizeText(e.Name), e.Year, e.Semester),
		fmt.Sprintf("dates %s to %s", summarizeDate(e.StartDate), summarizeDate(e.EndDate)),
	}
	if len(e.Subjects) > 0 {
		parts = append(parts, "subjects: "+sampleRefLabels(e.Subjects, sampleSubjectCap))
	}
	if len(e.Rooms) > 0 {
		parts = append(parts, "rooms: "+sampleRefLabels(e.Rooms, sampleSubjectCap))
	}
	return strings.Join(parts, "; ")
}

func renderSubject(s models.Subject) string {
	return fmt.Sprintf("%s, code %s, semester %d, department %s",
		summarizeText(s.Name), summarizeText(s.Code), s.Semester, summarizeText(s.Department))
}

func renderRoom(r models.Room) string {
	return fmt.Sprintf("Room %s, building %s, floor %d, capacity %d",
		summarizeText(r.Number), summarizeText(r.Building), r.Floor, r.Capacity)
}

func renderAllocation(a models.FacultyAllocation) string {
	return fmt.Sprintf("%s invigilates %s for exam %s in %s on %s, %s to %s",
		a.Faculty.Label(), a.Subject.Label(), a.Exam.Label(), a.Room.Label(),
		summarizeDate(a.Date), summarizeText(a.StartTime), summarizeText(a.EndTime))
}

func renderRoomAllocation(ra models.RoomAllocation) string {
	line := fmt.Sprintf("%s for exam %s on %s; subjects: %s; %d students seated",
		ra.Room.Label(), ra.Exam.Label(), summarizeDate(ra.Date),
		sampleRefLabels(ra.Subjects, sampleSubjectCap), len(ra.Students))
	if len(ra.Students) > 0 {
		samples := make([]string, 0, sampleStudentCap)
		for i, st := range ra.Students {
			if i == sampleStudentCap {
				break
			}
			samples = append(samples, fmt.Sprintf("%s (%s, seat %d)",
				summarizeText(st.Name), summarizeText(st.USN), st.SeatNumber))
		}
		line += ": " + strings.Join(samples, ", ")
		if len(ra.Students) > sampleStudentCap {
			line += fmt.Sprintf(" and %d more", len(ra.Students)-sampleStudentCap)
		}
	}
	return line
}

func renderFaculty(f models.Faculty) string {
	return fmt.Sprintf("%s, %s, department %s, email %s",
		summarizeText(f.Name), summarizeText(f.Designation),
		summarizeText(f.Department), summarizeText(f.Email))
}

func renderSystemStats(st *models.SystemStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exams: %d\n", st.Exams)
	fmt.Fprintf(&b, "Subjects: %d\n", st.Subjects)
	fmt.Fprintf(&b, "Rooms: %d\n", st.Rooms)
	fmt.Fprintf(&b, "Faculty: %d\n", st.Faculty)
	fmt.Fprintf(&b, "Faculty allocations: %d\n", st.FacultyAllocations)
	fmt.Fprintf(&b, "Room allocations: %d\n", st.RoomAllocations)
	fmt.Fprintf(&b, "Students seated: %d\n", st.StudentsSeated)
	return b.String()
}

func renderFacultyStats(st models.FacultyStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total allocations: %d\n", st.TotalAllocations)
	fmt.Fprintf(&b, "Upcoming allocations: %d\n", st.UpcomingAllocations)
	fmt.Fprintf(&b, "Past allocations: %d\n", st.PastAllocations)
	return b.String()
}

func (s *ContextService) renderSearchResults(sr *models.SearchResults) string {
	var b strings.Builder
	if len(sr.Exams) > 0 {
		b.WriteString("Exams:\n" + renderNumbered(sr.Exams, renderExam))
	}
	if len(sr.Subjects) > 0 {
		b.WriteString("Subjects:\n" + renderNumbered(sr.Subjects, renderSubject))
	}
	if len(sr.Rooms) > 0 {
		b.WriteString("Rooms:\n" + renderNumbered(sr.Rooms, renderRoom))
	}
	if len(sr.Faculty) > 0 {
		b.WriteString("Faculty:\n" + renderNumbered(sr.Faculty, renderFaculty))
	}
	return b.String()
}

func sampleRefLabels[T models.Referent](refs []models.Ref[T], limit int) string {
	if len(refs) == 0 {
		return placeholderNone
	}
	labels := make([]string, 0, limit)
	for i, ref := range refs {
		if i == limit {
			labels = append(labels, "...")
			break
		}
		labels = append(labels, ref.Label())
	}
	return strings.Join(labels, ", ")
}

var semanticSections = []struct {
	docType string
	header  string
}{
	{"exam", "EXAMS"},
	{"allocation", "FACULTY ALLOCATIONS"},
	{"room_allocation", "ROOM ALLOCATIONS"},
}

// FormatSemantic renders ranked search results. Results below the relevance
// threshold are discarded; the threshold is stricter than the retrieval one,
// so a non-empty candidate set can still produce no context. Returns false
// when nothing qualifies, signalling the caller to skip generation.
func (s *ContextService) FormatSemantic(results []RetrievalResult) (string, bool) {
	qualified := make([]RetrievalResult, 0, len(results))
	for _, r := range results {
		if float64(r.Similarity) >= s.vector.MinRelevanceSimilarity {
			qualified = append(qualified, r)
		}
	}
	if len(qualified) == 0 {
		return "", false
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Similarity > qualified[j].Similarity
	})

	var b strings.Builder
	for _, section := range semanticSections {
		var docs []RetrievalResult
		for _, r := range qualified {
			if r.Metadata["type"] == section.docType {
				docs = append(docs, r)
			}
		}
		if len(docs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", section.header)
		for _, doc := range docs {
			b.WriteString(doc.Content + "\n")
		}
		b.WriteString("\n")
	}
	return s.truncate(strings.TrimSpace(b.String()) + "\n"), true
}

// truncate bounds the context block so prompt size stays predictable. The
// cut never lands inside a multi-byte rune.
func (s *ContextService) truncate(text string) string {
	if len(text) <= s.cfg.MaxContextChars {
		return text
	}
	cut := s.cfg.MaxContextChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
