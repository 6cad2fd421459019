package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
)

// Summarizer renders relational entities into the deterministic paragraphs
// that get embedded into the vector index. Pure functions; every optional
// field degrades to a placeholder so output length stays predictable.

const (
	summaryListCap  = 3
	placeholderNA   = "N/A"
	placeholderNone = "Not specified"
	dateLayout      = "2006-01-02"
)

func summarizeDate(t time.Time) string {
	if t.IsZero() {
		return placeholderNone
	}
	return t.Format(dateLayout)
}

func summarizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholderNA
	}
	return s
}

// labelList renders up to summaryListCap labels, appending an ellipsis
// marker when the list was truncated.
func labelList[T models.Referent](refs []models.Ref[T]) string {
	if len(refs) == 0 {
		return placeholderNone
	}
	labels := make([]string, 0, summaryListCap)
	for i, ref := range refs {
		if i == summaryListCap {
			labels = append(labels, "...")
			break
		}
		labels = append(labels, ref.Label())
	}
	return strings.Join(labels, ", ")
}

func SummarizeExam(exam models.Exam) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exam %s is scheduled for year %d, semester %d.", summarizeText(exam.Name), exam.Year, exam.Semester)
	fmt.Fprintf(&b, " It runs from %s to %s.", summarizeDate(exam.StartDate), summarizeDate(exam.EndDate))
	fmt.Fprintf(&b, " Subjects: %s.", labelList(exam.Subjects))
	fmt.Fprintf(&b, " Rooms: %s.", labelList(exam.Rooms))
	return b.String()
}

func SummarizeFacultyAllocation(alloc models.FacultyAllocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Faculty %s is assigned invigilation duty for exam %s.",
		alloc.Faculty.Label(), alloc.Exam.Label())
	fmt.Fprintf(&b, " Subject: %s.", alloc.Subject.Label())
	fmt.Fprintf(&b, " Location: %s.", alloc.Room.Label())
	fmt.Fprintf(&b, " Date: %s, from %s to %s.",
		summarizeDate(alloc.Date), summarizeText(alloc.StartTime), summarizeText(alloc.EndTime))
	return b.String()
}

func SummarizeRoomAllocation(alloc models.RoomAllocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s hosts seating for exam %s on %s.",
		alloc.Room.Label(), alloc.Exam.Label(), summarizeDate(alloc.Date))
	fmt.Fprintf(&b, " Subjects: %s.", labelList(alloc.Subjects))
	fmt.Fprintf(&b, " %d students are seated here", len(alloc.Students))
	if n := len(alloc.Students); n > 0 {
		names := make([]string, 0, summaryListCap)
		for i, st := range alloc.Students {
			if i == summaryListCap {
				names = append(names, "...")
				break
			}
			names = append(names, fmt.Sprintf("%s (%s)", summarizeText(st.Name), summarizeText(st.USN)))
		}
		fmt.Fprintf(&b, ", including %s", strings.Join(names, ", "))
	}
	b.WriteString(".")
	return b.String()
}
