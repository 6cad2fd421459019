package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"
)

// mockDataStore implements DataStore with canned results and call recording.
type mockDataStore struct {
	exams           []models.Exam
	subjects        []models.Subject
	rooms           []models.Room
	faculty         []models.Faculty
	allocations     []models.FacultyAllocation
	roomAllocations []models.RoomAllocation
	stats           *models.SystemStats
	searchResults   *models.SearchResults
	counts          map[string]int64

	failAll bool

	examCalls           []repository.ExamFilter
	subjectCalls        []repository.SubjectFilter
	roomCalls           []repository.RoomFilter
	facultyCalls        []repository.FacultyFilter
	allocationCalls     []repository.AllocationFilter
	roomAllocationCalls []repository.RoomAllocationFilter
	statsCalls          int
	searchCalls         int
}

var errMockStore = errors.New("store failure")

func (m *mockDataStore) FindExams(ctx context.Context, f repository.ExamFilter) ([]models.Exam, error) {
	m.examCalls = append(m.examCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.exams, nil
}

func (m *mockDataStore) FindSubjects(ctx context.Context, f repository.SubjectFilter) ([]models.Subject, error) {
	m.subjectCalls = append(m.subjectCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.subjects, nil
}

func (m *mockDataStore) FindRooms(ctx context.Context, f repository.RoomFilter) ([]models.Room, error) {
	m.roomCalls = append(m.roomCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.rooms, nil
}

func (m *mockDataStore) FindFaculty(ctx context.Context, f repository.FacultyFilter) ([]models.Faculty, error) {
	m.facultyCalls = append(m.facultyCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.faculty, nil
}

func (m *mockDataStore) FindFacultyAllocations(ctx context.Context, f repository.AllocationFilter) ([]models.FacultyAllocation, error) {
	m.allocationCalls = append(m.allocationCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.allocations, nil
}

func (m *mockDataStore) FindRoomAllocations(ctx context.Context, f repository.RoomAllocationFilter) ([]models.RoomAllocation, error) {
	m.roomAllocationCalls = append(m.roomAllocationCalls, f)
	if m.failAll {
		return nil, errMockStore
	}
	return m.roomAllocations, nil
}

func (m *mockDataStore) CountFacultyAllocations(ctx context.Context, f repository.AllocationFilter) (int64, error) {
	m.allocationCalls = append(m.allocationCalls, f)
	if m.failAll {
		return 0, errMockStore
	}
	switch {
	case f.Time.Upcoming:
		return m.counts["upcoming"], nil
	case f.Time.Past:
		return m.counts["past"], nil
	default:
		return m.counts["total"], nil
	}
}

func (m *mockDataStore) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	m.statsCalls++
	if m.failAll {
		return nil, errMockStore
	}
	return m.stats, nil
}

func (m *mockDataStore) SearchAll(ctx context.Context, text string, limit uint64) (*models.SearchResults, error) {
	m.searchCalls++
	if m.failAll {
		return nil, errMockStore
	}
	return m.searchResults, nil
}

// mockCompleter implements ChatCompleter.
type mockCompleter struct {
	response string
	err      error

	systemPrompts []string
	userMessages  []string
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	m.systemPrompts = append(m.systemPrompts, systemPrompt)
	m.userMessages = append(m.userMessages, userMessage)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// mockEmbedder returns a deterministic unit vector per text.
type mockEmbedder struct {
	dim          int
	err          error
	failContains string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.failContains != "" && strings.Contains(text, m.failContains) {
		return nil, ErrEmbeddingUnavailable
	}
	dim := m.dim
	if dim == 0 {
		dim = 4
	}
	sum := 0
	for _, b := range []byte(text) {
		sum += int(b)
	}
	vec := make([]float32, dim)
	vec[sum%dim] = 1
	return vec, nil
}

// mockHistoryStore implements HistoryStore in memory.
type mockHistoryStore struct {
	turns map[string][]ConversationTurn
	err   error
}

func (m *mockHistoryStore) Recent(ctx context.Context, sessionID string, n int) ([]ConversationTurn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return LastTurns(m.turns[sessionID], n), nil
}

func (m *mockHistoryStore) Append(ctx context.Context, sessionID string, turns ...ConversationTurn) error {
	if m.err != nil {
		return m.err
	}
	if m.turns == nil {
		m.turns = make(map[string][]ConversationTurn)
	}
	m.turns[sessionID] = append(m.turns[sessionID], turns...)
	return nil
}

// mockAnalyzer returns a fixed classification.
type mockAnalyzer struct {
	result IntentClassification
}

func (m *mockAnalyzer) Analyze(ctx context.Context, text string) IntentClassification {
	return m.result
}
