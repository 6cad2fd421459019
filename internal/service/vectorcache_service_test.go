package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func testVectorConfig() *config.VectorCacheConfig {
	return &config.VectorCacheConfig{
		Collection:             "exam-knowledge-test",
		TopK:                   10,
		MinRetrievalSimilarity: 0.25,
		MinRelevanceSimilarity: 0.30,
	}
}

func seedStore() *mockDataStore {
	exam := models.Exam{
		ID:        uuid.New(),
		Name:      "Midterm Examination",
		Year:      2026,
		Semester:  3,
		StartDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC),
	}
	faculty := models.Faculty{ID: uuid.New(), Name: "Dr. Anitha Rao"}
	room := models.Room{ID: uuid.New(), Number: "204", Building: "Main Block"}

	return &mockDataStore{
		exams: []models.Exam{exam},
		allocations: []models.FacultyAllocation{
			{
				ID:      uuid.New(),
				Exam:    models.ResolvedRef(&exam),
				Faculty: models.ResolvedRef(&faculty),
				Room:    models.ResolvedRef(&room),
				Date:    exam.StartDate,
			},
			// Dangling exam reference, must be skipped.
			{
				ID:      uuid.New(),
				Exam:    models.RawRef[models.Exam](uuid.New().String()),
				Faculty: models.ResolvedRef(&faculty),
			},
		},
		roomAllocations: []models.RoomAllocation{
			{
				ID:   uuid.New(),
				Exam: models.ResolvedRef(&exam),
				Room: models.ResolvedRef(&room),
				Date: exam.StartDate,
				Students: []models.StudentSeat{
					{USN: "1MS22CS001", Name: "Aditi Sharma", Semester: 3, SeatNumber: 1},
				},
			},
			// Dangling room reference, must be skipped.
			{
				ID:   uuid.New(),
				Exam: models.ResolvedRef(&exam),
				Room: models.RawRef[models.Room](uuid.New().String()),
			},
		},
	}
}

func TestVectorCache_NotReadyBeforeInit(t *testing.T) {
	svc := NewVectorCacheService(testVectorConfig(), &mockEmbedder{}, seedStore(), zap.NewNop())

	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, ErrIndexNotReady) {
		t.Errorf("rebuild before init should fail with ErrIndexNotReady, got %v", err)
	}
	if _, err := svc.Search(context.Background(), []float32{1, 0, 0, 0}, 5); !errors.Is(err, ErrIndexNotReady) {
		t.Errorf("search before init should fail with ErrIndexNotReady, got %v", err)
	}
}

func TestVectorCache_RebuildCountsSkipsAndFailures(t *testing.T) {
	store := seedStore()
	svc := NewVectorCacheService(testVectorConfig(), &mockEmbedder{}, store, zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	report, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	// The exam, one resolvable allocation and one resolvable seating plan
	// index; the two dangling records are skipped.
	if report.Skipped != 2 {
		t.Errorf("expected 2 skipped records, got %d", report.Skipped)
	}
	if report.Indexed != 3 {
		t.Errorf("expected 3 indexed documents, got %d", report.Indexed)
	}
	if report.Failed != 0 {
		t.Errorf("expected no failed documents, got %d", report.Failed)
	}
	if report.Generation != 1 {
		t.Errorf("first rebuild should be generation 1, got %d", report.Generation)
	}
}

func TestVectorCache_EmbeddingFailureCountsAsFailed(t *testing.T) {
	store := seedStore()
	// Every exam summary starts with "Exam <name>".
	embedder := &mockEmbedder{failContains: "Exam Midterm Examination"}
	svc := NewVectorCacheService(testVectorConfig(), embedder, store, zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	report, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if report.Failed != 1 {
		t.Errorf("expected 1 failed document, got %d", report.Failed)
	}
	if report.Indexed != 2 {
		t.Errorf("expected the remaining documents indexed, got %d", report.Indexed)
	}
}

func TestVectorCache_RebuildIsIdempotent(t *testing.T) {
	store := seedStore()
	embedder := &mockEmbedder{}
	svc := NewVectorCacheService(testVectorConfig(), embedder, store, zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	first, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	firstIDs := collectIDs(t, svc, store)

	second, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	secondIDs := collectIDs(t, svc, store)

	if first.Indexed != second.Indexed {
		t.Errorf("document count changed across rebuilds: %d vs %d", first.Indexed, second.Indexed)
	}
	if second.Generation != first.Generation+1 {
		t.Errorf("generation should increment per rebuild: %d then %d", first.Generation, second.Generation)
	}
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("ID set size changed: %v vs %v", firstIDs, secondIDs)
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Errorf("ID set changed across rebuilds: %v vs %v", firstIDs, secondIDs)
			break
		}
	}
}

// collectIDs searches with the exam summary vector and the allocation summary
// vectors so every indexed document is reachable.
func collectIDs(t *testing.T, svc *VectorCacheService, store *mockDataStore) []string {
	t.Helper()
	embedder := &mockEmbedder{}
	seen := make(map[string]bool)

	queries := []string{
		SummarizeExam(store.exams[0]),
		SummarizeFacultyAllocation(store.allocations[0]),
		SummarizeRoomAllocation(store.roomAllocations[0]),
	}
	for _, content := range queries {
		vec, err := embedder.Embed(context.Background(), content)
		if err != nil {
			t.Fatalf("embed failed: %v", err)
		}
		results, err := svc.Search(context.Background(), vec, 10)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		for _, r := range results {
			seen[r.ID] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestVectorCache_SearchEmptyIndexReturnsNothing(t *testing.T) {
	svc := NewVectorCacheService(testVectorConfig(), &mockEmbedder{}, &mockDataStore{}, zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	results, err := svc.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestVectorCache_SearchFindsIndexedDocument(t *testing.T) {
	store := seedStore()
	embedder := &mockEmbedder{}
	svc := NewVectorCacheService(testVectorConfig(), embedder, store, zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	content := SummarizeExam(store.exams[0])
	vec, err := embedder.Embed(context.Background(), content)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	results, err := svc.Search(context.Background(), vec, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least the exam document")
	}

	wantID := examDocID(store.exams[0].ID)
	found := false
	for _, r := range results {
		if float64(r.Similarity) < 0.25 {
			t.Errorf("result below the retrieval threshold leaked through: %f", r.Similarity)
		}
		if r.ID == wantID {
			found = true
			if r.Content != content {
				t.Error("indexed content should round-trip unchanged")
			}
			if r.Metadata["type"] != "exam" {
				t.Errorf("unexpected metadata type: %q", r.Metadata["type"])
			}
		}
	}
	if !found {
		t.Errorf("exam document %s not returned", wantID)
	}
}

// gatedEmbedder blocks inside Embed until released, holding a rebuild in
// flight so concurrent callers can be observed.
type gatedEmbedder struct {
	mockEmbedder
	entered chan struct{}
	release chan struct{}
}

func (g *gatedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return g.mockEmbedder.Embed(ctx, text)
}

func TestVectorCache_ConcurrentRebuildIsRejected(t *testing.T) {
	embedder := &gatedEmbedder{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := NewVectorCacheService(testVectorConfig(), embedder, seedStore(), zap.NewNop())
	if err := svc.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Rebuild(context.Background())
		done <- err
	}()

	<-embedder.entered

	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("expected ErrRebuildInProgress while a rebuild is in flight, got %v", err)
	}

	close(embedder.release)
	if err := <-done; err != nil {
		t.Fatalf("the in-flight rebuild should complete: %v", err)
	}

	// The lock is released once the first rebuild finishes.
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Errorf("rebuild after release failed: %v", err)
	}
}
