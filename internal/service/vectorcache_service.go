package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// VectorCacheService owns the single named vector collection holding
// pre-rendered entity summaries. Rebuilds replace the whole collection.
// Searches issued mid-rebuild may observe a partially populated collection;
// the generation counter lets callers detect that.
type VectorCacheService struct {
	db         *chromem.DB
	cfg        *config.VectorCacheConfig
	embedder   Embedder
	store      DataStore
	logger     *zap.Logger
	rebuildMu  sync.Mutex
	handleMu   sync.RWMutex
	collection *chromem.Collection
	generation atomic.Int64
	ready      atomic.Bool
}

func NewVectorCacheService(cfg *config.VectorCacheConfig, embedder Embedder, store DataStore, logger *zap.Logger) *VectorCacheService {
	return &VectorCacheService{
		db:       chromem.NewDB(),
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Init creates the collection, dropping any same-named leftover first.
// Must be called once before Rebuild or Search.
func (s *VectorCacheService) Init() error {
	if err := s.resetCollection(); err != nil {
		return err
	}
	s.ready.Store(true)
	s.logger.Info("Vector cache initialized", zap.String("collection", s.cfg.Collection))
	return nil
}

func (s *VectorCacheService) resetCollection() error {
	if err := s.db.DeleteCollection(s.cfg.Collection); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	coll, err := s.db.CreateCollection(s.cfg.Collection, nil, s.noEmbeddingFunc())
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	s.handleMu.Lock()
	s.collection = coll
	s.handleMu.Unlock()
	return nil
}

// noEmbeddingFunc guards against accidental implicit embedding. Every
// document and query carries a pre-computed vector.
func (s *VectorCacheService) noEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("implicit embedding is not supported")
	}
}

// Generation returns the rebuild counter. It increments once per completed
// rebuild, so a caller comparing values across a query can detect staleness.
func (s *VectorCacheService) Generation() int64 {
	return s.generation.Load()
}

// Rebuild drops the collection and re-derives one document per exam, per
// faculty allocation and per room allocation. Records whose required joins
// cannot be resolved are skipped; documents whose embedding call fails are
// counted as failed. Only one rebuild may run at a time.
func (s *VectorCacheService) Rebuild(ctx context.Context) (*RebuildReport, error) {
	if !s.ready.Load() {
		return nil, ErrIndexNotReady
	}
	if !s.rebuildMu.TryLock() {
		return nil, ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	docs, skipped, failed, err := s.deriveDocuments(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.resetCollection(); err != nil {
		return nil, err
	}

	s.handleMu.RLock()
	coll := s.collection
	s.handleMu.RUnlock()

	if len(docs) > 0 {
		if err := coll.AddDocuments(ctx, docs, 4); err != nil {
			return nil, fmt.Errorf("failed to insert documents: %w", err)
		}
	}

	gen := s.generation.Add(1)
	report := &RebuildReport{Indexed: len(docs), Skipped: skipped, Failed: failed, Generation: gen}
	s.logger.Info("Vector cache rebuilt",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("generation", gen))
	return report, nil
}

func (s *VectorCacheService) deriveDocuments(ctx context.Context) (docs []chromem.Document, skipped, failed int, err error) {
	exams, err := s.store.FindExams(ctx, repository.ExamFilter{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load exams: %w", err)
	}
	subjects, err := s.store.FindSubjects(ctx, repository.SubjectFilter{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load subjects: %w", err)
	}
	rooms, err := s.store.FindRooms(ctx, repository.RoomFilter{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load rooms: %w", err)
	}
	allocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load allocations: %w", err)
	}
	roomAllocations, err := s.store.FindRoomAllocations(ctx, repository.RoomAllocationFilter{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load room allocations: %w", err)
	}

	// Lookup maps built once per rebuild so ref resolution never goes back
	// to the database per record.
	subjectByID := make(map[string]*models.Subject, len(subjects))
	for i := range subjects {
		subjectByID[subjects[i].ID.String()] = &subjects[i]
	}
	roomByID := make(map[string]*models.Room, len(rooms))
	for i := range rooms {
		roomByID[rooms[i].ID.String()] = &rooms[i]
	}

	for i := range exams {
		exam := exams[i]
		exam.Subjects = resolveRefs(exam.Subjects, subjectByID)
		exam.Rooms = resolveRefs(exam.Rooms, roomByID)
		doc, ok := s.buildDocument(ctx, examDocID(exam.ID), SummarizeExam(exam), map[string]string{
			"type":      "exam",
			"exam_name": exam.Name,
			"year":      fmt.Sprintf("%d", exam.Year),
		})
		if !ok {
			failed++
			continue
		}
		docs = append(docs, doc)
	}

	for _, alloc := range allocations {
		if _, ok := alloc.Exam.Get(); !ok {
			skipped++
			continue
		}
		if _, ok := alloc.Faculty.Get(); !ok {
			skipped++
			continue
		}
		doc, ok := s.buildDocument(ctx, allocationDocID(alloc.ID), SummarizeFacultyAllocation(alloc), map[string]string{
			"type":         "allocation",
			"faculty_name": alloc.Faculty.Label(),
			"exam_name":    alloc.Exam.Label(),
			"date":         summarizeDate(alloc.Date),
		})
		if !ok {
			failed++
			continue
		}
		docs = append(docs, doc)
	}

	for i := range roomAllocations {
		ra := roomAllocations[i]
		if _, ok := ra.Exam.Get(); !ok {
			skipped++
			continue
		}
		if _, ok := ra.Room.Get(); !ok {
			skipped++
			continue
		}
		ra.Subjects = resolveRefs(ra.Subjects, subjectByID)
		doc, ok := s.buildDocument(ctx, roomAllocationDocID(ra.ID), SummarizeRoomAllocation(ra), map[string]string{
			"type":      "room_allocation",
			"room":      ra.Room.Label(),
			"exam_name": ra.Exam.Label(),
			"date":      summarizeDate(ra.Date),
		})
		if !ok {
			failed++
			continue
		}
		docs = append(docs, doc)
	}

	return docs, skipped, failed, nil
}

func (s *VectorCacheService) buildDocument(ctx context.Context, id, content string, metadata map[string]string) (chromem.Document, bool) {
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		s.logger.Warn("Skipping document, embedding failed",
			zap.String("id", id), zap.Error(err))
		return chromem.Document{}, false
	}
	return chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: vector,
		Metadata:  metadata,
	}, true
}

func examDocID(id uuid.UUID) string           { return "exam-" + id.String() }
func allocationDocID(id uuid.UUID) string     { return "allocation-" + id.String() }
func roomAllocationDocID(id uuid.UUID) string { return "room_allocation-" + id.String() }

func resolveRefs[T models.Referent](refs []models.Ref[T], byID map[string]*T) []models.Ref[T] {
	resolved := make([]models.Ref[T], 0, len(refs))
	for _, ref := range refs {
		if _, ok := ref.Get(); ok {
			resolved = append(resolved, ref)
			continue
		}
		if entity, ok := byID[ref.ID()]; ok {
			resolved = append(resolved, models.ResolvedRef(entity))
			continue
		}
		resolved = append(resolved, ref)
	}
	return resolved
}

// Search returns up to k documents with cosine similarity at or above the
// retrieval threshold. An empty index or an empty match set yields an empty
// slice, never an error.
func (s *VectorCacheService) Search(ctx context.Context, vector []float32, k int) ([]RetrievalResult, error) {
	if !s.ready.Load() {
		return nil, ErrIndexNotReady
	}
	s.handleMu.RLock()
	coll := s.collection
	s.handleMu.RUnlock()

	count := coll.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := coll.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matched := make([]RetrievalResult, 0, len(results))
	for _, res := range results {
		if float64(res.Similarity) < s.cfg.MinRetrievalSimilarity {
			continue
		}
		matched = append(matched, RetrievalResult{
			ID:         res.ID,
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		})
	}
	return matched, nil
}
