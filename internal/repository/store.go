package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store bundles the individual repositories behind the single lookup surface
// the retrieval pipeline consumes.
type Store struct {
	Exams           *ExamRepository
	Subjects        *SubjectRepository
	Rooms           *RoomRepository
	Faculty         *FacultyRepository
	Allocations     *AllocationRepository
	RoomAllocations *RoomAllocationRepository
	Users           *UserRepository
	Stats           *StatsRepository
}

func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		Exams:           NewExamRepository(db, logger),
		Subjects:        NewSubjectRepository(db, logger),
		Rooms:           NewRoomRepository(db, logger),
		Faculty:         NewFacultyRepository(db, logger),
		Allocations:     NewAllocationRepository(db, logger),
		RoomAllocations: NewRoomAllocationRepository(db, logger),
		Users:           NewUserRepository(db, logger),
		Stats:           NewStatsRepository(db, logger),
	}
}

func (s *Store) FindExams(ctx context.Context, filter ExamFilter) ([]models.Exam, error) {
	return s.Exams.Find(ctx, filter)
}

func (s *Store) FindSubjects(ctx context.Context, filter SubjectFilter) ([]models.Subject, error) {
	return s.Subjects.Find(ctx, filter)
}

func (s *Store) FindRooms(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	return s.Rooms.Find(ctx, filter)
}

func (s *Store) FindFaculty(ctx context.Context, filter FacultyFilter) ([]models.Faculty, error) {
	return s.Faculty.Find(ctx, filter)
}

func (s *Store) FindFacultyAllocations(ctx context.Context, filter AllocationFilter) ([]models.FacultyAllocation, error) {
	return s.Allocations.Find(ctx, filter)
}

func (s *Store) FindRoomAllocations(ctx context.Context, filter RoomAllocationFilter) ([]models.RoomAllocation, error) {
	return s.RoomAllocations.Find(ctx, filter)
}

func (s *Store) CountFacultyAllocations(ctx context.Context, filter AllocationFilter) (int64, error) {
	return s.Allocations.Count(ctx, filter)
}

func (s *Store) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	return s.Stats.GetSystemStats(ctx)
}

func (s *Store) SearchAll(ctx context.Context, text string, limit uint64) (*models.SearchResults, error) {
	return s.Stats.SearchAll(ctx, text, limit)
}
