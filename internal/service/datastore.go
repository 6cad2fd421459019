package service

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"
)

// DataStore is the structured-lookup surface the retrieval pipeline depends
// on. Filters are sparse; an absent field means no constraint.
type DataStore interface {
	FindExams(ctx context.Context, filter repository.ExamFilter) ([]models.Exam, error)
	FindSubjects(ctx context.Context, filter repository.SubjectFilter) ([]models.Subject, error)
	FindRooms(ctx context.Context, filter repository.RoomFilter) ([]models.Room, error)
	FindFaculty(ctx context.Context, filter repository.FacultyFilter) ([]models.Faculty, error)
	FindFacultyAllocations(ctx context.Context, filter repository.AllocationFilter) ([]models.FacultyAllocation, error)
	FindRoomAllocations(ctx context.Context, filter repository.RoomAllocationFilter) ([]models.RoomAllocation, error)
	CountFacultyAllocations(ctx context.Context, filter repository.AllocationFilter) (int64, error)
	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
	SearchAll(ctx context.Context, text string, limit uint64) (*models.SearchResults, error)
}
