package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/auth"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/logger"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := repository.NewStore(db, appLogger)

	appLogger.Info("Starting database seeding...")

	if err := seed(ctx, store); err != nil {
		appLogger.Fatal("Seeding failed", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seed(ctx context.Context, store *repository.Store) error {
	now := time.Now()

	subjects := []*models.Subject{
		{ID: uuid.New(), Name: "Data Structures", Code: "CS301", Semester: 3, Department: "CSE", CreatedAt: now},
		{ID: uuid.New(), Name: "Operating Systems", Code: "CS401", Semester: 4, Department: "CSE", CreatedAt: now},
		{ID: uuid.New(), Name: "Digital Electronics", Code: "EC302", Semester: 3, Department: "ECE", CreatedAt: now},
	}
	for _, s := range subjects {
		if err := store.Subjects.Create(ctx, s); err != nil {
			return fmt.Errorf("failed to create subject %s: %w", s.Code, err)
		}
	}

	rooms := []*models.Room{
		{ID: uuid.New(), Number: "101", Building: "Main Block", Floor: 1, Capacity: 60, CreatedAt: now},
		{ID: uuid.New(), Number: "204", Building: "Main Block", Floor: 2, Capacity: 40, CreatedAt: now},
		{ID: uuid.New(), Number: "305", Building: "Science Block", Floor: 3, Capacity: 50, CreatedAt: now},
	}
	for _, r := range rooms {
		if err := store.Rooms.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create room %s: %w", r.Number, err)
		}
	}

	facultyMembers := []*models.Faculty{
		{ID: uuid.New(), Name: "Dr. Anitha Rao", Email: "anitha.rao@college.edu", Designation: "Professor", Department: "CSE", CreatedAt: now},
		{ID: uuid.New(), Name: "Prof. Suresh Kumar", Email: "suresh.kumar@college.edu", Designation: "Associate Professor", Department: "ECE", CreatedAt: now},
	}
	for _, f := range facultyMembers {
		if err := store.Faculty.Create(ctx, f); err != nil {
			return fmt.Errorf("failed to create faculty %s: %w", f.Name, err)
		}
	}

	exam := &models.Exam{
		ID:        uuid.New(),
		Name:      "Midterm Examination",
		Year:      2026,
		Semester:  3,
		StartDate: now.AddDate(0, 0, 14),
		EndDate:   now.AddDate(0, 0, 21),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Exams.Create(ctx, exam); err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}
	for _, s := range subjects {
		if err := store.Exams.AddSubject(ctx, exam.ID, s.ID); err != nil {
			return fmt.Errorf("failed to link subject: %w", err)
		}
	}
	for _, r := range rooms[:2] {
		if err := store.Exams.AddRoom(ctx, exam.ID, r.ID); err != nil {
			return fmt.Errorf("failed to link room: %w", err)
		}
	}

	allocations := []*models.FacultyAllocation{
		{
			ID:        uuid.New(),
			Exam:      models.RawRef[models.Exam](exam.ID.String()),
			Subject:   models.RawRef[models.Subject](subjects[0].ID.String()),
			Room:      models.RawRef[models.Room](rooms[0].ID.String()),
			Faculty:   models.RawRef[models.Faculty](facultyMembers[0].ID.String()),
			Date:      exam.StartDate,
			StartTime: "09:00",
			EndTime:   "12:00",
			CreatedAt: now,
		},
		{
			ID:        uuid.New(),
			Exam:      models.RawRef[models.Exam](exam.ID.String()),
			Subject:   models.RawRef[models.Subject](subjects[1].ID.String()),
			Room:      models.RawRef[models.Room](rooms[1].ID.String()),
			Faculty:   models.RawRef[models.Faculty](facultyMembers[1].ID.String()),
			Date:      exam.StartDate.AddDate(0, 0, 2),
			StartTime: "14:00",
			EndTime:   "17:00",
			CreatedAt: now,
		},
	}
	for _, a := range allocations {
		if err := store.Allocations.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to create allocation: %w", err)
		}
	}

	roomAllocation := &models.RoomAllocation{
		ID:   uuid.New(),
		Exam: models.RawRef[models.Exam](exam.ID.String()),
		Room: models.RawRef[models.Room](rooms[0].ID.String()),
		Subjects: []models.Ref[models.Subject]{
			models.RawRef[models.Subject](subjects[0].ID.String()),
		},
		Date: exam.StartDate,
		Students: []models.StudentSeat{
			{USN: "1MS22CS001", Name: "Aditi Sharma", Semester: 3, SeatNumber: 1},
			{USN: "1MS22CS002", Name: "Rahul Verma", Semester: 3, SeatNumber: 2},
			{USN: "1MS22CS003", Name: "Priya Nair", Semester: 3, SeatNumber: 3},
		},
		CreatedAt: now,
	}
	if err := store.RoomAllocations.Create(ctx, roomAllocation); err != nil {
		return fmt.Errorf("failed to create room allocation: %w", err)
	}

	adminHash, err := auth.HashPassword("admin12345")
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{
		ID:           uuid.New(),
		Name:         "System Admin",
		Email:        "admin@college.edu",
		PasswordHash: adminHash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	facultyHash, err := auth.HashPassword("faculty12345")
	if err != nil {
		return fmt.Errorf("failed to hash faculty password: %w", err)
	}
	facultyUser := &models.User{
		ID:           uuid.New(),
		Name:         facultyMembers[0].Name,
		Email:        facultyMembers[0].Email,
		PasswordHash: facultyHash,
		Role:         models.RoleFaculty,
		FacultyID:    &facultyMembers[0].ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return store.Users.Create(ctx, facultyUser)
}
