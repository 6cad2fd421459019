package repository

import (
	"context"
	"encoding/json"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RoomAllocationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoomAllocationRepository(db *pgxpool.Pool, logger *zap.Logger) *RoomAllocationRepository {
	return &RoomAllocationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RoomAllocationRepository) Create(ctx context.Context, ra *models.RoomAllocation) error {
	students, err := json.Marshal(ra.Students)
	if err != nil {
		return err
	}

	subjectIDs := make([]string, 0, len(ra.Subjects))
	for _, s := range ra.Subjects {
		subjectIDs = append(subjectIDs, s.ID())
	}

	query := squirrel.Insert("room_allocations").
		Columns("id", "exam_id", "room_id", "subject_ids", "date", "students", "created_at").
		Values(ra.ID, nullableID(ra.Exam.ID()), nullableID(ra.Room.ID()), subjectIDs, ra.Date, students, ra.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Find lists seating plans. Student filters match inside the students JSONB
// payload; room filters match the joined room row.
func (r *RoomAllocationRepository) Find(ctx context.Context, filter RoomAllocationFilter) ([]models.RoomAllocation, error) {
	query := squirrel.Select(
		"ra.id", "ra.date", "ra.students", "ra.subject_ids", "ra.created_at",
		"ra.exam_id", "e.name", "e.year", "e.semester",
		"ra.room_id", "r.number", "r.building", "r.floor",
	).
		From("room_allocations ra").
		LeftJoin("exams e ON e.id = ra.exam_id").
		LeftJoin("rooms r ON r.id = ra.room_id").
		OrderBy("ra.date ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.RoomID != nil {
		query = query.Where(squirrel.Eq{"ra.room_id": *filter.RoomID})
	}
	if filter.RoomNumber != "" {
		query = query.Where(squirrel.Eq{"r.number": filter.RoomNumber})
	}
	if len(filter.RoomNumbers) > 0 {
		query = query.Where(squirrel.Eq{"r.number": filter.RoomNumbers})
	}
	if filter.ExamID != nil {
		query = query.Where(squirrel.Eq{"ra.exam_id": *filter.ExamID})
	}
	if filter.Semester != nil {
		query = query.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(ra.students) st WHERE (st->>'semester')::int = ?)",
			*filter.Semester,
		))
	}
	if filter.StudentUSN != "" {
		query = query.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(ra.students) st WHERE st->>'usn' ILIKE ?)",
			"%"+filter.StudentUSN+"%",
		))
	}
	if filter.StudentName != "" {
		query = query.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(ra.students) st WHERE st->>'name' ILIKE ?)",
			"%"+filter.StudentName+"%",
		))
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Expr("ra.date::date = ?::date", *filter.Date))
	}
	query = applyTimeFilter(query, "ra.date", filter.Time)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []models.RoomAllocation
	for rows.Next() {
		var (
			ra models.RoomAllocation

			studentsRaw              []byte
			subjectIDs               []string
			examID, roomID           *uuid.UUID
			examName                 *string
			examYear, examSemester   *int
			roomNumber, roomBuilding *string
			roomFloor                *int
		)

		if err := rows.Scan(
			&ra.ID, &ra.Date, &studentsRaw, &subjectIDs, &ra.CreatedAt,
			&examID, &examName, &examYear, &examSemester,
			&roomID, &roomNumber, &roomBuilding, &roomFloor,
		); err != nil {
			return nil, err
		}

		if len(studentsRaw) > 0 {
			if err := json.Unmarshal(studentsRaw, &ra.Students); err != nil {
				r.logger.Warn("Malformed students payload", zap.String("id", ra.ID.String()), zap.Error(err))
			}
		}

		for _, id := range subjectIDs {
			ra.Subjects = append(ra.Subjects, models.RawRef[models.Subject](id))
		}

		if examName != nil && examID != nil {
			exam := models.Exam{ID: *examID, Name: *examName}
			if examYear != nil {
				exam.Year = *examYear
			}
			if examSemester != nil {
				exam.Semester = *examSemester
			}
			ra.Exam = models.ResolvedRef(&exam)
		} else {
			ra.Exam = rawRef[models.Exam](examID)
		}

		if roomNumber != nil && roomID != nil {
			room := models.Room{ID: *roomID, Number: *roomNumber}
			if roomBuilding != nil {
				room.Building = *roomBuilding
			}
			if roomFloor != nil {
				room.Floor = *roomFloor
			}
			ra.Room = models.ResolvedRef(&room)
		} else {
			ra.Room = rawRef[models.Room](roomID)
		}

		allocations = append(allocations, ra)
	}

	return allocations, rows.Err()
}
