package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AllocationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAllocationRepository(db *pgxpool.Pool, logger *zap.Logger) *AllocationRepository {
	return &AllocationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AllocationRepository) Create(ctx context.Context, a *models.FacultyAllocation) error {
	query := squirrel.Insert("faculty_allocations").
		Columns("id", "exam_id", "subject_id", "room_id", "faculty_id", "date", "start_time", "end_time", "created_at").
		Values(a.ID, nullableID(a.Exam.ID()), nullableID(a.Subject.ID()), nullableID(a.Room.ID()), nullableID(a.Faculty.ID()),
			a.Date, a.StartTime, a.EndTime, a.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Find lists duties with their exam/subject/room/faculty references resolved
// in one pass. A reference whose joined row is gone comes back raw, never as
// an error.
func (r *AllocationRepository) Find(ctx context.Context, filter AllocationFilter) ([]models.FacultyAllocation, error) {
	query := squirrel.Select(
		"fa.id", "fa.date", "fa.start_time", "fa.end_time", "fa.created_at",
		"fa.exam_id", "e.name", "e.year", "e.semester",
		"fa.subject_id", "s.name", "s.code",
		"fa.room_id", "r.number", "r.building", "r.floor",
		"fa.faculty_id", "f.name", "f.email", "f.designation",
	).
		From("faculty_allocations fa").
		LeftJoin("exams e ON e.id = fa.exam_id").
		LeftJoin("subjects s ON s.id = fa.subject_id").
		LeftJoin("rooms r ON r.id = fa.room_id").
		LeftJoin("faculty f ON f.id = fa.faculty_id").
		OrderBy("fa.date ASC", "fa.start_time ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.FacultyID != nil {
		query = query.Where(squirrel.Eq{"fa.faculty_id": *filter.FacultyID})
	}
	if filter.FacultyName != "" {
		query = query.Where(squirrel.ILike{"f.name": "%" + filter.FacultyName + "%"})
	}
	if filter.RoomID != nil {
		query = query.Where(squirrel.Eq{"fa.room_id": *filter.RoomID})
	}
	if filter.RoomNumber != "" {
		query = query.Where(squirrel.Eq{"r.number": filter.RoomNumber})
	}
	if filter.ExamID != nil {
		query = query.Where(squirrel.Eq{"fa.exam_id": *filter.ExamID})
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Expr("fa.date::date = ?::date", *filter.Date))
	}
	query = applyTimeFilter(query, "fa.date", filter.Time)
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

	var allocations []models.FacultyAllocation
	for rows.Next() {
		var (
			a models.FacultyAllocation

			examID, subjectID, roomID, facultyID     *uuid.UUID
			examName                                 *string
			examYear, examSemester                   *int
			subjectName, subjectCode                 *string
			roomNumber, roomBuilding                 *string
			roomFloor                                *int
			facultyName, facultyEmail, facultyDesign *string
		)

		if err := rows.Scan(
			&a.ID, &a.Date, &a.StartTime, &a.EndTime, &a.CreatedAt,
			&examID, &examName, &examYear, &examSemester,
			&subjectID, &subjectName, &subjectCode,
			&roomID, &roomNumber, &roomBuilding, &roomFloor,
			&facultyID, &facultyName, &facultyEmail, &facultyDesign,
		); err != nil {
			return nil, err
		}

		if examName != nil && examID != nil {
			exam := models.Exam{ID: *examID, Name: *examName}
			if examYear != nil {
				exam.Year = *examYear
			}
			if examSemester != nil {
				exam.Semester = *examSemester
			}
			a.Exam = models.ResolvedRef(&exam)
		} else {
			a.Exam = rawRef[models.Exam](examID)
		}

		if subjectName != nil && subjectID != nil {
			subject := models.Subject{ID: *subjectID, Name: *subjectName}
			if subjectCode != nil {
				subject.Code = *subjectCode
			}
			a.Subject = models.ResolvedRef(&subject)
		} else {
			a.Subject = rawRef[models.Subject](subjectID)
		}

		if roomNumber != nil && roomID != nil {
			room := models.Room{ID: *roomID, Number: *roomNumber}
			if roomBuilding != nil {
				room.Building = *roomBuilding
			}
			if roomFloor != nil {
				room.Floor = *roomFloor
			}
			a.Room = models.ResolvedRef(&room)
		} else {
			a.Room = rawRef[models.Room](roomID)
		}

		if facultyName != nil && facultyID != nil {
			faculty := models.Faculty{ID: *facultyID, Name: *facultyName}
			if facultyEmail != nil {
				faculty.Email = *facultyEmail
			}
			if facultyDesign != nil {
				faculty.Designation = *facultyDesign
			}
			a.Faculty = models.ResolvedRef(&faculty)
		} else {
			a.Faculty = rawRef[models.Faculty](facultyID)
		}

		allocations = append(allocations, a)
	}

	return allocations, rows.Err()
}

// Count counts duties matching the filter without loading them.
func (r *AllocationRepository) Count(ctx context.Context, filter AllocationFilter) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("faculty_allocations fa").
		PlaceholderFormat(squirrel.Dollar)

	if filter.FacultyID != nil {
		query = query.Where(squirrel.Eq{"fa.faculty_id": *filter.FacultyID})
	}
	if filter.ExamID != nil {
		query = query.Where(squirrel.Eq{"fa.exam_id": *filter.ExamID})
	}
	query = applyTimeFilter(query, "fa.date", filter.Time)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func applyTimeFilter(query squirrel.SelectBuilder, column string, t TimeFilter) squirrel.SelectBuilder {
	switch {
	case t.Upcoming:
		return query.Where(squirrel.Expr(column + " >= CURRENT_DATE"))
	case t.Past:
		return query.Where(squirrel.Expr(column + " < CURRENT_DATE"))
	case t.Today:
		return query.Where(squirrel.Expr(column + "::date = CURRENT_DATE"))
	default:
		return query
	}
}

func rawRef[T models.Referent](id *uuid.UUID) models.Ref[T] {
	if id == nil {
		return models.Ref[T]{}
	}
	return models.RawRef[T](id.String())
}

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
