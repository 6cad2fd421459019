package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type StatsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatsRepository(db *pgxpool.Pool, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// GetSystemStats aggregates the global counters.
func (r *StatsRepository) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	stats := &models.SystemStats{}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"exams", &stats.Exams},
		{"subjects", &stats.Subjects},
		{"rooms", &stats.Rooms},
		{"faculty", &stats.Faculty},
		{"faculty_allocations", &stats.FacultyAllocations},
		{"room_allocations", &stats.RoomAllocations},
	}

	for _, c := range counts {
		query := squirrel.Select("COUNT(*)").From(c.table).PlaceholderFormat(squirrel.Dollar)
		sql, args, err := query.ToSql()
		if err != nil {
			return nil, err
		}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	seated := "SELECT COALESCE(SUM(jsonb_array_length(students)), 0) FROM room_allocations"
	if err := r.db.QueryRow(ctx, seated).Scan(&stats.StudentsSeated); err != nil {
		return nil, err
	}

	return stats, nil
}

// SearchAll runs a keyword search across every entity kind, capping each
// kind's hit list at limit.
func (r *StatsRepository) SearchAll(ctx context.Context, text string, limit uint64) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	pattern := "%" + text + "%"

	examQuery := squirrel.Select("id", "name", "year", "semester", "start_date", "end_date", "created_at", "updated_at").
		From("exams").
		Where(squirrel.ILike{"name": pattern}).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)
	if err := r.scanExams(ctx, examQuery, &results.Exams); err != nil {
		return nil, err
	}

	subjectQuery := squirrel.Select("id", "name", "code", "semester", "department", "created_at").
		From("subjects").
		Where(squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"code": pattern}}).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)
	if err := r.scanSubjects(ctx, subjectQuery, &results.Subjects); err != nil {
		return nil, err
	}

	roomQuery := squirrel.Select("id", "number", "building", "floor", "capacity", "created_at").
		From("rooms").
		Where(squirrel.Or{squirrel.ILike{"number": pattern}, squirrel.ILike{"building": pattern}}).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)
	if err := r.scanRooms(ctx, roomQuery, &results.Rooms); err != nil {
		return nil, err
	}

	facultyQuery := squirrel.Select("id", "name", "email", "designation", "department", "created_at").
		From("faculty").
		Where(squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"email": pattern}}).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)
	if err := r.scanFaculty(ctx, facultyQuery, &results.Faculty); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *StatsRepository) scanExams(ctx context.Context, query squirrel.SelectBuilder, dest *[]models.Exam) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e models.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.Year, &e.Semester, &e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		*dest = append(*dest, e)
	}
	return rows.Err()
}

func (r *StatsRepository) scanSubjects(ctx context.Context, query squirrel.SelectBuilder, dest *[]models.Subject) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Semester, &s.Department, &s.CreatedAt); err != nil {
			return err
		}
		*dest = append(*dest, s)
	}
	return rows.Err()
}

func (r *StatsRepository) scanRooms(ctx context.Context, query squirrel.SelectBuilder, dest *[]models.Room) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Building, &room.Floor, &room.Capacity, &room.CreatedAt); err != nil {
			return err
		}
		*dest = append(*dest, room)
	}
	return rows.Err()
}

func (r *StatsRepository) scanFaculty(ctx context.Context, query squirrel.SelectBuilder, dest *[]models.Faculty) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var f models.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Designation, &f.Department, &f.CreatedAt); err != nil {
			return err
		}
		*dest = append(*dest, f)
	}
	return rows.Err()
}
