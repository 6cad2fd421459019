package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ExamRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExamRepository(db *pgxpool.Pool, logger *zap.Logger) *ExamRepository {
	return &ExamRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	query := squirrel.Insert("exams").
		Columns("id", "name", "year", "semester", "start_date", "end_date", "created_at", "updated_at").
		Values(exam.ID, exam.Name, exam.Year, exam.Semester, exam.StartDate, exam.EndDate, exam.CreatedAt, exam.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExamRepository) AddSubject(ctx context.Context, examID, subjectID uuid.UUID) error {
	query := squirrel.Insert("exam_subjects").
		Columns("exam_id", "subject_id").
		Values(examID, subjectID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExamRepository) AddRoom(ctx context.Context, examID, roomID uuid.UUID) error {
	query := squirrel.Insert("exam_rooms").
		Columns("exam_id", "room_id").
		Values(examID, roomID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Find lists exams matching the sparse filter, with their subject and room
// references attached as raw refs.
func (r *ExamRepository) Find(ctx context.Context, filter ExamFilter) ([]models.Exam, error) {
	query := squirrel.Select("id", "name", "year", "semester", "start_date", "end_date", "created_at", "updated_at").
		From("exams").
		OrderBy("start_date DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.Year != nil {
		query = query.Where(squirrel.Eq{"year": *filter.Year})
	}
	if filter.Semester != nil {
		query = query.Where(squirrel.Eq{"semester": *filter.Semester})
	}
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

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(
			&exam.ID, &exam.Name, &exam.Year, &exam.Semester, &exam.StartDate, &exam.EndDate, &exam.CreatedAt, &exam.UpdatedAt,
		); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range exams {
		if err := r.attachRefs(ctx, &exams[i]); err != nil {
			return nil, err
		}
	}

	return exams, nil
}

func (r *ExamRepository) attachRefs(ctx context.Context, exam *models.Exam) error {
	subjectIDs, err := r.linkedIDs(ctx, "exam_subjects", "subject_id", exam.ID)
	if err != nil {
		return err
	}
	for _, id := range subjectIDs {
		exam.Subjects = append(exam.Subjects, models.RawRef[models.Subject](id.String()))
	}

	roomIDs, err := r.linkedIDs(ctx, "exam_rooms", "room_id", exam.ID)
	if err != nil {
		return err
	}
	for _, id := range roomIDs {
		exam.Rooms = append(exam.Rooms, models.RawRef[models.Room](id.String()))
	}

	return nil
}

func (r *ExamRepository) linkedIDs(ctx context.Context, table, column string, examID uuid.UUID) ([]uuid.UUID, error) {
	query := squirrel.Select(column).
		From(table).
		Where(squirrel.Eq{"exam_id": examID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
