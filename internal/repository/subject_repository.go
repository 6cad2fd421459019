package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SubjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubjectRepository(db *pgxpool.Pool, logger *zap.Logger) *SubjectRepository {
	return &SubjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := squirrel.Insert("subjects").
		Columns("id", "name", "code", "semester", "department", "created_at").
		Values(subject.ID, subject.Name, subject.Code, subject.Semester, subject.Department, subject.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SubjectRepository) Find(ctx context.Context, filter SubjectFilter) ([]models.Subject, error) {
	query := squirrel.Select("id", "name", "code", "semester", "department", "created_at").
		From("subjects").
		OrderBy("code ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.Code != "" {
		query = query.Where(squirrel.ILike{"code": "%" + filter.Code + "%"})
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

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(
			&subject.ID, &subject.Name, &subject.Code, &subject.Semester, &subject.Department, &subject.CreatedAt,
		); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	return subjects, rows.Err()
}
