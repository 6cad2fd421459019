package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type FacultyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFacultyRepository(db *pgxpool.Pool, logger *zap.Logger) *FacultyRepository {
	return &FacultyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	query := squirrel.Insert("faculty").
		Columns("id", "name", "email", "designation", "department", "created_at").
		Values(faculty.ID, faculty.Name, faculty.Email, faculty.Designation, faculty.Department, faculty.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *FacultyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Faculty, error) {
	query := squirrel.Select("id", "name", "email", "designation", "department", "created_at").
		From("faculty").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var faculty models.Faculty
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&faculty.ID, &faculty.Name, &faculty.Email, &faculty.Designation, &faculty.Department, &faculty.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &faculty, nil
}

func (r *FacultyRepository) Find(ctx context.Context, filter FacultyFilter) ([]models.Faculty, error) {
	query := squirrel.Select("id", "name", "email", "designation", "department", "created_at").
		From("faculty").
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.Email != "" {
		query = query.Where(squirrel.ILike{"email": "%" + filter.Email + "%"})
	}
	if filter.Designation != "" {
		query = query.Where(squirrel.ILike{"designation": "%" + filter.Designation + "%"})
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

	var faculty []models.Faculty
	for rows.Next() {
		var f models.Faculty
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Email, &f.Designation, &f.Department, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		faculty = append(faculty, f)
	}

	return faculty, rows.Err()
}
