package repository

import (
	"context"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RoomRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoomRepository(db *pgxpool.Pool, logger *zap.Logger) *RoomRepository {
	return &RoomRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := squirrel.Insert("rooms").
		Columns("id", "number", "building", "floor", "capacity", "created_at").
		Values(room.ID, room.Number, room.Building, room.Floor, room.Capacity, room.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *RoomRepository) Find(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	query := squirrel.Select("id", "number", "building", "floor", "capacity", "created_at").
		From("rooms").
		OrderBy("building ASC", "number ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Number != "" {
		query = query.Where(squirrel.Eq{"number": filter.Number})
	}
	if filter.Building != "" {
		query = query.Where(squirrel.ILike{"building": "%" + filter.Building + "%"})
	}
	if filter.Floor != nil {
		query = query.Where(squirrel.Eq{"floor": *filter.Floor})
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

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(
			&room.ID, &room.Number, &room.Building, &room.Floor, &room.Capacity, &room.CreatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
