package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmotionRepository handles emotion record database operations.
type EmotionRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new emotion record. A zero ID is replaced with a new UUID.
func (r *EmotionRepository) Create(ctx context.Context, rec *EmotionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO emotion_records (id, emoji, comment, latitude, longitude, address, is_pin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Emoji,
		rec.Comment,
		rec.Latitude,
		rec.Longitude,
		rec.Address,
		rec.IsPin,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting emotion record: %w", err)
	}
	return nil
}

// List returns all records in the pin or statistics view, oldest first.
func (r *EmotionRepository) List(ctx context.Context, isPin bool) ([]EmotionRecord, error) {
	query := `
		SELECT id, emoji, comment, latitude, longitude, address, is_pin, created_at
		FROM emotion_records
		WHERE is_pin = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, isPin)
	if err != nil {
		return nil, fmt.Errorf("querying emotion records: %w", err)
	}
	defer rows.Close()

	var records []EmotionRecord
	for rows.Next() {
		var rec EmotionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Emoji,
			&rec.Comment,
			&rec.Latitude,
			&rec.Longitude,
			&rec.Address,
			&rec.IsPin,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning emotion record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating emotion records: %w", err)
	}

	return records, nil
}

// SetAddress back-fills the reverse-geocoded address of a record.
func (r *EmotionRepository) SetAddress(ctx context.Context, id uuid.UUID, address string) error {
	query := `
		UPDATE emotion_records
		SET address = $2
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, address)
	if err != nil {
		return fmt.Errorf("updating address: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the records with the given IDs and returns how many were deleted.
func (r *EmotionRepository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM emotion_records WHERE id = ANY($1::uuid[])`
	result, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting emotion records: %w", err)
	}
	return result.RowsAffected(), nil
}
