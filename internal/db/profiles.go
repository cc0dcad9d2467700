package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles the single user profile row.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the profile. Returns ErrNotFound if none exists.
func (r *ProfileRepository) Get(ctx context.Context) (*Profile, error) {
	query := `
		SELECT name, age, image, genres, created_at, updated_at
		FROM user_profile
		WHERE id = 1
	`
	var p Profile
	err := r.pool.QueryRow(ctx, query).Scan(
		&p.Name,
		&p.Age,
		&p.Image,
		&p.Genres,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// Upsert creates or updates the profile in place.
func (r *ProfileRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO user_profile (id, name, age, image, genres, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			image = EXCLUDED.image,
			genres = EXCLUDED.genres,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.Age,
		p.Image,
		p.Genres,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// Delete clears the profile row.
func (r *ProfileRepository) Delete(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM user_profile WHERE id = 1`); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}
