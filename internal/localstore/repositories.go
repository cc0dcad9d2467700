package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justestif/go-muji/internal/db"
)

// EmotionRepository handles emotion records in SQLite.
type EmotionRepository struct {
	db *gorm.DB
}

// Create inserts a new emotion record. A zero ID is replaced with a new UUID.
func (r *EmotionRepository) Create(ctx context.Context, rec *db.EmotionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	row := emotionRow{
		ID:        rec.ID.String(),
		Emoji:     rec.Emoji,
		Comment:   rec.Comment,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Address:   rec.Address,
		IsPin:     rec.IsPin,
		CreatedAt: rec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting emotion record: %w", err)
	}
	return nil
}

// List returns all records in the pin or statistics view, oldest first.
func (r *EmotionRepository) List(ctx context.Context, isPin bool) ([]db.EmotionRecord, error) {
	var rows []emotionRow
	err := r.db.WithContext(ctx).
		Where("is_pin = ?", isPin).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying emotion records: %w", err)
	}

	records := make([]db.EmotionRecord, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing record id %q: %w", row.ID, err)
		}
		records = append(records, db.EmotionRecord{
			ID:        id,
			Emoji:     row.Emoji,
			Comment:   row.Comment,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Address:   row.Address,
			IsPin:     row.IsPin,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

// SetAddress back-fills the reverse-geocoded address of a record.
func (r *EmotionRepository) SetAddress(ctx context.Context, id uuid.UUID, address string) error {
	result := r.db.WithContext(ctx).
		Model(&emotionRow{}).
		Where("id = ?", id.String()).
		Update("address", address)
	if result.Error != nil {
		return fmt.Errorf("updating address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Delete removes the records with the given IDs and returns how many were deleted.
func (r *EmotionRepository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	result := r.db.WithContext(ctx).Where("id IN ?", keys).Delete(&emotionRow{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting emotion records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// profileID is the primary key of the single profile row.
const profileID = 1

// ProfileRepository handles the single user profile row in SQLite.
type ProfileRepository struct {
	db *gorm.DB
}

// Get retrieves the profile. Returns db.ErrNotFound if none exists.
func (r *ProfileRepository) Get(ctx context.Context) (*db.Profile, error) {
	var row profileRow
	err := r.db.WithContext(ctx).First(&row, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &db.Profile{
		Name:      row.Name,
		Age:       row.Age,
		Image:     row.Image,
		Genres:    row.Genres,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Upsert creates or updates the profile in place.
func (r *ProfileRepository) Upsert(ctx context.Context, p *db.Profile) error {
	now := time.Now()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	row := profileRow{
		ID:        profileID,
		Name:      p.Name,
		Age:       p.Age,
		Image:     p.Image,
		Genres:    p.Genres,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "age", "image", "genres", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

// Delete clears the profile row.
func (r *ProfileRepository) Delete(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Delete(&profileRow{}, profileID).Error; err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// PreferenceRepository handles keyed preference blobs in SQLite.
type PreferenceRepository struct {
	db *gorm.DB
}

// Get returns the value stored under key, or db.ErrNotFound.
func (r *PreferenceRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var row preferenceRow
	err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying preference %q: %w", key, err)
	}
	return row.Value, nil
}

// Put stores value under key, replacing any previous value.
func (r *PreferenceRepository) Put(ctx context.Context, key string, value []byte) error {
	row := preferenceRow{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("storing preference %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&preferenceRow{}).Error; err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}
