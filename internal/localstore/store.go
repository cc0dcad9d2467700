// Package localstore provides an on-device SQLite implementation of the
// emotion, profile and preference repositories.
package localstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type emotionRow struct {
	ID        string    `gorm:"primaryKey"`
	Emoji     string    `gorm:"not null"`
	Comment   string    `gorm:"not null;default:''"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Address   *string
	IsPin     bool      `gorm:"not null;default:false;index:idx_emotion_view"`
	CreatedAt time.Time `gorm:"not null;index:idx_emotion_view"`
}

func (emotionRow) TableName() string { return "emotion_records" }

type profileRow struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;default:''"`
	Age       int    `gorm:"not null;default:0"`
	Image     []byte
	Genres    string `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileRow) TableName() string { return "user_profile" }

type preferenceRow struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (preferenceRow) TableName() string { return "preferences" }

// Store is an on-device SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// its schema. dsn may be a file path or a "file:" URI.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// SQLite serialises writers.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: gdb}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&emotionRow{}, &profileRow{}, &preferenceRow{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("accessing underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// Emotions returns an EmotionRepository.
func (s *Store) Emotions() *EmotionRepository {
	return &EmotionRepository{db: s.db}
}

// Profiles returns a ProfileRepository.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Preferences returns a PreferenceRepository.
func (s *Store) Preferences() *PreferenceRepository {
	return &PreferenceRepository{db: s.db}
}
