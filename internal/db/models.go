package db

import (
	"time"

	"github.com/google/uuid"
)

// EmotionRecord is one logged emotion. IsPin separates map pins from
// statistics records.
type EmotionRecord struct {
	ID        uuid.UUID
	Emoji     string
	Comment   string
	Latitude  float64
	Longitude float64
	Address   *string // nullable until reverse geocoding completes
	IsPin     bool
	CreatedAt time.Time
}

// Profile is the single user profile row.
type Profile struct {
	Name      string
	Age       int
	Image     []byte
	Genres    string // comma-joined
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Preference is a keyed blob in the preference store.
type Preference struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
