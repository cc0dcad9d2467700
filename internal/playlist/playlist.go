// Package playlist manages the user's saved songs.
package playlist

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/justestif/go-muji/internal/prefs"
)

var (
	// ErrNotFound is returned when no song has the requested ID.
	ErrNotFound = errors.New("song not found")
	// ErrMissingField is returned when a song's title or artist is empty.
	ErrMissingField = errors.New("title and artist are required")
)

// SongStore persists the playlist.
type SongStore interface {
	Songs(ctx context.Context) ([]prefs.Song, error)
	UpdateSongs(ctx context.Context, fn func([]prefs.Song) ([]prefs.Song, error)) error
}

// Service manages the playlist.
type Service struct {
	store SongStore
}

// NewService creates a playlist service.
func NewService(store SongStore) *Service {
	return &Service{store: store}
}

// List returns the playlist in insertion order.
func (s *Service) List(ctx context.Context) ([]prefs.Song, error) {
	return s.store.Songs(ctx)
}

// Add appends a song and returns it with its assigned ID.
func (s *Service) Add(ctx context.Context, title, artist, emotion string) (prefs.Song, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return prefs.Song{}, ErrMissingField
	}

	var added prefs.Song
	err := s.store.UpdateSongs(ctx, func(songs []prefs.Song) ([]prefs.Song, error) {
		added = prefs.Song{
			ID:      NextID(songs),
			Title:   title,
			Artist:  artist,
			Emotion: strings.TrimSpace(emotion),
		}
		return append(songs, added), nil
	})
	if err != nil {
		return prefs.Song{}, err
	}
	return added, nil
}

// Delete removes the song with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.UpdateSongs(ctx, func(songs []prefs.Song) ([]prefs.Song, error) {
		for i, song := range songs {
			if song.ID == id {
				return append(songs[:i:i], songs[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// NextID returns one more than the largest numeric ID in songs.
// Non-numeric IDs are ignored.
func NextID(songs []prefs.Song) string {
	highest := 0
	for _, s := range songs {
		if n, err := strconv.Atoi(s.ID); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}
