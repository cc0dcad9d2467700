// Package prefs is the key-value preference store: profile display values and
// JSON blobs for emotion statistics, the playlist and the activity feed.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/mood"
)

// Backend persists preference blobs. Get returns db.ErrNotFound for
// missing keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CacheMetrics records cache lookups.
type CacheMetrics interface {
	IncCacheHits()
	IncCacheMisses()
}

type noopMetrics struct{}

func (noopMetrics) IncCacheHits()   {}
func (noopMetrics) IncCacheMisses() {}

// Store is a read-through cache over a preference Backend.
//
// Concurrent writers are last-write-wins. Read-modify-write helpers such as
// AddActivity and UpdateSongs are serialised within the process.
type Store struct {
	backend Backend
	cache   Cache
	logger  *zap.Logger
	metrics CacheMetrics

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithCache sets the in-process cache.
func WithCache(c Cache) Option {
	return func(s *Store) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the cache metrics recorder.
func WithMetrics(m CacheMetrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewStore creates a Store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		cache:   noopCache{},
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the raw value under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		s.metrics.IncCacheHits()
		return v, true, nil
	}
	s.metrics.IncCacheMisses()

	v, err := s.backend.Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(key, v)
	return v, true, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.backend.Put(ctx, key, value); err != nil {
		s.cache.Del(key)
		return err
	}
	s.cache.Set(key, value)
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.cache.Del(key)
	return s.backend.Delete(ctx, key)
}

// getJSON decodes the value under key into v. It reports false when the key
// is missing or holds malformed JSON; the latter is logged.
func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding malformed preference", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// EmotionStats returns the cached statistics, or the sample set if none
// have been computed yet.
func (s *Store) EmotionStats(ctx context.Context) ([]mood.Stat, error) {
	data, ok, err := s.Get(ctx, KeyEmotionStats)
	if err != nil {
		return nil, fmt.Errorf("loading emotion stats: %w", err)
	}
	if !ok {
		return SampleEmotionStats(), nil
	}
	stats, err := mood.DecodeStats(data)
	if err != nil {
		s.logger.Warn("discarding malformed emotion stats", zap.Error(err))
		return SampleEmotionStats(), nil
	}
	return stats, nil
}

// SaveEmotionStats replaces the cached statistics.
func (s *Store) SaveEmotionStats(ctx context.Context, stats []mood.Stat) error {
	data, err := mood.EncodeStats(stats)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, KeyEmotionStats, data); err != nil {
		return fmt.Errorf("saving emotion stats: %w", err)
	}
	return nil
}

// Songs returns the playlist, or the sample playlist if none is stored.
func (s *Store) Songs(ctx context.Context) ([]Song, error) {
	var songs []Song
	ok, err := s.getJSON(ctx, KeyPlaylistSongs, &songs)
	if err != nil {
		return nil, fmt.Errorf("loading songs: %w", err)
	}
	if !ok {
		return SampleSongs(), nil
	}
	if songs == nil {
		songs = []Song{}
	}
	return songs, nil
}

// SaveSongs replaces the playlist.
func (s *Store) SaveSongs(ctx context.Context, songs []Song) error {
	if songs == nil {
		songs = []Song{}
	}
	if err := s.putJSON(ctx, KeyPlaylistSongs, songs); err != nil {
		return fmt.Errorf("saving songs: %w", err)
	}
	return nil
}

// UpdateSongs applies fn to the current playlist and saves the result.
func (s *Store) UpdateSongs(ctx context.Context, fn func([]Song) ([]Song, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.Songs(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(songs)
	if err != nil {
		return err
	}
	return s.SaveSongs(ctx, updated)
}

// ActivityItems returns the activity feed, newest first.
func (s *Store) ActivityItems(ctx context.Context) ([]ActivityItem, error) {
	var items []ActivityItem
	ok, err := s.getJSON(ctx, KeyActivityItems, &items)
	if err != nil {
		return nil, fmt.Errorf("loading activity items: %w", err)
	}
	if !ok {
		return SampleActivityItems(), nil
	}
	if items == nil {
		items = []ActivityItem{}
	}
	return items, nil
}

// AddActivity prepends item to the feed, keeping at most MaxActivityItems.
func (s *Store) AddActivity(ctx context.Context, item ActivityItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.ActivityItems(ctx)
	if err != nil {
		return err
	}
	items = append([]ActivityItem{item}, items...)
	if len(items) > MaxActivityItems {
		items = items[:MaxActivityItems]
	}
	if err := s.putJSON(ctx, KeyActivityItems, items); err != nil {
		return fmt.Errorf("saving activity items: %w", err)
	}
	return nil
}

// ProfileDisplay returns the stored display values, filling gaps from
// DefaultProfileDisplay.
func (s *Store) ProfileDisplay(ctx context.Context) (ProfileDisplay, error) {
	d := DefaultProfileDisplay()

	for key, dst := range map[string]*string{
		KeyProfileName: &d.Name,
		KeyProfileBio:  &d.Bio,
		KeyProfileAge:  &d.Age,
	} {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return ProfileDisplay{}, fmt.Errorf("loading %s: %w", key, err)
		}
		if ok && len(v) > 0 {
			*dst = string(v)
		}
	}

	var genres []string
	ok, err := s.getJSON(ctx, KeyProfileGenres, &genres)
	if err != nil {
		return ProfileDisplay{}, fmt.Errorf("loading %s: %w", KeyProfileGenres, err)
	}
	if ok && len(genres) > 0 {
		d.Genres = genres
	}
	return d, nil
}

// SaveProfileDisplay replaces the stored display values with d. An empty
// field removes its key so the default shows again.
func (s *Store) SaveProfileDisplay(ctx context.Context, d ProfileDisplay) error {
	for key, v := range map[string]string{
		KeyProfileName: d.Name,
		KeyProfileBio:  d.Bio,
		KeyProfileAge:  d.Age,
	} {
		var err error
		if v == "" {
			err = s.Delete(ctx, key)
		} else {
			err = s.Put(ctx, key, []byte(v))
		}
		if err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	var err error
	if len(d.Genres) == 0 {
		err = s.Delete(ctx, KeyProfileGenres)
	} else {
		err = s.putJSON(ctx, KeyProfileGenres, d.Genres)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", KeyProfileGenres, err)
	}
	return nil
}

// ClearProfileDisplay removes stored display values so defaults apply again.
func (s *Store) ClearProfileDisplay(ctx context.Context) error {
	for _, key := range []string{KeyProfileName, KeyProfileBio, KeyProfileAge, KeyProfileGenres} {
		if err := s.Delete(ctx, key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}
