// Package emotions records emoji-tagged emotions and derives their statistics.
package emotions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/mood"
	"github.com/justestif/go-muji/internal/prefs"
)

// DefaultRadius is the pin de-duplication radius in meters.
const DefaultRadius = 50.0

// defaultGeocodeTimeout bounds one background reverse-geocode.
const defaultGeocodeTimeout = 15 * time.Second

// Repository persists emotion records.
type Repository interface {
	Create(ctx context.Context, rec *db.EmotionRecord) error
	List(ctx context.Context, isPin bool) ([]db.EmotionRecord, error)
	SetAddress(ctx context.Context, id uuid.UUID, address string) error
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// StatsStore receives recomputed statistics and activity entries.
type StatsStore interface {
	SaveEmotionStats(ctx context.Context, stats []mood.Stat) error
	AddActivity(ctx context.Context, item prefs.ActivityItem) error
}

// Service is the emotion store.
type Service struct {
	repo           Repository
	geocoder       geo.Geocoder
	stats          StatsStore
	logger         *zap.Logger
	radius         float64
	geocodeTimeout time.Duration
	now            func() time.Time

	wg sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRadius sets the pin de-duplication radius in meters.
func WithRadius(meters float64) Option {
	return func(s *Service) {
		if meters > 0 {
			s.radius = meters
		}
	}
}

// WithGeocodeTimeout bounds each background reverse-geocode.
func WithGeocodeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.geocodeTimeout = d
		}
	}
}

// WithClock overrides the time source used for activity entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an emotion store.
func NewService(repo Repository, geocoder geo.Geocoder, stats StatsStore, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		geocoder:       geocoder,
		stats:          stats,
		logger:         zap.NewNop(),
		radius:         DefaultRadius,
		geocodeTimeout: defaultGeocodeTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert records a statistics entry. The address is resolved in the
// background; statistics are recomputed before Insert returns.
func (s *Service) Insert(ctx context.Context, emoji, comment string, at geo.Coordinate) (*db.EmotionRecord, error) {
	rec, err := s.create(ctx, emoji, comment, at, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.ComputeStats(ctx); err != nil {
		s.logger.Warn("recomputing emotion stats", zap.Error(err))
	}
	s.recordActivity(ctx, prefs.ActivityItem{
		Icon: "face.smiling",
		Text: fmt.Sprintf("%s '%s' 감정을 기록했습니다", emoji, mood.LabelFor(emoji)),
	})
	return rec, nil
}

// InsertPin records a map pin without de-duplication.
func (s *Service) InsertPin(ctx context.Context, emoji, comment string, at geo.Coordinate) (*db.EmotionRecord, error) {
	return s.create(ctx, emoji, comment, at, true)
}

// DropPin removes pins within the configured radius of at and then records
// a new pin there. It returns the new pin and how many pins were removed.
// A failed cleanup is logged and does not block the insert.
func (s *Service) DropPin(ctx context.Context, emoji, comment string, at geo.Coordinate) (*db.EmotionRecord, int, error) {
	removed, err := s.DeleteNear(ctx, []geo.Coordinate{at}, s.radius)
	if err != nil {
		s.logger.Warn("removing nearby pins", zap.Error(err))
	}

	rec, err := s.InsertPin(ctx, emoji, comment, at)
	if err != nil {
		return nil, removed, err
	}
	s.recordActivity(ctx, prefs.ActivityItem{
		Icon: "mappin.and.ellipse",
		Text: fmt.Sprintf("지도에 %s 핀을 남겼습니다", emoji),
	})
	return rec, removed, nil
}

// FetchAll returns the records of one view. Storage errors are logged and
// yield an empty slice.
func (s *Service) FetchAll(ctx context.Context, isPin bool) []db.EmotionRecord {
	records, err := s.repo.List(ctx, isPin)
	if err != nil {
		s.logger.Error("fetching emotion records", zap.Bool("is_pin", isPin), zap.Error(err))
		return []db.EmotionRecord{}
	}
	if records == nil {
		records = []db.EmotionRecord{}
	}
	return records
}

// Latest returns the most recent statistics record whose address has been
// resolved. Records still waiting on their geocode are skipped.
func (s *Service) Latest(ctx context.Context) (*db.EmotionRecord, bool) {
	records := s.FetchAll(ctx, false)
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Address != nil {
			return &records[i], true
		}
	}
	return nil, false
}

// DeleteNear deletes every pin within radius meters of any coordinate and
// returns how many were deleted. Statistics records are never touched.
// A non-positive radius selects DefaultRadius.
func (s *Service) DeleteNear(ctx context.Context, coords []geo.Coordinate, radius float64) (int, error) {
	if len(coords) == 0 {
		return 0, nil
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	pins, err := s.repo.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("listing pins: %w", err)
	}

	var ids []uuid.UUID
	for _, p := range pins {
		if !p.IsPin {
			continue
		}
		if geo.WithinAny(geo.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}, coords, radius) {
			ids = append(ids, p.ID)
		}
	}

	n, err := s.repo.Delete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting pins: %w", err)
	}
	return int(n), nil
}

// ComputeStats recomputes the per-emoji percentages over all statistics
// records and stores them in the statistics cache.
func (s *Service) ComputeStats(ctx context.Context) ([]mood.Stat, error) {
	records, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing emotion records: %w", err)
	}

	symbols := make([]string, len(records))
	for i, r := range records {
		symbols[i] = r.Emoji
	}
	stats := mood.ComputeStats(symbols)

	if err := s.stats.SaveEmotionStats(ctx, stats); err != nil {
		return stats, fmt.Errorf("caching emotion stats: %w", err)
	}
	return stats, nil
}

// Wait blocks until all background address lookups have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) create(ctx context.Context, emoji, comment string, at geo.Coordinate, isPin bool) (*db.EmotionRecord, error) {
	rec := &db.EmotionRecord{
		ID:        uuid.New(),
		Emoji:     emoji,
		Comment:   comment,
		Latitude:  at.Latitude,
		Longitude: at.Longitude,
		IsPin:     isPin,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving emotion record: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolveAddress(context.WithoutCancel(ctx), rec.ID, at)
	}()

	return rec, nil
}

// resolveAddress reverse-geocodes at and stores the result on record id.
// Lookup failures store geo.UnknownLocation.
func (s *Service) resolveAddress(ctx context.Context, id uuid.UUID, at geo.Coordinate) {
	ctx, cancel := context.WithTimeout(ctx, s.geocodeTimeout)
	defer cancel()

	address, err := s.geocoder.ReverseGeocode(ctx, at)
	if err != nil {
		s.logger.Warn("reverse geocoding failed",
			zap.String("id", id.String()),
			zap.Float64("lat", at.Latitude),
			zap.Float64("lon", at.Longitude),
			zap.Error(err),
		)
		address = geo.UnknownLocation
	}

	err = s.repo.SetAddress(ctx, id, address)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// Deleted by DeleteNear or DropPin while the lookup ran.
		s.logger.Debug("record gone before address stored", zap.String("id", id.String()))
	case err != nil:
		s.logger.Error("storing address", zap.String("id", id.String()), zap.Error(err))
	}
}

func (s *Service) recordActivity(ctx context.Context, item prefs.ActivityItem) {
	item.Time = s.now().Format("2006-01-02 15:04")
	if err := s.stats.AddActivity(ctx, item); err != nil {
		s.logger.Warn("recording activity", zap.Error(err))
	}
}
