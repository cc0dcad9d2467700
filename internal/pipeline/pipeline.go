// Package pipeline chains the weather lookup, the recommendation request and
// the optional track lookup that follow a saved emotion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/profile"
	"github.com/justestif/go-muji/internal/recommend"
)

// Validation errors carry the messages shown to the user.
var (
	ErrEmptyMood  = errors.New("감정을 입력해주세요")
	ErrNoLocation = errors.New("위치 정보를 가져올 수 없습니다.")
)

// NoResultsMessage is shown when the model returned nothing usable.
const NoResultsMessage = "추천 결과가 없습니다."

// Stage names used for metrics and logs.
const (
	StageWeather   = "weather"
	StageRecommend = "recommend"
	StageResolve   = "resolve"
)

const defaultResolveConcurrency = 4

// WeatherFetcher returns a weather description for a coordinate.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (string, error)
}

// Recommender returns raw recommendation lines.
type Recommender interface {
	GetRecommendations(ctx context.Context, req recommend.Request) ([]string, error)
}

// ProfileSource provides the age and genres used in the prompt.
type ProfileSource interface {
	Get(ctx context.Context) (*profile.Profile, error)
}

// LocationSource provides the most recent statistics record, whose address
// describes the user's location.
type LocationSource interface {
	Latest(ctx context.Context) (*db.EmotionRecord, bool)
}

// TrackResolver maps a song title to a streaming URL.
type TrackResolver interface {
	ResolveTrack(ctx context.Context, query string) (string, error)
}

// Metrics records stage timings.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	IncStageErrors(stage string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, time.Duration) {}
func (noopMetrics) IncStageErrors(string)              {}

// Input starts a pipeline run.
type Input struct {
	Mood     string          `json:"mood"`
	Location *geo.Coordinate `json:"location"`
}

// Validate reports ErrEmptyMood or ErrNoLocation.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Mood) == "" {
		return ErrEmptyMood
	}
	if in.Location == nil {
		return ErrNoLocation
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	Weather         string                     `json:"weather"`
	Location        string                     `json:"location"`
	Lines           []string                   `json:"lines"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Empty reports whether the run produced no recommendations.
func (r *Result) Empty() bool {
	return len(r.Recommendations) == 0
}

// Pipeline runs recommendation requests.
type Pipeline struct {
	weather     WeatherFetcher
	recommender Recommender
	profiles    ProfileSource
	locations   LocationSource
	resolver    TrackResolver
	metrics     Metrics
	logger      *zap.Logger
	concurrency int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTrackResolver enables track lookup for each recommendation.
func WithTrackResolver(r TrackResolver) Option {
	return func(p *Pipeline) {
		p.resolver = r
	}
}

// WithMetrics sets the stage metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithResolveConcurrency sets how many track lookups run at once.
func WithResolveConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Pipeline.
func New(weather WeatherFetcher, recommender Recommender, profiles ProfileSource, locations LocationSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		weather:     weather,
		recommender: recommender,
		profiles:    profiles,
		locations:   locations,
		metrics:     noopMetrics{},
		logger:      zap.NewNop(),
		concurrency: defaultResolveConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches the weather, requests recommendations and pairs the reply.
// Stages run strictly in order; cancelling ctx aborts the remaining ones.
// An empty model reply yields an empty Result rather than an error.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var weather string
	err := p.stage(StageWeather, func() error {
		var err error
		weather, err = p.weather.Fetch(ctx, in.Location.Latitude, in.Location.Longitude)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching weather: %w", err)
	}

	req := recommend.Request{
		Location: p.location(ctx),
		Weather:  weather,
		Mood:     strings.TrimSpace(in.Mood),
		Genre:    recommend.DefaultGenre,
	}
	p.applyProfile(ctx, &req)

	var lines []string
	err = p.stage(StageRecommend, func() error {
		var err error
		lines, err = p.recommender.GetRecommendations(ctx, req)
		return err
	})
	if err != nil && !errors.Is(err, recommend.ErrEmptyResponse) {
		return nil, fmt.Errorf("requesting recommendations: %w", err)
	}

	result := &Result{
		Weather:         weather,
		Location:        req.Location,
		Lines:           lines,
		Recommendations: recommend.Pair(lines),
	}
	if result.Lines == nil {
		result.Lines = []string{}
	}

	if p.resolver != nil && !result.Empty() {
		_ = p.stage(StageResolve, func() error {
			return p.resolveTracks(ctx, result.Recommendations)
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// stage runs fn and records its duration and failure.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(start))
	if err != nil && !errors.Is(err, recommend.ErrEmptyResponse) {
		p.metrics.IncStageErrors(name)
		p.logger.Warn("pipeline stage failed", zap.String("stage", name), zap.Error(err))
	}
	return err
}

// location returns the address of the latest statistics record, or "".
func (p *Pipeline) location(ctx context.Context) string {
	rec, ok := p.locations.Latest(ctx)
	if !ok || rec.Address == nil {
		return ""
	}
	return *rec.Address
}

// applyProfile fills age and genre from the profile. A missing profile
// keeps the defaults.
func (p *Pipeline) applyProfile(ctx context.Context, req *recommend.Request) {
	prof, err := p.profiles.Get(ctx)
	if err != nil {
		p.logger.Warn("loading profile for recommendations", zap.Error(err))
		return
	}
	req.Age = prof.Age
	if len(prof.Genres) > 0 {
		req.Genre = strings.Join(prof.Genres, ", ")
	}
}

// resolveTracks fills TrackURL in place. Lookup failures leave it empty;
// only cancellation is reported.
func (p *Pipeline) resolveTracks(ctx context.Context, recs []recommend.Recommendation) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range recs {
		g.Go(func() error {
			url, err := p.resolver.ResolveTrack(gctx, recs[i].Title)
			if err != nil {
				p.logger.Debug("track lookup failed", zap.String("title", recs[i].Title), zap.Error(err))
				return nil
			}
			recs[i].TrackURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
