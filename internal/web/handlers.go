package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gookit/validate"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/hotspots"
	"github.com/justestif/go-muji/internal/mood"
	"github.com/justestif/go-muji/internal/pipeline"
	"github.com/justestif/go-muji/internal/playlist"
	"github.com/justestif/go-muji/internal/prefs"
	"github.com/justestif/go-muji/internal/profile"
	"github.com/justestif/go-muji/internal/recommend"
)

const maxBodyBytes = 1 << 20

// errNoEmoji is returned when a save request has no emoji.
var errNoEmoji = errors.New("감정 이모지를 선택해주세요")

// EmotionService records and queries emotions and pins.
type EmotionService interface {
	Insert(ctx context.Context, emoji, comment string, at geo.Coordinate) (*db.EmotionRecord, error)
	DropPin(ctx context.Context, emoji, comment string, at geo.Coordinate) (*db.EmotionRecord, int, error)
	FetchAll(ctx context.Context, isPin bool) []db.EmotionRecord
	DeleteNear(ctx context.Context, coords []geo.Coordinate, radius float64) (int, error)
}

// FeedStore serves cached statistics and the activity feed.
type FeedStore interface {
	EmotionStats(ctx context.Context) ([]mood.Stat, error)
	ActivityItems(ctx context.Context) ([]prefs.ActivityItem, error)
}

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// ProfileService manages the user profile.
type ProfileService interface {
	Get(ctx context.Context) (*profile.Profile, error)
	Update(ctx context.Context, u profile.Update) (*profile.Profile, error)
	Delete(ctx context.Context) error
}

// PlaylistService manages saved songs.
type PlaylistService interface {
	List(ctx context.Context) ([]prefs.Song, error)
	Add(ctx context.Context, title, artist, emotion string) (prefs.Song, error)
	Delete(ctx context.Context, id string) error
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	emotions    EmotionService
	feed        FeedStore
	recommender Recommender
	profiles    ProfileService
	playlist    PlaylistService
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	emotions EmotionService,
	feed FeedStore,
	recommender Recommender,
	profiles ProfileService,
	songs PlaylistService,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		emotions:    emotions,
		feed:        feed,
		recommender: recommender,
		profiles:    profiles,
		playlist:    songs,
		logger:      logger,
	}
}

type emotionRequest struct {
	Emoji     string   `json:"emoji"`
	Comment   string   `json:"comment"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r emotionRequest) location() *geo.Coordinate {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type recordResponse struct {
	ID        string    `json:"id"`
	Emoji     string    `json:"emoji"`
	Label     string    `json:"label"`
	Comment   string    `json:"comment"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   *string   `json:"address"`
	IsPin     bool      `json:"isPin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRecord(rec *db.EmotionRecord) *recordResponse {
	if rec == nil {
		return nil
	}
	return &recordResponse{
		ID:        rec.ID.String(),
		Emoji:     rec.Emoji,
		Label:     mood.LabelFor(rec.Emoji),
		Comment:   rec.Comment,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Address:   rec.Address,
		IsPin:     rec.IsPin,
		CreatedAt: rec.CreatedAt,
	}
}

type recommendationResponse struct {
	Weather         string                     `json:"weather,omitempty"`
	Location        string                     `json:"location,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Message         string                     `json:"message,omitempty"`
}

func toRecommendations(res *pipeline.Result) recommendationResponse {
	resp := recommendationResponse{
		Weather:         res.Weather,
		Location:        res.Location,
		Recommendations: res.Recommendations,
	}
	if res.Empty() {
		resp.Recommendations = []recommend.Recommendation{}
		resp.Message = pipeline.NoResultsMessage
	}
	return resp
}

type saveResponse struct {
	Record *recordResponse `json:"record"`
	Pin    *recordResponse `json:"pin,omitempty"`
	recommendationResponse
	Error string `json:"error,omitempty"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SaveEmotion handles POST /api/emotions: it records the emotion, replaces
// nearby pins with a new one and runs the recommendation pipeline. The
// record is kept even when the pipeline fails.
func (h *Handlers) SaveEmotion(w http.ResponseWriter, r *http.Request) {
	var req emotionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	at, ok := validateEmotion(w, req)
	if !ok {
		return
	}
	ctx := r.Context()

	rec, err := h.emotions.Insert(ctx, req.Emoji, req.Comment, *at)
	if err != nil {
		h.logger.Error("saving emotion", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save emotion")
		return
	}

	resp := saveResponse{Record: toRecord(rec)}

	pin, _, err := h.emotions.DropPin(ctx, req.Emoji, req.Comment, *at)
	if err != nil {
		h.logger.Warn("dropping pin", zap.Error(err))
	}
	resp.Pin = toRecord(pin)

	result, err := h.recommender.Run(ctx, pipeline.Input{Mood: req.Comment, Location: at})
	if err != nil {
		h.logger.Warn("recommendation pipeline failed", zap.Error(err))
		resp.Recommendations = []recommend.Recommendation{}
		resp.Error = "추천을 가져오지 못했습니다."
	} else {
		resp.recommendationResponse = toRecommendations(result)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListEmotions handles GET /api/emotions?pin=true|false.
func (h *Handlers) ListEmotions(w http.ResponseWriter, r *http.Request) {
	isPin := false
	if v := r.URL.Query().Get("pin"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "pin must be true or false")
			return
		}
		isPin = parsed
	}

	records := h.emotions.FetchAll(r.Context(), isPin)
	out := make([]*recordResponse, len(records))
	for i := range records {
		out[i] = toRecord(&records[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// Stats handles GET /api/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feed.EmotionStats(r.Context())
	if err != nil {
		h.logger.Error("loading stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Activity handles GET /api/activity.
func (h *Handlers) Activity(w http.ResponseWriter, r *http.Request) {
	items, err := h.feed.ActivityItems(r.Context())
	if err != nil {
		h.logger.Error("loading activity", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// DropPin handles POST /api/pins.
func (h *Handlers) DropPin(w http.ResponseWriter, r *http.Request) {
	var req emotionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	at := req.location()
	if at == nil {
		writeError(w, http.StatusBadRequest, pipeline.ErrNoLocation.Error())
		return
	}
	if strings.TrimSpace(req.Emoji) == "" {
		writeError(w, http.StatusBadRequest, errNoEmoji.Error())
		return
	}

	pin, removed, err := h.emotions.DropPin(r.Context(), req.Emoji, req.Comment, *at)
	if err != nil {
		h.logger.Error("dropping pin", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save pin")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"pin":     toRecord(pin),
		"removed": removed,
	})
}

// DeletePins handles DELETE /api/pins?lat=&lon=&radius=.
func (h *Handlers) DeletePins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	var radius float64
	if v := q.Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		radius = parsed
	}

	n, err := h.emotions.DeleteNear(r.Context(), []geo.Coordinate{{Latitude: lat, Longitude: lon}}, radius)
	if err != nil {
		h.logger.Error("deleting pins", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete pins")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// Hotspots handles GET /api/pins/hotspots?k=.
func (h *Handlers) Hotspots(w http.ResponseWriter, r *http.Request) {
	k := hotspots.DefaultK
	if v := r.URL.Query().Get("k"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = parsed
	}

	spots, err := hotspots.Detect(h.emotions.FetchAll(r.Context(), true), k)
	if err != nil {
		h.logger.Error("detecting hotspots", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to detect hotspots")
		return
	}
	if spots == nil {
		spots = []hotspots.Hotspot{}
	}
	writeJSON(w, http.StatusOK, spots)
}

type recommendRequest struct {
	Mood      string   `json:"mood"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Recommend handles POST /api/recommendations.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := pipeline.Input{
		Mood: req.Mood,
		Location: emotionRequest{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		}.location(),
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recommender.Run(r.Context(), in)
	if err != nil {
		h.logger.Warn("recommendation pipeline failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "추천을 가져오지 못했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, toRecommendations(result))
}

// GetProfile handles GET /api/profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.logger.Error("loading profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PUT /api/profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u profile.Update
	if !decodeJSON(w, r, &u) {
		return
	}

	p, err := h.profiles.Update(r.Context(), u)
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, verrs.One())
		return
	case err != nil:
		h.logger.Error("updating profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProfile handles DELETE /api/profile.
func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context()); err != nil {
		h.logger.Error("deleting profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSongs handles GET /api/playlist.
func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.playlist.List(r.Context())
	if err != nil {
		h.logger.Error("loading playlist", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load playlist")
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// AddSong handles POST /api/playlist.
func (h *Handlers) AddSong(w http.ResponseWriter, r *http.Request) {
	var req prefs.Song
	if !decodeJSON(w, r, &req) {
		return
	}

	song, err := h.playlist.Add(r.Context(), req.Title, req.Artist, req.Emotion)
	switch {
	case errors.Is(err, playlist.ErrMissingField):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("adding song", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add song")
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

// DeleteSong handles DELETE /api/playlist/{id}.
func (h *Handlers) DeleteSong(w http.ResponseWriter, r *http.Request) {
	err := h.playlist.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, playlist.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("deleting song", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete song")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateEmotion applies the save-flow checks in order: text, location, emoji.
func validateEmotion(w http.ResponseWriter, req emotionRequest) (*geo.Coordinate, bool) {
	in := pipeline.Input{Mood: req.Comment, Location: req.location()}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if strings.TrimSpace(req.Emoji) == "" {
		writeError(w, http.StatusBadRequest, errNoEmoji.Error())
		return nil, false
	}
	return in.Location, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
