package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	noopProvider
	endpoint      string
	status        int
	requestCalls  int
	durationCalls int
}

func (m *mockProvider) IncRequestsTotal(endpoint string, status int) {
	m.endpoint = endpoint
	m.status = status
	m.requestCalls++
}

func (m *mockProvider) ObserveRequestDuration(string, time.Duration) { m.durationCalls++ }

func TestHTTPStatusBucket(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{502, "5xx"},
	}
	for _, tt := range tests {
		if got := httpStatusBucket(tt.code); got != tt.want {
			t.Errorf("httpStatusBucket(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := &mockProvider{}
	r := chi.NewRouter()
	r.Use(Middleware(m))
	r.Delete("/api/playlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/playlist/42", nil))

	assert.Equal(t, 1, m.requestCalls)
	assert.Equal(t, 1, m.durationCalls)
	assert.Equal(t, "/api/playlist/{id}", m.endpoint)
	assert.Equal(t, http.StatusNoContent, m.status)
}

func TestMiddleware_DefaultStatus200(t *testing.T) {
	m := &mockProvider{}
	h := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "/health", m.endpoint)
	assert.Equal(t, http.StatusOK, m.status)
}

func TestPrometheusProvider_Handler(t *testing.T) {
	p := New(true)
	p.IncRequestsTotal("/api/stats", 200)
	p.ObserveRequestDuration("/api/stats", 10*time.Millisecond)
	p.IncCacheHits()
	p.ObserveStage("weather", time.Second)
	p.IncStageErrors("recommend")

	server := httptest.NewServer(p.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	for _, want := range []string{
		`muji_requests_total{endpoint="/api/stats",status="2xx"} 1`,
		`muji_cache_hits_total 1`,
		`muji_pipeline_stage_errors_total{stage="recommend"} 1`,
		`muji_pipeline_stage_duration_seconds_count{stage="weather"} 1`,
	} {
		assert.True(t, strings.Contains(out, want), "missing %q", want)
	}
}

func TestNoopProvider(t *testing.T) {
	p := New(false)
	p.IncRequestsTotal("/", 200)
	p.ObserveStage("weather", time.Second)

	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
