package emotions_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/emotions"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/prefs"
	"github.com/justestif/go-muji/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGeocoder returns a fixed address or error and counts calls.
type fakeGeocoder struct {
	address string
	err     error
	calls   atomic.Int32
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, _ geo.Coordinate) (string, error) {
	g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.address, g.err
}

// heldGeocoder answers immediately until hold is set, then blocks each
// lookup until release is closed.
type heldGeocoder struct {
	address string
	hold    atomic.Bool
	started chan struct{}
	release chan struct{}
}

func newHeldGeocoder(address string) *heldGeocoder {
	return &heldGeocoder{
		address: address,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *heldGeocoder) ReverseGeocode(ctx context.Context, _ geo.Coordinate) (string, error) {
	if g.hold.Load() {
		g.started <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.address, nil
}

// ticker returns a clock that advances one minute per call.
func ticker() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

// failingRepo fails every List call.
type failingRepo struct {
	emotions.Repository
}

func (failingRepo) List(context.Context, bool) ([]db.EmotionRecord, error) {
	return nil, errors.New("disk gone")
}

type fixture struct {
	svc   *emotions.Service
	repo  emotions.Repository
	prefs *prefs.Store
	geo   *fakeGeocoder
}

func newFixture(t *testing.T, g *fakeGeocoder) fixture {
	t.Helper()
	store := testutil.OpenStore(t)
	p := prefs.NewStore(store.Preferences())
	svc := emotions.NewService(store.Emotions(), g, p,
		emotions.WithLogger(zaptest.NewLogger(t)),
		emotions.WithGeocodeTimeout(time.Second),
	)
	t.Cleanup(svc.Wait)
	return fixture{svc: svc, repo: store.Emotions(), prefs: p, geo: g}
}

var seoul = geo.Coordinate{Latitude: 37.56, Longitude: 126.97}

func TestService_InsertBackfillsAddress(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{address: "서울특별시 중구 세종대로"})
	ctx := context.Background()

	rec, err := f.svc.Insert(ctx, "😀", "happy", seoul)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.IsPin)

	f.svc.Wait()

	records := f.svc.FetchAll(ctx, false)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Address)
	assert.Equal(t, "서울특별시 중구 세종대로", *records[0].Address)
	assert.Equal(t, "happy", records[0].Comment)
	assert.InDelta(t, 37.56, records[0].Latitude, 1e-9)
	assert.Empty(t, f.svc.FetchAll(ctx, true))
}

func TestService_InsertGeocodeFailureStoresSentinel(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{err: geo.ErrNoAddress})
	ctx := context.Background()

	_, err := f.svc.InsertPin(ctx, "😭", "", seoul)
	require.NoError(t, err)
	f.svc.Wait()

	pins := f.svc.FetchAll(ctx, true)
	require.Len(t, pins, 1)
	require.NotNil(t, pins[0].Address)
	assert.Equal(t, geo.UnknownLocation, *pins[0].Address)
}

func TestService_InsertSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{address: "부산광역시"})
	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.svc.Insert(ctx, "😀", "", seoul)
	require.NoError(t, err)
	cancel()
	f.svc.Wait()

	records := f.svc.FetchAll(context.Background(), false)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Address)
	assert.Equal(t, "부산광역시", *records[0].Address)
}

func TestService_InsertRecomputesStats(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{address: "x"})
	ctx := context.Background()

	for _, e := range []string{"😀", "😀", "😭", "😡"} {
		_, err := f.svc.Insert(ctx, e, "", seoul)
		require.NoError(t, err)
	}
	f.svc.Wait()

	stats, err := f.prefs.EmotionStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "😀", stats[0].Emoji)
	assert.Equal(t, "행복", stats[0].Label)
	assert.InDelta(t, 50.0, stats[0].Percentage, 1e-9)

	items, err := f.prefs.ActivityItems(ctx)
	require.NoError(t, err)
	assert.Contains(t, items[0].Text, "😡")
}

func TestService_ComputeStatsEmpty(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{})

	stats, err := f.svc.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestService_DeleteNear(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{address: "x"})
	ctx := context.Background()

	near := geo.Coordinate{Latitude: seoul.Latitude + 0.0003, Longitude: seoul.Longitude} // ~33 m
	far := geo.Coordinate{Latitude: seoul.Latitude + 0.001, Longitude: seoul.Longitude}   // ~111 m

	for _, c := range []geo.Coordinate{seoul, near, far} {
		_, err := f.svc.InsertPin(ctx, "😀", "", c)
		require.NoError(t, err)
	}
	_, err := f.svc.Insert(ctx, "😀", "", seoul)
	require.NoError(t, err)
	f.svc.Wait()

	n, err := f.svc.DeleteNear(ctx, []geo.Coordinate{seoul}, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pins := f.svc.FetchAll(ctx, true)
	require.Len(t, pins, 1)
	assert.InDelta(t, far.Latitude, pins[0].Latitude, 1e-9)
	assert.Len(t, f.svc.FetchAll(ctx, false), 1, "statistics records must survive")
}

func TestService_DeleteNearNoCoordinates(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{})

	n, err := f.svc.DeleteNear(context.Background(), nil, 50)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_DropPinReplacesNearbyPin(t *testing.T) {
	f := newFixture(t, &fakeGeocoder{address: "x"})
	ctx := context.Background()

	first, err := f.svc.InsertPin(ctx, "😭", "before", seoul)
	require.NoError(t, err)

	rec, removed, err := f.svc.DropPin(ctx, "😀", "after", geo.Coordinate{
		Latitude:  seoul.Latitude + 0.0001,
		Longitude: seoul.Longitude,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	f.svc.Wait()

	pins := f.svc.FetchAll(ctx, true)
	require.Len(t, pins, 1)
	assert.Equal(t, rec.ID, pins[0].ID)
	assert.NotEqual(t, first.ID, pins[0].ID)
	assert.Equal(t, "after", pins[0].Comment)
}

func TestService_FetchAllStorageError(t *testing.T) {
	p := prefs.NewStore(testutil.OpenStore(t).Preferences())
	svc := emotions.NewService(failingRepo{}, &fakeGeocoder{}, p, emotions.WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	records := svc.FetchAll(ctx, false)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, ok := svc.Latest(ctx)
	assert.False(t, ok)

	_, err := svc.DeleteNear(ctx, []geo.Coordinate{seoul}, 50)
	assert.Error(t, err)
}

func TestService_Latest(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := testutil.OpenStore(t)
	p := prefs.NewStore(store.Preferences())
	svc := emotions.NewService(store.Emotions(), &fakeGeocoder{address: "x"}, p,
		emotions.WithClock(func() time.Time {
			now = now.Add(time.Minute)
			return now
		}),
	)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	_, err := svc.Insert(ctx, "😀", "first", seoul)
	require.NoError(t, err)
	_, err = svc.Insert(ctx, "😭", "second", seoul)
	require.NoError(t, err)
	svc.Wait()

	latest, ok := svc.Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, "second", latest.Comment)
}

func TestService_LatestSkipsPendingGeocode(t *testing.T) {
	store := testutil.OpenStore(t)
	g := newHeldGeocoder("서울특별시 중구 세종대로")
	svc := emotions.NewService(store.Emotions(), g, prefs.NewStore(store.Preferences()),
		emotions.WithLogger(zaptest.NewLogger(t)),
		emotions.WithClock(ticker()),
	)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	_, err := svc.Insert(ctx, "😀", "geocoded", seoul)
	require.NoError(t, err)
	svc.Wait()

	g.hold.Store(true)
	_, err = svc.Insert(ctx, "😭", "pending", seoul)
	require.NoError(t, err)
	<-g.started

	latest, ok := svc.Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, "geocoded", latest.Comment)
	require.NotNil(t, latest.Address)
	assert.Equal(t, "서울특별시 중구 세종대로", *latest.Address)

	close(g.release)
	svc.Wait()

	latest, ok = svc.Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, "pending", latest.Comment)
}

func TestService_LatestNoResolvedRecord(t *testing.T) {
	store := testutil.OpenStore(t)
	g := newHeldGeocoder("x")
	g.hold.Store(true)
	svc := emotions.NewService(store.Emotions(), g, prefs.NewStore(store.Preferences()))
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	_, err := svc.Insert(ctx, "😀", "", seoul)
	require.NoError(t, err)
	<-g.started

	_, ok := svc.Latest(ctx)
	assert.False(t, ok)
	close(g.release)
}

func TestService_PinDeletedDuringGeocodeIsNotAnError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := testutil.OpenStore(t)
	g := newHeldGeocoder("x")
	g.hold.Store(true)
	svc := emotions.NewService(store.Emotions(), g, prefs.NewStore(store.Preferences()),
		emotions.WithLogger(zap.New(core)),
	)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	_, err := svc.InsertPin(ctx, "😀", "", seoul)
	require.NoError(t, err)
	<-g.started

	n, err := svc.DeleteNear(ctx, []geo.Coordinate{seoul}, 50)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	close(g.release)
	svc.Wait()

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("record gone before address stored").Len())
}
