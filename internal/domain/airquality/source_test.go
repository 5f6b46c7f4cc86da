package airquality

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	snapshot TelemetrySnapshot
	found    bool
	err      error
	calls    int
}

func (s *stubStore) Lookup(_ context.Context, _ Resolution) (TelemetrySnapshot, bool, error) {
	s.calls++
	return s.snapshot, s.found, s.err
}

type stubLive struct {
	snapshots map[string]TelemetrySnapshot
	err       error
	probed    []string
}

func (s *stubLive) Fetch(_ context.Context, station string) (TelemetrySnapshot, bool, error) {
	s.probed = append(s.probed, station)
	if s.err != nil {
		return TelemetrySnapshot{}, false, s.err
	}
	snapshot, ok := s.snapshots[station]
	return snapshot, ok, nil
}

func testSource(store StationStore, live LiveClient, now time.Time) *Source {
	src := NewSource(store, live, slog.New(slog.NewTextHandler(io.Discard, nil)))
	src.now = func() time.Time { return now }
	return src
}

func freshSnapshot(station string, observed time.Time) TelemetrySnapshot {
	value := 10.0
	return TelemetrySnapshot{
		StationID: station,
		Readings: map[Pollutant]PollutantReading{
			PM25: NewReading(PM25, &value, GradeUnknown),
		},
		ObservedAt: &observed,
		Source:     "store",
	}
}

func TestSnapshotEmptyQuery(t *testing.T) {
	src := testSource(&stubStore{}, &stubLive{}, time.Now())
	_, err := src.Snapshot(context.Background(), "   ")
	require.Error(t, err)
}

func TestSnapshotStoreFresh(t *testing.T) {
	now := time.Now()
	store := &stubStore{snapshot: freshSnapshot("역삼동", now.Add(-time.Hour)), found: true}
	live := &stubLive{}
	src := testSource(store, live, now)

	got, err := src.Snapshot(context.Background(), "역삼동")
	require.NoError(t, err)
	require.Equal(t, "역삼동", got.StationID)
	require.Empty(t, live.probed)
}

func TestSnapshotStoreErrorFallsToLive(t *testing.T) {
	now := time.Now()
	store := &stubStore{err: errors.New("connection refused")}
	liveSnapshot := freshSnapshot("역삼동", now.Add(-30*time.Minute))
	liveSnapshot.Source = "live"
	live := &stubLive{snapshots: map[string]TelemetrySnapshot{"역삼동": liveSnapshot}}
	src := testSource(store, live, now)

	got, err := src.Snapshot(context.Background(), "역삼동")
	require.NoError(t, err)
	require.Equal(t, "live", got.Source)
	require.Equal(t, 1, store.calls)
}

func TestSnapshotStaleStoreFallsThrough(t *testing.T) {
	now := time.Now()
	store := &stubStore{snapshot: freshSnapshot("역삼동", now.Add(-3*time.Hour)), found: true}
	live := &stubLive{}
	src := testSource(store, live, now)

	got, err := src.Snapshot(context.Background(), "역삼동")
	require.NoError(t, err)
	require.Equal(t, "static", got.Source)
}

func TestSnapshotStaticFallbackValues(t *testing.T) {
	src := testSource(&stubStore{}, &stubLive{}, time.Now())

	got, err := src.Snapshot(context.Background(), "어딘가")
	require.NoError(t, err)
	require.Equal(t, "static", got.Source)
	require.Equal(t, GradeBad, got.Grade(PM25))
	require.Equal(t, GradeBad, got.Grade(PM10))
	require.Equal(t, GradeModerate, got.Grade(CO))
	require.Equal(t, GradeModerate, got.Grade(O3))
	require.Equal(t, GradeGood, got.Grade(NO2))
	require.Equal(t, GradeGood, got.Grade(SO2))
	require.Equal(t, DefaultTemperature, got.Temperature)
	require.Equal(t, DefaultHumidity, got.Humidity)
}

func TestSnapshotLiveCandidateCap(t *testing.T) {
	now := time.Now()
	live := &stubLive{snapshots: map[string]TelemetrySnapshot{}}
	src := testSource(&stubStore{}, live, now)

	_, err := src.Snapshot(context.Background(), "a b c d e f g h")
	require.NoError(t, err)
	require.LessOrEqual(t, len(live.probed), liveCandidateLimit)
}

func TestSnapshotLiveAcceptsAnyRegionWithoutExplicitQuery(t *testing.T) {
	now := time.Now()
	other := freshSnapshot("역삼동", now.Add(-time.Minute))
	other.RegionName = "부산"
	other.Source = "live"
	live := &stubLive{snapshots: map[string]TelemetrySnapshot{"역삼동": other}}
	src := testSource(&stubStore{}, live, now)

	got, err := src.Snapshot(context.Background(), "역삼동")
	require.NoError(t, err)
	require.Equal(t, "live", got.Source)
	require.Equal(t, "부산", got.RegionName)
}

func TestSnapshotExplicitRegionRejectsOtherRegion(t *testing.T) {
	now := time.Now()
	wrong := freshSnapshot("역삼동", now.Add(-time.Minute))
	wrong.RegionName = "부산"
	store := &stubStore{snapshot: wrong, found: true}
	src := testSource(store, &stubLive{}, now)

	got, err := src.Snapshot(context.Background(), "서울 역삼동")
	require.NoError(t, err)
	require.Equal(t, "static", got.Source)
}

func TestFreshWindow(t *testing.T) {
	now := time.Now()
	edge := now.Add(-StalenessWindow)
	s := TelemetrySnapshot{ObservedAt: &edge}
	require.True(t, s.Fresh(now))

	past := now.Add(-StalenessWindow - time.Second)
	s.ObservedAt = &past
	require.False(t, s.Fresh(now))

	s.ObservedAt = nil
	require.True(t, s.Fresh(now))
}
