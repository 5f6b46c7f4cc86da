package airquality

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/epilog/epilog-api/pkg/errors"
)

// liveCandidateLimit caps how many resolver candidates the live API probes.
const liveCandidateLimit = 6

// StationStore is the tier-1 primary store: lookup by candidate list,
// optionally filtered by region, freshest row first.
type StationStore interface {
	Lookup(ctx context.Context, res Resolution) (TelemetrySnapshot, bool, error)
}

// LiveClient is the tier-2 live API: fetch current readings for one
// station-name candidate.
type LiveClient interface {
	Fetch(ctx context.Context, station string) (TelemetrySnapshot, bool, error)
}

// TierOutcome tags the result of probing one telemetry tier.
type TierOutcome int

const (
	TierFresh TierOutcome = iota
	TierStale
	TierUnavailable
)

func (o TierOutcome) String() string {
	switch o {
	case TierFresh:
		return "fresh"
	case TierStale:
		return "stale"
	default:
		return "unavailable"
	}
}

// TierResult is the tagged outcome of one tier probe.
type TierResult struct {
	Outcome  TierOutcome
	Snapshot TelemetrySnapshot
}

// Source returns one fresh TelemetrySnapshot by walking the tiers in order:
// primary store, live API, static fallback. Exceptions inside a tier are
// caught, logged and treated as a miss; the static tier always succeeds.
type Source struct {
	store  StationStore
	live   LiveClient
	logger *slog.Logger
	now    func() time.Time
}

// NewSource wires the tiered telemetry source.
func NewSource(store StationStore, live LiveClient, logger *slog.Logger) *Source {
	return &Source{
		store:  store,
		live:   live,
		logger: logger.With("component", "airquality.source"),
		now:    time.Now,
	}
}

// Snapshot resolves the query and returns the first fresh snapshot.
func (s *Source) Snapshot(ctx context.Context, query string) (TelemetrySnapshot, error) {
	res := ResolveStation(query)
	if len(res.Candidates) == 0 {
		return TelemetrySnapshot{}, apperrors.Wrap("invalid_input", "station query cannot be empty", nil)
	}

	if result := s.probeStore(ctx, res); result.Outcome == TierFresh {
		return result.Snapshot, nil
	} else {
		s.logger.Info("primary store miss", "query", res.Query, "outcome", result.Outcome.String())
	}

	if result := s.probeLive(ctx, res); result.Outcome == TierFresh {
		return result.Snapshot, nil
	} else {
		s.logger.Info("live api miss", "query", res.Query, "outcome", result.Outcome.String())
	}

	s.logger.Warn("all telemetry tiers missed, using static fallback", "query", res.Query)
	return s.staticFallback(res), nil
}

func (s *Source) probeStore(ctx context.Context, res Resolution) TierResult {
	if s.store == nil {
		return TierResult{Outcome: TierUnavailable}
	}
	snapshot, found, err := s.store.Lookup(ctx, res)
	if err != nil {
		s.logger.Warn("primary store lookup failed", "query", res.Query, "error", err)
		return TierResult{Outcome: TierUnavailable}
	}
	return s.classify(res, snapshot, found)
}

func (s *Source) probeLive(ctx context.Context, res Resolution) TierResult {
	if s.live == nil {
		return TierResult{Outcome: TierUnavailable}
	}
	candidates := res.Candidates
	if len(candidates) > liveCandidateLimit {
		candidates = candidates[:liveCandidateLimit]
	}

	for _, candidate := range candidates {
		snapshot, found, err := s.live.Fetch(ctx, candidate)
		if err != nil {
			s.logger.Warn("live api fetch failed", "candidate", candidate, "error", err)
			continue
		}
		if result := s.classify(res, snapshot, found); result.Outcome == TierFresh {
			return result
		}
	}
	return TierResult{Outcome: TierUnavailable}
}

// classify applies the region rejection rule and the staleness window to a
// fetched row.
func (s *Source) classify(res Resolution, snapshot TelemetrySnapshot, found bool) TierResult {
	if !found {
		return TierResult{Outcome: TierUnavailable}
	}
	if !res.AcceptsRegion(snapshot.RegionName) {
		return TierResult{Outcome: TierUnavailable}
	}
	if !snapshot.Fresh(s.now()) {
		return TierResult{Outcome: TierStale, Snapshot: snapshot}
	}
	return TierResult{Outcome: TierFresh, Snapshot: snapshot}
}

// staticFallback carries fixed moderate-to-bad values so the pipeline can
// always answer.
func (s *Source) staticFallback(res Resolution) TelemetrySnapshot {
	snapshot := TelemetrySnapshot{
		StationID:  res.Candidates[0],
		RegionName: res.Region,
		Readings: map[Pollutant]PollutantReading{
			PM10: {Pollutant: PM10, Grade: GradeBad},
			PM25: {Pollutant: PM25, Grade: GradeBad},
			CO:   {Pollutant: CO, Grade: GradeModerate},
			O3:   {Pollutant: O3, Grade: GradeModerate},
			NO2:  {Pollutant: NO2, Grade: GradeGood},
			SO2:  {Pollutant: SO2, Grade: GradeGood},
		},
		Source: "static",
	}
	snapshot.SetWeather(nil, nil)
	return snapshot
}
