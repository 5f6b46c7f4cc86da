package advisor

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
	apperrors "github.com/epilog/epilog-api/pkg/errors"
)

// Service exposes the advice pipeline.
type Service interface {
	Advise(ctx context.Context, req Request) (AdviceResult, error)
	AirQuality(ctx context.Context, stationQuery string) (airquality.TelemetrySnapshot, error)
}

// TelemetryProvider yields one fresh snapshot for a station query.
type TelemetryProvider interface {
	Snapshot(ctx context.Context, query string) (airquality.TelemetrySnapshot, error)
}

// ChatClient is the generation backend.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// GuidelineRetriever fetches supporting passages; failures surface as an
// empty slice, never as an error.
type GuidelineRetriever interface {
	Retrieve(ctx context.Context, decision Decision, profile UserProfile) []GuidelineDoc
}

// Cache stores computed advice by fingerprint. Advisory only: callers log
// and continue on every cache error.
type Cache interface {
	Get(ctx context.Context, key string) (AdviceResult, bool, error)
	Put(ctx context.Context, key string, result AdviceResult, ttl time.Duration) error
}

// Config carries the orchestrator knobs.
type Config struct {
	Model       string
	Temperature float32
	Prompt      string
	CacheTTL    time.Duration
	CallTimeout time.Duration
}

type service struct {
	cfg       Config
	telemetry TelemetryProvider
	matrix    *Matrix
	retriever GuidelineRetriever
	client    ChatClient
	cache     Cache
	logger    *slog.Logger
}

// NewService wires the advice orchestrator.
func NewService(cfg Config, telemetry TelemetryProvider, matrix *Matrix, retriever GuidelineRetriever, client ChatClient, cache Cache, logger *slog.Logger) Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Hour
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &service{
		cfg:       cfg,
		telemetry: telemetry,
		matrix:    matrix,
		retriever: retriever,
		client:    client,
		cache:     cache,
		logger:    logger.With("component", "advisor.service"),
	}
}

// Advise runs one request through the pipeline: FetchTelemetry → Correct →
// CacheCheck → {hit: return, miss: Retrieve → Generate → MergeAndPersist}.
// Only total telemetry failure aborts; every optional stage degrades.
func (s *service) Advise(ctx context.Context, req Request) (AdviceResult, error) {
	profile := NormalizeProfile(req.Profile.AgeGroup, req.Profile.Condition)

	snapshot, err := s.telemetry.Snapshot(ctx, req.StationQuery)
	if err != nil {
		if apperrors.IsCode(err, "invalid_input") {
			return AdviceResult{}, err
		}
		return AdviceResult{}, apperrors.Wrap("telemetry_error", "no telemetry available for station", err)
	}

	corrected := CorrectGrades(snapshot, profile)
	decision := s.matrix.Decide(profile, corrected, snapshot)

	key := Fingerprint(snapshot, profile)
	if cached, ok := s.cacheGet(ctx, key); ok {
		s.logger.Info("advice cache hit", "key", key)
		return cached, nil
	}

	docs := s.retriever.Retrieve(ctx, decision, profile)
	generated := s.generate(ctx, decision, profile, snapshot, docs)

	result := merge(decision, snapshot, docs, generated)
	s.cachePut(ctx, key, result)
	return result, nil
}

// AirQuality exposes the resolved snapshot directly.
func (s *service) AirQuality(ctx context.Context, stationQuery string) (airquality.TelemetrySnapshot, error) {
	snapshot, err := s.telemetry.Snapshot(ctx, stationQuery)
	if err != nil {
		if apperrors.IsCode(err, "invalid_input") {
			return airquality.TelemetrySnapshot{}, err
		}
		return airquality.TelemetrySnapshot{}, apperrors.Wrap("telemetry_error", "no telemetry available for station", err)
	}
	return snapshot, nil
}

func (s *service) cacheGet(ctx context.Context, key string) (AdviceResult, bool) {
	if s.cache == nil {
		return AdviceResult{}, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("advice cache read failed", "key", key, "error", err)
		return AdviceResult{}, false
	}
	return cached, ok
}

func (s *service) cachePut(ctx context.Context, key string, result AdviceResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, result, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("advice cache write failed", "key", key, "error", err)
	}
}

// merge combines the deterministic decision with the generated prose. The
// decision text and action items never come from the model.
func merge(decision Decision, snapshot airquality.TelemetrySnapshot, docs []GuidelineDoc, generated generatedAdvice) AdviceResult {
	return AdviceResult{
		Decision:        decision.Entry.Headline,
		ReasonSummaries: generated.Highlights,
		DetailAnswer:    generated.Detail,
		ActionItems:     decision.Entry.ActionItems,
		References:      referenceSources(docs),
		Pollutants:      rawValues(snapshot),
		Station:         snapshot.StationID,
		Usage:           generated.Usage,
	}
}

func referenceSources(docs []GuidelineDoc) []string {
	seen := make(map[string]struct{}, len(docs))
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		source := doc.Source
		if source == "" {
			source = "가이드라인"
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

func rawValues(snapshot airquality.TelemetrySnapshot) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range airquality.Pollutants() {
		if value, ok := snapshot.Value(p); ok {
			out[string(p)] = value
		}
	}
	return out
}
