package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epilog/epilog-api/internal/domain/advisor"
	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/config"
	apperrors "github.com/epilog/epilog-api/pkg/errors"
)

func TestRouter_AdviseSuccess(t *testing.T) {
	resp := advisor.AdviceResult{
		Decision:        "오늘은 짧게 다녀와요!",
		ReasonSummaries: []string{"하나", "둘", "셋"},
		DetailAnswer:    "상세 설명",
		ActionItems:     []string{"외출은 30분 이내"},
	}
	svc := &stubAdvisor{
		adviseFn: func(ctx context.Context, req advisor.Request) (advisor.AdviceResult, error) {
			require.Equal(t, "역삼동", req.StationQuery)
			require.Equal(t, "유아", req.Profile.AgeGroup)
			require.Equal(t, "천식", req.Profile.Condition)
			return resp, nil
		},
	}

	recorder := performPost("/api/advice", `{"stationName":"역삼동","userProfile":{"ageGroup":"유아","condition":"천식"}}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got advisor.AdviceResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_AdviseInvalidJSON(t *testing.T) {
	recorder := performPost("/api/advice", `{"stationName":123}`, newRouterUnderTest(t, &stubAdvisor{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_AdviseInvalidInput(t *testing.T) {
	svc := &stubAdvisor{
		adviseFn: func(ctx context.Context, req advisor.Request) (advisor.AdviceResult, error) {
			return advisor.AdviceResult{}, apperrors.Wrap("invalid_input", "station query cannot be empty", nil)
		},
	}

	recorder := performPost("/api/advice", `{"stationName":""}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "station query cannot be empty")
}

func TestRouter_AdviseTelemetryError(t *testing.T) {
	svc := &stubAdvisor{
		adviseFn: func(ctx context.Context, req advisor.Request) (advisor.AdviceResult, error) {
			return advisor.AdviceResult{}, apperrors.Wrap("telemetry_error", "no telemetry available for station", nil)
		},
	}

	recorder := performPost("/api/advice", `{"stationName":"역삼동"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "telemetry_error", errBody["error"]["code"])
}

func TestRouter_AirQuality(t *testing.T) {
	svc := &stubAdvisor{
		airQualityFn: func(ctx context.Context, stationQuery string) (airquality.TelemetrySnapshot, error) {
			require.Equal(t, "역삼동", stationQuery)
			return airquality.TelemetrySnapshot{StationID: "역삼동", Source: "store"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/air-quality?station=역삼동", nil)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got airquality.TelemetrySnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "역삼동", got.StationID)
}

func TestRouter_Healthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubAdvisor{}).Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func performPost(path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc advisor.Service) *http.Server {
	t.Helper()
	handler := NewHandler(svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, nil, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAdvisor struct {
	adviseFn     func(ctx context.Context, req advisor.Request) (advisor.AdviceResult, error)
	airQualityFn func(ctx context.Context, stationQuery string) (airquality.TelemetrySnapshot, error)
}

func (s *stubAdvisor) Advise(ctx context.Context, req advisor.Request) (advisor.AdviceResult, error) {
	if s.adviseFn != nil {
		return s.adviseFn(ctx, req)
	}
	return advisor.AdviceResult{}, nil
}

func (s *stubAdvisor) AirQuality(ctx context.Context, stationQuery string) (airquality.TelemetrySnapshot, error) {
	if s.airQualityFn != nil {
		return s.airQualityFn(ctx, stationQuery)
	}
	return airquality.TelemetrySnapshot{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
