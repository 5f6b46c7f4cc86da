package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epilog/epilog-api/internal/infra/config"
)

func TestNewOpenAIProxyDisabled(t *testing.T) {
	require.Nil(t, NewOpenAIProxy(config.ProxyConfig{}, "sk-key", newTestLogger()))
}

func TestNewOpenAIProxyTimeoutFromConfig(t *testing.T) {
	proxy := NewOpenAIProxy(config.ProxyConfig{
		Enabled:     true,
		Token:       "secret",
		UpstreamURL: "https://api.openai.com",
		Timeout:     5 * time.Second,
	}, "sk-key", newTestLogger())
	require.Equal(t, 5*time.Second, proxy.httpClient.Timeout)

	proxy = NewOpenAIProxy(config.ProxyConfig{
		Enabled:     true,
		Token:       "secret",
		UpstreamURL: "https://api.openai.com",
	}, "sk-key", newTestLogger())
	require.Equal(t, 120*time.Second, proxy.httpClient.Timeout)
}

func TestProxyResponsesForwarding(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/responses", r.URL.Path)
		require.Equal(t, "Bearer sk-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"input":"안녕"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resp_1"}`))
	}))
	defer upstream.Close()

	server := newProxyRouter(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/openai/v1/responses", strings.NewReader(`{"input":"안녕"}`))
	req.Header.Set("x-proxy-token", "secret")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"resp_1"}`, rec.Body.String())
	require.Equal(t, "1", rec.Header().Get("x-openai-proxy"))
}

func TestProxyResponsesRejectsBadToken(t *testing.T) {
	server := newProxyRouter(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/api/openai/v1/responses", strings.NewReader(`{}`))
	req.Header.Set("x-proxy-token", "wrong")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/openai/v1/responses", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProxyHealth(t *testing.T) {
	server := newProxyRouter(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/api/openai/v1/health", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("x-openai-proxy"))
}

func newProxyRouter(t *testing.T, upstreamURL string) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	proxy := NewOpenAIProxy(config.ProxyConfig{
		Enabled:     true,
		Token:       "secret",
		UpstreamURL: upstreamURL,
		Timeout:     time.Second,
	}, "sk-key", newTestLogger())
	return NewRouter(cfg, NewHandler(&stubAdvisor{}, newTestLogger()), proxy, newTestLogger())
}
