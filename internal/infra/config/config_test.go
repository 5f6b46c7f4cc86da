package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	require.Contains(t, cfg.HTTP.Retry.Exclude, "/api/openai/v1/responses")
	require.Equal(t, 120*time.Second, cfg.Proxy.Timeout)
	require.Empty(t, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 30*time.Hour, cfg.Advice.CacheTTL)
}

func TestValidateProxy(t *testing.T) {
	cfg := defaultConfig()
	cfg.Proxy.Enabled = true
	cfg.Proxy.UpstreamURL = "https://api.openai.com"
	require.Error(t, cfg.Validate(), "token required when enabled")

	cfg.Proxy.Token = "secret"
	cfg.Proxy.Timeout = 0
	require.Error(t, cfg.Validate(), "timeout required when enabled")

	cfg.Proxy.Timeout = time.Minute
	require.NoError(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"},
		splitList("https://a.example.com, https://b.example.com,"))
	require.Empty(t, splitList(" , "))
}
