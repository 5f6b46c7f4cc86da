package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Advice     AdviceConfig     `yaml:"advice"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Guidelines GuidelinesConfig `yaml:"guidelines"`
	Proxy      ProxyConfig      `yaml:"proxy"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
}

// AdviceConfig controls the outdoor-advice orchestrator.
type AdviceConfig struct {
	Prompt      string        `yaml:"prompt"`
	MatrixPath  string        `yaml:"matrixPath"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
	CallTimeout time.Duration `yaml:"callTimeout"`
	Valkey      ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the advice cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// TelemetryConfig controls station telemetry acquisition.
type TelemetryConfig struct {
	Postgres       PostgresConfig `yaml:"postgres"`
	LiveAPIBaseURL string         `yaml:"liveApiBaseUrl"`
	LiveAPIKey     string         `yaml:"liveApiKey"`
}

// GuidelinesConfig controls the semantic guideline corpus.
type GuidelinesConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ProxyConfig controls the OpenAI reverse proxy surface.
type ProxyConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Token       string        `yaml:"token"`
	UpstreamURL string        `yaml:"upstreamUrl"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("ADVICE_PROMPT"); v != "" {
		cfg.Advice.Prompt = v
	}
	if v := os.Getenv("ADVICE_MATRIX_PATH"); v != "" {
		cfg.Advice.MatrixPath = v
	}
	if v := os.Getenv("ADVICE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advice.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ADVICE_CALL_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advice.CallTimeout = parsed
		}
	}
	if v := os.Getenv("ADVICE_VALKEY_ENABLED"); v != "" {
		cfg.Advice.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ADVICE_VALKEY_ADDR"); v != "" {
		cfg.Advice.Valkey.Addr = v
	}
	if v := os.Getenv("TELEMETRY_POSTGRES_DSN"); v != "" {
		cfg.Telemetry.Postgres.DSN = v
	}
	if v := os.Getenv("TELEMETRY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("TELEMETRY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("TELEMETRY_LIVE_API_BASE_URL"); v != "" {
		cfg.Telemetry.LiveAPIBaseURL = v
	}
	if v := os.Getenv("TELEMETRY_LIVE_API_KEY"); v != "" {
		cfg.Telemetry.LiveAPIKey = v
	}
	if v := os.Getenv("GUIDELINES_POSTGRES_DSN"); v != "" {
		cfg.Guidelines.Postgres.DSN = v
	}
	if v := os.Getenv("PROXY_ENABLED"); v != "" {
		cfg.Proxy.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("PROXY_TOKEN"); v != "" {
		cfg.Proxy.Token = v
	}
	if v := os.Getenv("PROXY_UPSTREAM_URL"); v != "" {
		cfg.Proxy.UpstreamURL = v
	}
	if v := os.Getenv("PROXY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Proxy.Timeout = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_EXCLUDE"); v != "" {
		cfg.HTTP.Retry.Exclude = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				// Proxied generation calls are not idempotent.
				Exclude: []string{"/api/openai/v1/responses"},
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.3,
		},
		Advice: AdviceConfig{
			Prompt:      "당신은 환경보건 의사입니다. 대기질 데이터와 아이의 기저질환 정보를 바탕으로 판단 근거만 작성합니다.",
			MatrixPath:  "data/decision_matrix.json",
			CacheTTL:    30 * time.Hour,
			CallTimeout: 60 * time.Second,
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "advice",
			},
		},
		Telemetry: TelemetryConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Guidelines: GuidelinesConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Proxy: ProxyConfig{
			Enabled:     false,
			UpstreamURL: "https://api.openai.com",
			Timeout:     120 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.Advice.Prompt == "" {
		return errors.New("advice.prompt cannot be empty")
	}
	if c.Advice.MatrixPath == "" {
		return errors.New("advice.matrixPath cannot be empty")
	}
	if c.Advice.CacheTTL < 0 {
		return errors.New("advice.cacheTtl cannot be negative")
	}
	if c.Advice.CallTimeout <= 0 {
		return errors.New("advice.callTimeout must be positive")
	}
	if c.Advice.Valkey.Enabled && strings.TrimSpace(c.Advice.Valkey.Addr) == "" {
		return errors.New("advice.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.Proxy.Enabled {
		if strings.TrimSpace(c.Proxy.Token) == "" {
			return errors.New("proxy.token cannot be empty when the proxy is enabled")
		}
		if strings.TrimSpace(c.Proxy.UpstreamURL) == "" {
			return errors.New("proxy.upstreamUrl cannot be empty when the proxy is enabled")
		}
		if c.Proxy.Timeout <= 0 {
			return errors.New("proxy.timeout must be positive when the proxy is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
