package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/epilog/epilog-api/internal/bootstrap"
	"github.com/epilog/epilog-api/internal/domain/advisor"
	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/advicecache"
	"github.com/epilog/epilog-api/internal/infra/config"
	"github.com/epilog/epilog-api/internal/infra/guidelines/pgrepo"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
	"github.com/epilog/epilog-api/internal/infra/telemetry/airkorea"
	"github.com/epilog/epilog-api/internal/infra/telemetry/pgstore"
	httpiface "github.com/epilog/epilog-api/internal/interface/http"
)

// pools groups the shared Postgres pools so closing is wired once.
type pools struct {
	telemetry  *pgxpool.Pool
	guidelines *pgxpool.Pool
}

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Prompt:      cfg.Advice.Prompt,
		CacheTTL:    cfg.Advice.CacheTTL,
		CallTimeout: cfg.Advice.CallTimeout,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideMatrix(cfg *config.Config) (*advisor.Matrix, error) {
	return advisor.LoadMatrix(cfg.Advice.MatrixPath)
}

func providePools(cfg *config.Config, logger *slog.Logger) *pools {
	p := &pools{}
	p.telemetry = newPool(cfg.Telemetry.Postgres, "telemetry", logger)
	guidelinesCfg := cfg.Guidelines.Postgres
	if strings.TrimSpace(guidelinesCfg.DSN) == "" || guidelinesCfg.DSN == cfg.Telemetry.Postgres.DSN {
		// One database serves both tables unless configured apart.
		p.guidelines = p.telemetry
	} else {
		p.guidelines = newPool(guidelinesCfg, "guidelines", logger)
	}
	return p
}

func newPool(cfg config.PostgresConfig, name string, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set", "pool", name)
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "pool", name, "error", err)
		return nil
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "pool", name, "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "pool", name, "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres pool ready", "pool", name)
	return pool
}

func provideTelemetrySource(cfg *config.Config, p *pools, logger *slog.Logger) *airquality.Source {
	var store airquality.StationStore
	if p.telemetry != nil {
		store = pgstore.NewStore(p.telemetry)
	}
	var live airquality.LiveClient
	if strings.TrimSpace(cfg.Telemetry.LiveAPIBaseURL) != "" {
		live = airkorea.NewClient(cfg.Telemetry.LiveAPIBaseURL, cfg.Telemetry.LiveAPIKey)
	}
	return airquality.NewSource(store, live, logger)
}

func provideRetriever(cfg *config.Config, p *pools, client *chatgpt.Client, logger *slog.Logger) advisor.GuidelineRetriever {
	var index advisor.GuidelineIndex
	if p.guidelines != nil {
		index = pgrepo.NewRepo(p.guidelines)
	}
	return advisor.NewRetriever(client, index, cfg.LLM.EmbeddingModel, logger)
}

func provideAdviceCache(cfg *config.Config, logger *slog.Logger) advisor.Cache {
	if cfg.Advice.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Advice.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return advicecache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return advicecache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey advice cache enabled", "addr", cfg.Advice.Valkey.Addr)
			return advicecache.NewValkeyStore(client, cfg.Advice.Valkey.Prefix)
		}
	}
	return advicecache.NewMemoryStore()
}

func provideOpenAIProxy(cfg *config.Config, logger *slog.Logger) *httpiface.OpenAIProxy {
	return httpiface.NewOpenAIProxy(cfg.Proxy, cfg.LLM.APIKey, logger)
}

func provideServer(cfg *config.Config, handler *httpiface.Handler, proxy *httpiface.OpenAIProxy, logger *slog.Logger) *http.Server {
	return httpiface.NewRouter(cfg, handler, proxy, logger)
}

func provideClosers(p *pools) bootstrap.Closers {
	var closers bootstrap.Closers
	if p.telemetry != nil {
		closers = append(closers, p.telemetry.Close)
	}
	if p.guidelines != nil && p.guidelines != p.telemetry {
		closers = append(closers, p.guidelines.Close)
	}
	return closers
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
