// Command ingest loads the guideline corpus into the pgvector table.
//
// The input file is a JSON array or a CSV with text/category/source
// columns. Passages are embedded in batches sized by a token budget and
// inserted in bulk; -replace clears the table first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"
	"github.com/pkoukk/tiktoken-go"

	"github.com/epilog/epilog-api/internal/infra/config"
	"github.com/epilog/epilog-api/internal/infra/guidelines/pgrepo"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
	"github.com/epilog/epilog-api/pkg/logger"
	"github.com/epilog/epilog-api/pkg/metrics"
)

// batchTokenBudget caps how many tokens one embeddings request carries.
const batchTokenBudget = 6000

type passage struct {
	Text     string `json:"text" csv:"text"`
	Category string `json:"category" csv:"category"`
	Source   string `json:"source" csv:"source"`
}

func main() {
	_ = godotenv.Load()

	var (
		file    = flag.String("file", "data/guidelines.json", "path to the guideline corpus (.json or .csv)")
		replace = flag.Bool("replace", false, "clear the existing corpus before inserting")
		dryRun  = flag.Bool("dry-run", false, "parse and batch without embedding or writing")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *file, *replace, *dryRun); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}

func run(ctx context.Context, file string, replace, dryRun bool) error {
	slogger := logger.New().With("component", "ingest")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	passages, err := loadPassages(file)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return fmt.Errorf("no passages found in %s", file)
	}
	slogger.Info("corpus parsed", "file", file, "passages", len(passages))

	batches, err := batchByTokens(passages, cfg.LLM.EmbeddingModel)
	if err != nil {
		return err
	}
	slogger.Info("batches planned", "count", len(batches), "tokenBudget", batchTokenBudget)

	if dryRun {
		for i, batch := range batches {
			slogger.Info("dry-run batch", "index", i, "passages", len(batch))
		}
		return nil
	}

	dsn := strings.TrimSpace(cfg.Guidelines.Postgres.DSN)
	if dsn == "" {
		dsn = strings.TrimSpace(cfg.Telemetry.Postgres.DSN)
	}
	if dsn == "" {
		return fmt.Errorf("no postgres dsn configured for the guideline corpus")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	repo := pgrepo.NewRepo(pool)
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		return err
	}

	if replace {
		removed, err := repo.DeleteAll(ctx)
		if err != nil {
			return err
		}
		slogger.Info("existing corpus cleared", "removed", removed)
	}

	inserted := 0
	var usage metrics.TokenUsage
	for i, batch := range batches {
		chunks, batchUsage, err := embedBatch(ctx, client, cfg.LLM.EmbeddingModel, batch)
		if err != nil {
			return fmt.Errorf("embed batch %d: %w", i, err)
		}
		if err := repo.InsertBatch(ctx, chunks); err != nil {
			return fmt.Errorf("insert batch %d: %w", i, err)
		}
		inserted += len(chunks)
		usage = usage.Add(batchUsage)
		slogger.Info("batch ingested", "index", i, "passages", len(chunks), "tokens", batchUsage.TotalTokens)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	slogger.Info("ingest complete", "inserted", inserted, "corpusSize", total, "embeddingTokens", usage.TotalTokens)
	fmt.Println("Remember to create the similarity index once the table is large enough:")
	fmt.Println("  CREATE INDEX ON guideline_chunks USING hnsw (embedding vector_cosine_ops);")
	return nil
}

func loadPassages(file string) ([]passage, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var passages []passage
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		if err := csvutil.Unmarshal(data, &passages); err != nil {
			return nil, fmt.Errorf("parse csv corpus: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &passages); err != nil {
			return nil, fmt.Errorf("parse json corpus: %w", err)
		}
	}

	out := passages[:0]
	for _, p := range passages {
		p.Text = strings.TrimSpace(p.Text)
		if p.Text == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// batchByTokens splits passages into embedding batches under the token
// budget. An oversized single passage still gets its own batch.
func batchByTokens(passages []passage, model string) ([][]passage, error) {
	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoder, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load token encoder: %w", err)
		}
	}

	var (
		batches [][]passage
		current []passage
		used    int
	)
	for _, p := range passages {
		tokens := len(encoder.Encode(p.Text, nil, nil))
		if len(current) > 0 && used+tokens > batchTokenBudget {
			batches = append(batches, current)
			current = nil
			used = 0
		}
		current = append(current, p)
		used += tokens
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}

func embedBatch(ctx context.Context, client *chatgpt.Client, model string, batch []passage) ([]pgrepo.Chunk, metrics.TokenUsage, error) {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.Text
	}

	callCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	resp, err := client.CreateEmbedding(callCtx, chatgpt.EmbeddingRequest{
		Model: model,
		Input: texts,
	})
	if err != nil {
		return nil, metrics.TokenUsage{}, err
	}
	if len(resp.Data) != len(batch) {
		return nil, metrics.TokenUsage{}, fmt.Errorf("embedding count mismatch: want %d, got %d", len(batch), len(resp.Data))
	}

	chunks := make([]pgrepo.Chunk, len(batch))
	for i, p := range batch {
		chunks[i] = pgrepo.Chunk{
			Text:      p.Text,
			Category:  p.Category,
			Source:    p.Source,
			Embedding: resp.Data[i].Embedding,
		}
	}
	usage := metrics.TokenUsage{
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	return chunks, usage, nil
}
