package pgrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/epilog/epilog-api/internal/domain/advisor"
)

// Repo implements advisor.GuidelineIndex over a pgvector table.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs the repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Search returns the top matches by cosine distance; score is 1-distance so
// higher means closer.
func (r *Repo) Search(ctx context.Context, embedding []float32, limit int) ([]advisor.GuidelineDoc, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := r.pool.Query(ctx, `
		SELECT text, category, source, 1 - (embedding <=> $1) AS score
		FROM guideline_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("guideline search: %w", err)
	}
	defer rows.Close()

	var docs []advisor.GuidelineDoc
	for rows.Next() {
		var (
			doc      advisor.GuidelineDoc
			category sql.NullString
			source   sql.NullString
		)
		if err := rows.Scan(&doc.Text, &category, &source, &doc.Score); err != nil {
			return nil, err
		}
		doc.Category = category.String
		doc.Source = source.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Chunk is one corpus passage staged for insertion.
type Chunk struct {
	Text      string
	Category  string
	Source    string
	Embedding []float32
}

// InsertBatch writes chunks in a single round trip.
func (r *Repo) InsertBatch(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO guideline_chunks (text, category, source, embedding)
			VALUES ($1, $2, $3, $4)
		`, c.Text, c.Category, c.Source, pgvector.NewVector(c.Embedding))
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert guideline chunk: %w", err)
		}
	}
	return nil
}

// DeleteAll truncates the corpus before a full re-ingest.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guideline_chunks`)
	if err != nil {
		return 0, fmt.Errorf("clear guideline corpus: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count reports the corpus size.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM guideline_chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ advisor.GuidelineIndex = (*Repo)(nil)
