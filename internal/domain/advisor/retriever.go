package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
)

const retrievalLimit = 3

// EmbeddingClient converts query text into a vector.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, req chatgpt.EmbeddingRequest) (chatgpt.EmbeddingResponse, error)
}

// GuidelineIndex runs top-k similarity search over the guideline corpus.
type GuidelineIndex interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]GuidelineDoc, error)
}

// Retriever synthesizes a query from the decision, embeds it and searches
// the corpus, broadening the query once when the primary search is empty.
// Retrieval augments but never gates the deterministic decision: every
// failure degrades to "no guidance found".
type Retriever struct {
	client         EmbeddingClient
	index          GuidelineIndex
	embeddingModel string
	logger         *slog.Logger
}

// NewRetriever wires the semantic retriever.
func NewRetriever(client EmbeddingClient, index GuidelineIndex, embeddingModel string, logger *slog.Logger) *Retriever {
	return &Retriever{
		client:         client,
		index:          index,
		embeddingModel: embeddingModel,
		logger:         logger.With("component", "advisor.retriever"),
	}
}

// Retrieve returns up to three guideline passages for the decision context.
func (r *Retriever) Retrieve(ctx context.Context, decision Decision, profile UserProfile) []GuidelineDoc {
	if r.client == nil || r.index == nil {
		return nil
	}

	primary := buildQuery(decision, profile)
	docs, err := r.search(ctx, primary)
	if err != nil {
		r.logger.Warn("guideline retrieval failed", "query", primary, "error", err)
		return nil
	}
	if len(docs) > 0 {
		return docs
	}

	fallback := buildFallbackQuery(decision)
	r.logger.Info("primary retrieval empty, broadening query", "fallback", fallback)
	docs, err = r.search(ctx, fallback)
	if err != nil {
		r.logger.Warn("fallback retrieval failed", "query", fallback, "error", err)
		return nil
	}
	return docs
}

func (r *Retriever) search(ctx context.Context, query string) ([]GuidelineDoc, error) {
	resp, err := r.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: r.embeddingModel,
		Input: query,
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response empty")
	}
	return r.index.Search(ctx, resp.Data[0].Embedding, retrievalLimit)
}

// buildQuery renders "<dominant pollutant+grade> 상황에서 <condition>
// <age-band> 행동 요령 주의사항".
func buildQuery(decision Decision, profile UserProfile) string {
	return fmt.Sprintf("%s 상황에서 %s %s 행동 요령 주의사항",
		dominantPhrase(decision),
		conditionKorean(profile.Condition),
		ageBandKorean(profile.AgeBand),
	)
}

// buildFallbackQuery drops the user-specific terms and keeps only the
// dominant pollutant condition.
func buildFallbackQuery(decision Decision) string {
	return dominantPhrase(decision) + " 행동 요령"
}

func dominantPhrase(decision Decision) string {
	label := decision.DominantGrade.KoreanLabel()
	if label == "" {
		label = airquality.GradeModerate.KoreanLabel()
	}
	return pollutantKorean(decision.Dominant) + " " + label
}

func pollutantKorean(p airquality.Pollutant) string {
	switch p {
	case airquality.PM25:
		return "초미세먼지"
	case airquality.PM10:
		return "미세먼지"
	case airquality.O3:
		return "오존"
	case airquality.NO2:
		return "이산화질소"
	case airquality.CO:
		return "일산화탄소"
	case airquality.SO2:
		return "아황산가스"
	default:
		return strings.ToUpper(string(p))
	}
}

func conditionKorean(c Condition) string {
	switch c {
	case ConditionRhinitis:
		return "비염"
	case ConditionAsthma:
		return "천식"
	case ConditionAtopy:
		return "아토피"
	default:
		return "건강한"
	}
}

func ageBandKorean(a AgeBand) string {
	switch a {
	case AgeInfant:
		return "영아"
	case AgeToddler:
		return "유아"
	case AgeElementaryLow:
		return "초등 저학년"
	case AgeElementaryHigh:
		return "초등 고학년"
	default:
		return "청소년"
	}
}
