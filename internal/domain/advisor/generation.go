package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
	"github.com/epilog/epilog-api/pkg/metrics"
)

// highlightCount is the fixed number of summary sentences the generation
// contract requires.
const highlightCount = 3

// fallbackDetail substitutes the model's explanation when generation fails;
// the deterministic decision is returned intact either way.
const fallbackDetail = "일시적인 오류로 상세 설명을 불러오지 못했습니다. 하지만 행동 지침은 위와 같이 준수해주세요."

var fallbackHighlights = []string{
	"대기질과 아이 정보를 기준으로 판단했어요.",
	"행동 수칙은 그대로 따라 주세요.",
	"상세 설명은 잠시 후 다시 확인해 주세요.",
}

type generatedAdvice struct {
	Highlights []string
	Detail     string
	Usage      metrics.TokenUsage
}

// generate asks the model for the prose justification only. The response
// must be a JSON object with a 3-element highlights array and one detail
// string; anything else is coerced or replaced by the safe fallback.
func (s *service) generate(ctx context.Context, decision Decision, profile UserProfile, snapshot airquality.TelemetrySnapshot, docs []GuidelineDoc) generatedAdvice {
	if s.client == nil {
		return fallbackAdvice(decision)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	messages := []chatgpt.Message{
		{Role: "system", Content: s.buildSystemPrompt()},
		{Role: "user", Content: buildGenerationPrompt(decision, profile, snapshot, docs)},
	}
	resp, err := s.client.CreateChatCompletion(callCtx, chatgpt.ChatCompletionRequest{
		Model:          s.cfg.Model,
		Messages:       messages,
		Temperature:    s.cfg.Temperature,
		ResponseFormat: chatgpt.JSONObjectFormat(),
	})
	if err != nil {
		s.logger.Warn("advice generation failed", "error", err)
		return fallbackAdvice(decision)
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("advice generation returned no choices")
		return fallbackAdvice(decision)
	}

	parsed, err := parseGeneratedAdvice(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("advice generation response malformed", "error", err)
		advice := fallbackAdvice(decision)
		advice.Usage = usageFrom(resp)
		return advice
	}
	parsed.Highlights = coerceHighlights(parsed.Highlights, decision)
	parsed.Usage = usageFrom(resp)
	return parsed
}

func (s *service) buildSystemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "당신은 환경보건 의사입니다. 대기질 데이터와 아이의 기저질환 정보를 바탕으로 판단 근거만 작성합니다."
	}
	enforcer := " decision과 actionItems는 이미 시스템에서 계산되었습니다. 제공된 가이드라인을 최우선으로 반영하세요." +
		" 반드시 다음 형태의 JSON으로만 응답하세요: {\"highlights\":[문장1,문장2,문장3],\"detail\":\"상세 설명\"}." +
		" highlights는 정확히 3개의 짧은 핵심 문장, detail은 하나의 자세한 설명입니다."
	return base + enforcer
}

func buildGenerationPrompt(decision Decision, profile UserProfile, snapshot airquality.TelemetrySnapshot, docs []GuidelineDoc) string {
	var b strings.Builder

	b.WriteString("[상황 정보]\n")
	fmt.Fprintf(&b, "- 대기질: PM2.5=%s, O3=%s (종합 %s)\n",
		decision.Corrected.PM25.KoreanLabel(), decision.Corrected.O3.KoreanLabel(), decision.EffectiveGrade.KoreanLabel())
	fmt.Fprintf(&b, "- 기상: 기온 %.1f°C, 습도 %.0f%%\n", snapshot.Temperature, snapshot.Humidity)
	fmt.Fprintf(&b, "- 사용자: %s, %s\n", ageBandKorean(profile.AgeBand), conditionKorean(profile.Condition))
	fmt.Fprintf(&b, "- 시스템 결정: %s\n", decision.Entry.Headline)
	fmt.Fprintf(&b, "- 시스템 행동수칙: %s\n", strings.Join(decision.Entry.ActionItems, " / "))

	b.WriteString("\n[의학적 가이드라인 (참고 문헌)]\n")
	if len(docs) == 0 {
		b.WriteString("관련 의학적 가이드라인을 찾을 수 없습니다.\n")
	} else {
		for _, doc := range docs {
			source := doc.Source
			if source == "" {
				source = "가이드라인"
			}
			fmt.Fprintf(&b, "- [출처: %s] %s\n", source, doc.Text)
		}
	}

	b.WriteString("\n위 결정이 내려진 배경과 이유를 가이드라인을 참고하여 친절하게 설명해주세요.")
	return b.String()
}

func parseGeneratedAdvice(raw string) (generatedAdvice, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire struct {
		Highlights json.RawMessage `json:"highlights"`
		Detail     string          `json:"detail"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return generatedAdvice{}, err
	}
	highlights, err := coerceStringArray(wire.Highlights)
	if err != nil {
		return generatedAdvice{}, err
	}
	detail := strings.TrimSpace(wire.Detail)
	if detail == "" && len(highlights) == 0 {
		return generatedAdvice{}, errors.New("generation response empty")
	}
	if detail == "" {
		detail = fallbackDetail
	}
	return generatedAdvice{Highlights: highlights, Detail: detail}, nil
}

// coerceHighlights pads or trims the model output to exactly three
// non-empty sentences.
func coerceHighlights(highlights []string, decision Decision) []string {
	out := make([]string, 0, highlightCount)
	for _, h := range highlights {
		clean := strings.TrimSpace(h)
		if clean == "" {
			continue
		}
		out = append(out, clean)
		if len(out) == highlightCount {
			return out
		}
	}
	pads := padHighlights(decision)
	for _, pad := range pads {
		if len(out) == highlightCount {
			break
		}
		out = append(out, pad)
	}
	return out
}

func padHighlights(decision Decision) []string {
	pads := make([]string, 0, highlightCount)
	if rationale := strings.TrimSpace(decision.Entry.Rationale); rationale != "" {
		pads = append(pads, rationale)
	}
	pads = append(pads, fallbackHighlights...)
	return pads
}

func fallbackAdvice(decision Decision) generatedAdvice {
	return generatedAdvice{
		Highlights: coerceHighlights(nil, decision),
		Detail:     fallbackDetail,
	}
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported highlights format")
	}
}

func usageFrom(resp chatgpt.ChatCompletionResponse) metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
}
