package advisor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

func TestParseGeneratedAdvicePlain(t *testing.T) {
	parsed, err := parseGeneratedAdvice(`{"highlights":["하나","둘","셋"],"detail":"상세 설명"}`)
	require.NoError(t, err)
	require.Equal(t, []string{"하나", "둘", "셋"}, parsed.Highlights)
	require.Equal(t, "상세 설명", parsed.Detail)
}

func TestParseGeneratedAdviceCodeFence(t *testing.T) {
	raw := "```json\n{\"highlights\":[\"하나\"],\"detail\":\"상세\"}\n```"
	parsed, err := parseGeneratedAdvice(raw)
	require.NoError(t, err)
	require.Equal(t, "상세", parsed.Detail)
}

func TestParseGeneratedAdviceSingleStringHighlights(t *testing.T) {
	parsed, err := parseGeneratedAdvice(`{"highlights":"한 문장","detail":"상세"}`)
	require.NoError(t, err)
	require.Equal(t, []string{"한 문장"}, parsed.Highlights)
}

func TestParseGeneratedAdviceMalformed(t *testing.T) {
	_, err := parseGeneratedAdvice("JSON 아님")
	require.Error(t, err)

	_, err = parseGeneratedAdvice(`{"highlights":[],"detail":""}`)
	require.Error(t, err)
}

func TestParseGeneratedAdviceMissingDetail(t *testing.T) {
	parsed, err := parseGeneratedAdvice(`{"highlights":["하나"]}`)
	require.NoError(t, err)
	require.Equal(t, fallbackDetail, parsed.Detail)
}

func testDecision() Decision {
	return Decision{
		Entry: DecisionEntry{
			Headline:    "오늘은 짧게 다녀와요!",
			Rationale:   "대기질이 보통 수준이에요.",
			ActionItems: []string{"외출은 30분 이내"},
		},
		EffectiveGrade: airquality.GradeModerate,
	}
}

func TestCoerceHighlightsTrims(t *testing.T) {
	got := coerceHighlights([]string{" 하나 ", "둘", "셋", "넷"}, testDecision())
	require.Equal(t, []string{"하나", "둘", "셋"}, got)
}

func TestCoerceHighlightsPadsFromRationale(t *testing.T) {
	got := coerceHighlights([]string{"하나"}, testDecision())
	require.Len(t, got, highlightCount)
	require.Equal(t, "하나", got[0])
	require.Equal(t, "대기질이 보통 수준이에요.", got[1])
}

func TestCoerceHighlightsDropsBlanks(t *testing.T) {
	got := coerceHighlights([]string{"", "  ", "하나"}, testDecision())
	require.Len(t, got, highlightCount)
	require.Equal(t, "하나", got[0])
}

func TestFallbackAdviceShape(t *testing.T) {
	advice := fallbackAdvice(testDecision())
	require.Len(t, advice.Highlights, highlightCount)
	require.Equal(t, fallbackDetail, advice.Detail)
}
