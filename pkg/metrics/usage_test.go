package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenUsageAdd(t *testing.T) {
	total := TokenUsage{PromptTokens: 10, TotalTokens: 10}
	total = total.Add(TokenUsage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8})

	require.Equal(t, 15, total.PromptTokens)
	require.Equal(t, 3, total.CompletionTokens)
	require.Equal(t, 18, total.TotalTokens)
}

func TestTokenUsageIsZero(t *testing.T) {
	require.True(t, TokenUsage{}.IsZero())
	require.False(t, TokenUsage{TotalTokens: 1}.IsZero())
}
