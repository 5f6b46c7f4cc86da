package advicecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epilog/epilog-api/internal/domain/advisor"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	result := advisor.AdviceResult{Decision: "오늘은 짧게 다녀와요!", DetailAnswer: "상세"}

	require.NoError(t, store.Put(context.Background(), "key-1", result, time.Minute))

	got, ok, err := store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, result, got)
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = store.Get(context.Background(), "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "key-1", advisor.AdviceResult{}, time.Nanosecond))

	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "key-1", advisor.AdviceResult{Decision: "ok"}, 0))

	_, ok, err := store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, ok)
}
