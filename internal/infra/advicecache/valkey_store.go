package advicecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/epilog/epilog-api/internal/domain/advisor"
)

// ValkeyStore keeps computed advice in a Valkey-compatible database, keyed by
// situation fingerprint with a server-side TTL.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "advice"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (advisor.AdviceResult, bool, error) {
	if key == "" {
		return advisor.AdviceResult{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return advisor.AdviceResult{}, false, nil
		}
		return advisor.AdviceResult{}, false, err
	}
	var entry advisor.CacheEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return advisor.AdviceResult{}, false, err
	}
	return entry.Payload, true, nil
}

func (s *ValkeyStore) Put(ctx context.Context, key string, result advisor.AdviceResult, ttl time.Duration) error {
	entry := advisor.CacheEntry{
		Key:       key,
		Payload:   result,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return s.prefix + ":" + key
}

var _ advisor.Cache = (*ValkeyStore)(nil)
