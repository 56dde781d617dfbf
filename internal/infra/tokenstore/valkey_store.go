package tokenstore

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/coinboard/coinboard/internal/domain/account"
)

// ValkeyStore persists revoked tokens in a Valkey-compatible database.
// Entries expire with the token they revoke, so the set stays bounded.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new blacklist backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "blacklist"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Add records a revoked token for ttl.
func (s *ValkeyStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(s.key(token)).Value("1")
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

// Contains reports whether the token was revoked.
func (s *ValkeyStore) Contains(ctx context.Context, token string) (bool, error) {
	cmd := s.client.B().Exists().Key(s.key(token)).Build()
	count, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}

func (s *ValkeyStore) key(token string) string {
	return s.prefix + ":" + token
}

var _ account.TokenBlacklist = (*ValkeyStore)(nil)
