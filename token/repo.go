package token

import (
	"context"
	"time"
)

// Backend is the raw key/value storage behind a Store. Implementations must treat a missing
// key as ("", false, nil) rather than an error.
type Backend interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}
