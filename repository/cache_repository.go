package repository

import (
	"context"
	"time"
)

// CacheRepository stores serialized analysis artifacts. A ttl of zero means
// no expiry.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
