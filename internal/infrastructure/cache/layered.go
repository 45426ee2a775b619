package cache

import (
	"context"
	"time"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

// LayeredCache checks the local layer first, then the shared one, promoting
// shared hits into the local layer. Shared-layer failures degrade to a miss;
// the local layer is authoritative only for its own short TTL.
type LayeredCache struct {
	local    Store
	shared   Store
	localTTL time.Duration
	logger   logging.Logger
}

// NewLayeredCache accepts a nil shared layer for single-node deployments.
func NewLayeredCache(local, shared Store, localTTL time.Duration, log logging.Logger) *LayeredCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &LayeredCache{local: local, shared: shared, localTTL: localTTL, logger: log}
}

func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found, _ := c.local.Get(ctx, key); found {
		return val, true
	}
	if c.shared == nil {
		return nil, false
	}

	val, found, err := c.shared.Get(ctx, key)
	if err != nil {
		c.logger.Warn("shared cache read failed", logging.String("key", key), logging.Err(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	_ = c.local.Set(ctx, key, val, c.localTTL)
	return val, true
}

// Set writes both layers; ttl applies to the shared layer.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = c.local.Set(ctx, key, value, c.localTTL)
	if c.shared == nil {
		return
	}
	if err := c.shared.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("shared cache write failed", logging.String("key", key), logging.Err(err))
	}
}

// Delete removes key from both layers. Only the shared-layer error is
// returned; a stale shared entry outlives the write that replaced it.
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = c.local.Delete(ctx, key)
	if c.shared == nil {
		return nil
	}
	return c.shared.Delete(ctx, key)
}
