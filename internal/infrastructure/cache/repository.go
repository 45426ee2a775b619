package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

const (
	claimKeyPrefix     = "claim:"
	defaultLoadTimeout = 10 * time.Second
)

// CachedRepository decorates a claim.Repository with a LayeredCache.
// Concurrent misses for the same claim share a single load. Save writes
// through to the wrapped repository and then invalidates the cached copy.
// A load that overlaps a Save of the same claim never leaves its result in
// the cache.
type CachedRepository struct {
	next        claim.Repository
	cache       *LayeredCache
	ttl         time.Duration
	loadTimeout time.Duration
	logger      logging.Logger
	recorder    AccessRecorder
	group       singleflight.Group

	// generations holds a *atomic.Uint64 per claim key, bumped by Save.
	generations sync.Map
}

var _ claim.Repository = (*CachedRepository)(nil)

// AccessRecorder observes cache hits and misses.
type AccessRecorder interface {
	RecordCacheAccess(hit bool)
}

type RepositoryOption func(*CachedRepository)

func WithAccessRecorder(rec AccessRecorder) RepositoryOption {
	return func(r *CachedRepository) { r.recorder = rec }
}

// WithLoadTimeout bounds a shared load. It runs detached from the caller
// that started it, so one cancelled caller does not fail the others.
func WithLoadTimeout(d time.Duration) RepositoryOption {
	return func(r *CachedRepository) {
		if d > 0 {
			r.loadTimeout = d
		}
	}
}

func NewCachedRepository(next claim.Repository, c *LayeredCache, ttl time.Duration, log logging.Logger, opts ...RepositoryOption) *CachedRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	r := &CachedRepository{
		next:        next,
		cache:       c,
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		logger:      log.Named("claim_cache"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CachedRepository) record(hit bool) {
	if r.recorder != nil {
		r.recorder.RecordCacheAccess(hit)
	}
}

func claimKey(externalID string) string {
	return claimKeyPrefix + externalID
}

func (r *CachedRepository) generation(key string) uint64 {
	if g, ok := r.generations.Load(key); ok {
		return g.(*atomic.Uint64).Load()
	}
	return 0
}

func (r *CachedRepository) bumpGeneration(key string) {
	g, _ := r.generations.LoadOrStore(key, new(atomic.Uint64))
	g.(*atomic.Uint64).Add(1)
}

func (r *CachedRepository) FindByExternalID(ctx context.Context, externalID string) (*claim.Record, error) {
	key := claimKey(externalID)
	if data, ok := r.cache.Get(ctx, key); ok {
		if rec, err := decodeRecord(data); err == nil {
			r.record(true)
			return rec, nil
		}
		r.logger.Warn("discarding undecodable cache entry", logging.String("external_id", externalID))
		_ = r.cache.Delete(ctx, key)
	}

	r.record(false)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.load(ctx, key, externalID)
	})
	if err != nil {
		return nil, err
	}
	// Each caller decodes its own copy so callers never share a *Record.
	return decodeRecord(v.([]byte))
}

// load reads through to the wrapped repository and fills the cache unless a
// Save of the same claim ran meanwhile.
func (r *CachedRepository) load(ctx context.Context, key, externalID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
	defer cancel()

	// A caller that missed just before the previous load filled the cache
	// joins here after that load has finished.
	if data, ok := r.cache.Get(ctx, key); ok {
		if _, err := decodeRecord(data); err == nil {
			return data, nil
		}
	}

	gen := r.generation(key)
	rec, err := r.next.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if r.generation(key) != gen {
		return data, nil
	}
	r.cache.Set(ctx, key, data, r.ttl)
	// Save may have bumped the generation and deleted between the check and
	// the Set above.
	if r.generation(key) != gen {
		_ = r.cache.Delete(ctx, key)
	}
	return data, nil
}

func (r *CachedRepository) Save(ctx context.Context, rec *claim.Record) error {
	if err := r.next.Save(ctx, rec); err != nil {
		return err
	}
	key := claimKey(rec.ExternalID)
	r.bumpGeneration(key)
	r.group.Forget(key)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("claim cache invalidation failed",
			logging.String("external_id", rec.ExternalID), logging.Err(err))
	}
	// A load in another process may have read the previous record before
	// this save and refill the shared layer after the delete above. Such a
	// load finishes within loadTimeout, so a second delete then clears it.
	time.AfterFunc(r.loadTimeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.loadTimeout)
		defer cancel()
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Debug("delayed claim cache invalidation failed",
				logging.String("external_id", rec.ExternalID), logging.Err(err))
		}
	})
	return nil
}

func decodeRecord(data []byte) (*claim.Record, error) {
	var rec claim.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
