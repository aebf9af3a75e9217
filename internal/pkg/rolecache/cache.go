// Package rolecache resolves an identity's current role for authorization,
// caching lookups in redis so role-gated routes do not hit Postgres on every
// request.
package rolecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tripreel-service/internal/domain/auth"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

// Lookup sources reported to an Observer.
const (
	SourceLocal = "local"
	SourceRedis = "redis"
	SourceStore = "store"
)

// RoleSource is the authoritative role lookup, normally the identity repository.
type RoleSource interface {
	FindRole(ctx context.Context, id string) (auth.Role, error)
}

// Observer is told where each successful lookup was answered from.
type Observer interface {
	ObserveRoleLookup(source string)
}

// Cache fills are fenced against concurrent evictions: a lookup that read the
// store before an Evict never writes its result back afterwards. In redis this
// is a per-identity generation key checked under WATCH; locally it is an epoch
// bumped by every Evict.
type Cache struct {
	client   redis.UniversalClient
	local    *lru.LRU[string, auth.Role]
	source   RoleSource
	ttl      time.Duration
	logger   *zap.Logger
	observer Observer

	mu    sync.Mutex
	epoch uint64
}

var errStaleFill = errors.New("role evicted during lookup")

type Option func(*Cache)

// WithLocal adds an in-process layer in front of redis holding up to size
// entries for ttl. Evict only clears this process's copy, so keep ttl short
// when several instances share a store.
func WithLocal(size int, ttl time.Duration) Option {
	return func(c *Cache) {
		c.local = lru.NewLRU[string, auth.Role](size, nil, ttl)
	}
}

func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// New builds a Cache. A nil client disables the redis layer.
func New(client redis.UniversalClient, source RoleSource, ttl time.Duration, logger *zap.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{client: client, source: source, ttl: ttl, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the role for id. Redis failures degrade to a direct
// lookup; errors from the source (including xerrors.ErrNotFound) are returned as-is.
func (c *Cache) Resolve(ctx context.Context, id string) (auth.Role, error) {
	epoch := c.currentEpoch()
	if c.local != nil {
		if role, ok := c.local.Get(id); ok {
			c.observe(SourceLocal)
			return role, nil
		}
	}

	if role, ok := c.fromRedis(ctx, id); ok {
		c.remember(id, role, epoch)
		c.observe(SourceRedis)
		return role, nil
	}

	gen, genOK := c.generation(ctx, id)

	role, err := c.source.FindRole(ctx, id)
	if err != nil {
		return "", err
	}

	if genOK {
		c.store(ctx, id, gen, role)
	}
	c.remember(id, role, epoch)
	c.observe(SourceStore)
	return role, nil
}

// generation reads the eviction counter for id. ok is false when redis is
// absent or unreachable, in which case nothing is written back.
func (c *Cache) generation(ctx context.Context, id string) (string, bool) {
	if c.client == nil {
		return "", false
	}
	gen, err := c.client.Get(ctx, c.genKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("role cache read failed, skipping write-back", zap.String("identity_id", id), zap.Error(err))
		return "", false
	}
	return gen, true
}

// store caches role unless id was evicted since gen was read.
func (c *Cache) store(ctx context.Context, id, gen string, role auth.Role) {
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, c.genKey(id)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), string(role), c.ttl)
			return nil
		})
		return err
	}, c.genKey(id))

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("role cache fill dropped after eviction", zap.String("identity_id", id))
	default:
		c.logger.Warn("role cache write failed", zap.String("identity_id", id), zap.Error(err))
	}
}

func (c *Cache) fromRedis(ctx context.Context, id string) (auth.Role, bool) {
	if c.client == nil {
		return "", false
	}
	cached, err := c.client.Get(ctx, c.key(id)).Result()
	switch {
	case err == nil:
		role, perr := auth.ParseRole(cached)
		if perr == nil {
			return role, true
		}
		c.logger.Warn("discarding unparseable cached role", zap.String("identity_id", id), zap.String("value", cached))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("role cache read failed, falling back to store", zap.String("identity_id", id), zap.Error(err))
	}
	return "", false
}

// Evict drops the cached role after a promotion or account deletion and
// fences off any lookup still in flight for id.
func (c *Cache) Evict(ctx context.Context, id string) error {
	c.mu.Lock()
	c.epoch++
	if c.local != nil {
		c.local.Remove(id)
	}
	c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(id))
		pipe.Expire(ctx, c.genKey(id), c.ttl)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to evict cached role: %w", err)
	}
	return nil
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Cache) remember(id string, role auth.Role, epoch uint64) {
	if c.local == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.local.Add(id, role)
	}
}

func (c *Cache) observe(source string) {
	if c.observer != nil {
		c.observer.ObserveRoleLookup(source)
	}
}

// Both keys share a hash tag so WATCH and MULTI stay on one cluster slot.
func (c *Cache) key(id string) string {
	return fmt.Sprintf("role:{%s}", id)
}

func (c *Cache) genKey(id string) string {
	return fmt.Sprintf("role:{%s}:gen", id)
}
