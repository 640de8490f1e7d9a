package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// Writes the entry but never lowers a cached visit count.
// KEYS: cache key. ARGV: code, original url, visits, created_at nanos, ttl millis.
var cacheEntryScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'visits') or '-1')
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'original_url', ARGV[2], 'created_at', ARGV[4])
if tonumber(ARGV[3]) > cur then
	redis.call('HSET', KEYS[1], 'visits', ARGV[3])
end
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
return 1
`)

// Raises the cached visit count, creating a visits-only hash when the entry is not
// cached yet so a concurrent fill cannot write an older count.
// KEYS: cache key. ARGV: visits, ttl millis.
var cacheVisitsScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'visits') or '-1')
if tonumber(ARGV[1]) > cur then
	redis.call('HSET', KEYS[1], 'visits', ARGV[1])
end
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisCacheRepository wraps a durable Repository with a Redis read cache.
// The wrapped store stays the source of truth; cache failures only cost a miss.
type RedisCacheRepository struct {
	store  shortener.Repository
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "cache:entry:",
		ttl:    ttl,
		logger: logger,
	}
}

// InsertIfAbsent stores the entry in the underlying store and updates the cache.
func (r *RedisCacheRepository) InsertIfAbsent(ctx context.Context, entry *shortener.Entry) error {
	if err := r.store.InsertIfAbsent(ctx, entry); err != nil {
		return err
	}

	r.cacheEntry(ctx, entry)

	return nil
}

// Get checks the cache first and populates it on a miss.
func (r *RedisCacheRepository) Get(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	// A hash without a code only carries a visit count and is not a hit.
	if err == nil && fields["code"] != "" {
		return entryFromHash(fields), nil
	}

	if err != nil {
		r.logger.Debug("cache read failed", zap.String("code", string(code)), zap.Error(err))
	}

	entry, err := r.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheEntry(ctx, entry)

	return entry, nil
}

// IncrementVisits increments in the underlying store and raises the cached count.
func (r *RedisCacheRepository) IncrementVisits(ctx context.Context, code shortener.Code) (int64, error) {
	visits, err := r.store.IncrementVisits(ctx, code)
	if err != nil {
		return 0, err
	}

	if err = cacheVisitsScript.Run(ctx, r.client, []string{r.prefix + string(code)},
		visits, r.ttl.Milliseconds(),
	).Err(); err != nil {
		r.logger.Debug("cache visit update failed", zap.String("code", string(code)), zap.Error(err))
	}

	return visits, nil
}

// List is served by the underlying store.
func (r *RedisCacheRepository) List(ctx context.Context, page shortener.Page) ([]shortener.Entry, error) {
	return r.store.List(ctx, page)
}

func (r *RedisCacheRepository) cacheEntry(ctx context.Context, entry *shortener.Entry) {
	fields := entryHash(entry)

	err := cacheEntryScript.Run(ctx, r.client, []string{r.prefix + string(entry.Code)},
		fields["code"], fields["original_url"], fields["visits"], fields["created_at"], r.ttl.Milliseconds(),
	).Err()
	if err != nil {
		r.logger.Debug("cache write failed", zap.String("code", string(entry.Code)), zap.Error(err))
	}
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
