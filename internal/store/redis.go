package store

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/shortener"
)

// KEYS: entry hash, index zset, sequence counter.
// ARGV: code, original url, visits, created_at nanos.
var insertEntryScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'original_url', ARGV[2], 'visits', ARGV[3], 'created_at', ARGV[4])
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

var incrementVisitsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'visits', 1)
`)

// RedisStore is a Redis implementation of shortener.Repository.
// Each entry is a hash; a sorted set scored by an INCR sequence keeps creation order.
// Durability depends on the server's AOF settings.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	indexKey string
	seqKey   string
}

// NewRedisStore creates a new Redis-backed entry store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   "entry:",
		indexKey: "entries:index",
		seqKey:   "entries:seq",
	}
}

func (r *RedisStore) key(code shortener.Code) string {
	return r.prefix + string(code)
}

func (r *RedisStore) InsertIfAbsent(ctx context.Context, entry *shortener.Entry) error {
	created, err := insertEntryScript.Run(ctx, r.client,
		[]string{r.key(entry.Code), r.indexKey, r.seqKey},
		string(entry.Code), entry.OriginalURL, entry.Visits, entry.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return unavailable("redis insert", err)
	}

	if created == 0 {
		return shortener.ErrCodeExists
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.key(code)).Result()
	if err != nil {
		return nil, unavailable("redis get", err)
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return entryFromHash(fields), nil
}

func (r *RedisStore) IncrementVisits(ctx context.Context, code shortener.Code) (int64, error) {
	visits, err := incrementVisitsScript.Run(ctx, r.client, []string{r.key(code)}).Int64()
	if err != nil {
		return 0, unavailable("redis increment", err)
	}

	if visits < 0 {
		return 0, shortener.ErrNotFound
	}

	return visits, nil
}

func (r *RedisStore) List(ctx context.Context, page shortener.Page) ([]shortener.Entry, error) {
	start := int64(max(page.Offset, 0))
	stop := int64(-1)

	if page.Limit > 0 && int64(page.Limit) <= math.MaxInt64-start {
		stop = start + int64(page.Limit) - 1
	}

	codes, err := r.client.ZRange(ctx, r.indexKey, start, stop).Result()
	if err != nil {
		return nil, unavailable("redis list", err)
	}

	if len(codes) == 0 {
		return []shortener.Entry{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(codes))

	for i, code := range codes {
		cmds[i] = pipe.HGetAll(ctx, r.key(shortener.Code(code)))
	}

	if _, err = pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable("redis list", err)
	}

	entries := make([]shortener.Entry, 0, len(codes))

	for _, cmd := range cmds {
		if fields := cmd.Val(); len(fields) > 0 {
			entries = append(entries, *entryFromHash(fields))
		}
	}

	return entries, nil
}

// Shutdown is a no-op for RedisStore (client managed externally).
func (r *RedisStore) Shutdown() error {
	return nil
}

func entryHash(entry *shortener.Entry) map[string]any {
	return map[string]any{
		"code":         string(entry.Code),
		"original_url": entry.OriginalURL,
		"visits":       entry.Visits,
		"created_at":   entry.CreatedAt.UnixNano(),
	}
}

func entryFromHash(fields map[string]string) *shortener.Entry {
	entry := &shortener.Entry{
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
	}

	if v, err := strconv.ParseInt(fields["visits"], 10, 64); err == nil {
		entry.Visits = v
	}

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		entry.CreatedAt = time.Unix(0, nanos).UTC()
	}

	return entry
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
