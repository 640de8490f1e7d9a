package container

import (
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/health"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"go.uber.org/zap"
)

// RepositoryPackage provides the shortener.Repository selected by Options.Store,
// optionally behind a Redis read cache, and the health checkers for its dependencies.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := newRepository(i, opts)
		if err != nil {
			return nil, err
		}

		if opts.CacheEnabled() {
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			repo = store.NewRedisCacheRepository(repo, client.Client, time.Duration(opts.CacheTTL)*time.Second, logger)
		}

		logger.Info("entry store ready",
			zap.String("store", opts.Store),
			zap.Bool("cache", opts.CacheEnabled()),
		)

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (map[string]health.Checker, error) {
		opts := do.MustInvoke[*Options](i)
		checkers := map[string]health.Checker{}

		switch opts.Store {
		case StoreSQLite:
			checkers[StoreSQLite] = do.MustInvoke[*store.SQLiteStore](i)
		case StorePostgres:
			checkers[StorePostgres] = health.NewPostgresChecker(do.MustInvoke[*PostgresPool](i).Pool)
		}

		if opts.usesRedis() {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		return checkers, nil
	})
}

func newRepository(i *do.Injector, opts *Options) (shortener.Repository, error) {
	switch opts.Store {
	case StoreMemory:
		return store.NewMemoryStore(), nil
	case StoreSQLite:
		return do.Invoke[*store.SQLiteStore](i)
	case StorePostgres:
		pool, err := do.Invoke[*PostgresPool](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(pool.Pool), nil
	case StoreRedis:
		client, err := do.Invoke[*RedisClient](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisStore(client.Client), nil
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Store)
	}
}
