package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/storage"
	"github.com/marwan116/supreme-task/storage/local"
	"github.com/marwan116/supreme-task/storage/memory"
	"github.com/marwan116/supreme-task/storage/postgres"
	redisstore "github.com/marwan116/supreme-task/storage/redis"
)

// openStorage opens the backend described by cfg. The returned closer is
// nil when there is nothing to release.
func openStorage(ctx context.Context, cfg supremetask.StorageConfig) (storage.Storage, io.Closer, error) {
	switch cfg.Type {
	case supremetask.StorageLocal:
		return local.New(cfg.BasePath), nil, nil

	case supremetask.StorageMemory:
		return memory.New(), nil, nil

	case supremetask.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		var opts []redisstore.Option
		if cfg.RedisPrefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.RedisPrefix))
		}
		return redisstore.New(client, opts...), client, nil

	case supremetask.StoragePostgres:
		var opts []postgres.Option
		if cfg.PostgresTable != "" {
			opts = append(opts, postgres.WithTable(cfg.PostgresTable))
		}
		st, err := postgres.New(ctx, cfg.PostgresDSN, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: open postgres storage: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("engine: migrate postgres storage: %w", err)
		}
		return st, st, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", supremetask.ErrUnknownStorage, cfg.Type)
	}
}
