package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/Frsoul7/simple-task-manager/config"
	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/go-monolith/mono/pkg/types"
)

const defaultSQLitePath = "tasks.db"

// Store is a repository that owns a connection.
type Store interface {
	domain.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MemoryRepository)(nil)
	_ Store = (*SQLRepository)(nil)
	_ Store = (*PostgresRepository)(nil)
	_ Store = (*MongoRepository)(nil)
)

// OpenStore opens the store selected by the database URL scheme.
func OpenStore(ctx context.Context, databaseURL string, debug bool) (Store, error) {
	driver, err := config.DatabaseDriver(databaseURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverMongo:
		repo, err := OpenMongo(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverPostgres:
		repo, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite:
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			path = defaultSQLitePath
		}
		repo, err := OpenSQLite(path, debug)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenCachedStore opens the configured store and, when a cache URL is set,
// puts a Redis read cache in front of it.
func OpenCachedStore(ctx context.Context, db config.Database, cache config.Cache, logger types.Logger) (Store, error) {
	store, err := OpenStore(ctx, db.URL, db.Debug)
	if err != nil {
		return nil, err
	}
	if !cache.Enabled() {
		return store, nil
	}

	client, err := OpenRedis(ctx, cache.URL)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return NewCachedStore(store, client, cache.TTL(), logger), nil
}
