package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/launchwatch/internal/config"
	"github.com/sells-group/launchwatch/internal/store"
)

// initStore opens the configured run history backend and migrates it.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = "launchwatch.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, poolConfig(c.Store.Pool))
	case "none":
		st = store.NopStore{}
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// openHistory is initStore for scans: history is audit only, so a store that
// cannot be opened is logged and replaced by NopStore.
func openHistory(ctx context.Context, c *config.Config) store.Store {
	st, err := initStore(ctx, c)
	if err != nil {
		zap.L().Warn("store: run history disabled",
			zap.String("driver", c.Store.Driver),
			zap.Error(err),
		)
		return store.NopStore{}
	}
	return st
}

func poolConfig(p config.PoolConfig) *store.PoolConfig {
	if p.MaxConns <= 0 && p.MinConns <= 0 {
		return nil
	}
	return &store.PoolConfig{MaxConns: p.MaxConns, MinConns: p.MinConns}
}
