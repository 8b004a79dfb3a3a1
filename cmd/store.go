package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/config"
	"github.com/sells-group/sortbench/internal/resilience"
	"github.com/sells-group/sortbench/internal/store"
)

// initStore opens and migrates the run history backend, retrying while the
// database is unreachable.
func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	backoff := resilience.Backoff{
		Attempts: sc.ConnectAttempts,
		Jitter:   0.25,
		OnRetry:  resilience.LogRetry("open " + sc.Driver + " store"),
	}
	return resilience.Retry(ctx, backoff, func(ctx context.Context) (store.Store, error) {
		return openStore(ctx, sc)
	})
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch sc.Driver {
	case config.StoreDriverSQLite:
		st, err = store.NewSQLite(sc.DatabaseURL)
	case config.StoreDriverPostgres:
		st, err = store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
