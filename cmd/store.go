package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tourbase/pricing-engine/internal/store"
)

// migrator is implemented by SQL-backed stores that manage their own schema.
type migrator interface {
	Migrate(ctx context.Context) error
}

// openStore creates the configured rule store and runs migrations for the
// SQL backends.
func openStore(ctx context.Context) (store.RuleStore, error) {
	var (
		st  store.RuleStore
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "memory":
		st = store.NewMemory()
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open %s store", cfg.Store.Driver)
	}

	if m, ok := st.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}
