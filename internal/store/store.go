// Package store opens the configured contact store backend.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/contactbook/internal/config"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/store/postgres"
	"github.com/JonMunkholm/contactbook/internal/store/sqlite"
)

// Store is a core.Store that owns database resources.
type Store interface {
	core.Store
	io.Closer
	Ping(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverSQLite, "":
		s, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.URL, postgres.PoolConfig{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
