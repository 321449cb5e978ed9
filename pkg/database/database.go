// Package database manages the PostgreSQL pool behind the discovery queue
// and source tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying pool.
	Connection() *sql.DB
	// Ping verifies connectivity within the configured connect timeout.
	Ping(ctx context.Context) error
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Start registers a startup ping, a readiness check and a shutdown close.
	Start(lc *lifecycle.Coordinator) error
	// Close releases the pool. Used by short-lived processes that do not
	// run a lifecycle shutdown.
	Close() error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New opens a pool for cfg. No connection is made until Ping or Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB { return d.conn }
func (d *database) Ready() bool         { return d.ready.Load() }

func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(ctx); err != nil {
		d.ready.Store(false)
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	d.ready.Store(true)
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.AddCheck("database", d)

	lc.OnStartup(func() {
		if err := d.Ping(lc.Context()); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := d.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) Close() error {
	d.ready.Store(false)
	return d.conn.Close()
}
