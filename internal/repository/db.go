package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/crewsheet/internal/common"
)

// DB is an ent SQL driver plus the pgx pool behind it when the dialect is postgres.
type DB struct {
	Driver *entsql.Driver
	pool   *pgxpool.Pool
}

// Open connects using cfg.Driver: postgres goes through a pgx pool wrapped
// as *sql.DB, sqlite through modernc.org/sqlite.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	switch cfg.Driver {
	case "postgres":
		pool, err := openPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		db := stdlib.OpenDBFromPool(pool)
		logger.Info("successfully connected to database")
		return &DB{Driver: entsql.OpenDB(dialect.Postgres, db), pool: pool}, nil
	case "sqlite", "":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		// one writer; sqlite serializes writes anyway
		db.SetMaxOpenConns(1)
		logger.Info("successfully connected to database")
		return &DB{Driver: entsql.OpenDB(dialect.SQLite, db)}, nil
	}
	return nil, fmt.Errorf("%w: unsupported driver %q", common.ErrInvalidInput, cfg.Driver)
}

func openPool(ctx context.Context, cfg common.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "crewsheet"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	return pgxpool.NewWithConfig(ctx, pc)
}

// Close closes the database connections gracefully.
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if err := d.Driver.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	return d.Driver.DB().PingContext(ctx)
}
