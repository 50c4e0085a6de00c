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

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Store drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSQLiteDSN = "file:invoices.db?_pragma=busy_timeout(5000)"

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the environment store settings.
func ConfigFrom(c common.StoreConfig) Config {
	return Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// Open connects to the configured database, wraps it for ent's SQL layer
// and creates the tables when missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		drv  *entsql.Driver
		pool *pgxpool.Pool
		err  error
	)
	switch cfg.Driver {
	case DriverSQLite:
		drv, err = openSQLite(cfg)
	case DriverPostgres:
		drv, pool, err = openPostgres(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		logger.Error("store.open.failed", "driver", cfg.Driver, "error", err)
		return nil, storeErr("open", err)
	}

	s := &Store{drv: drv, pool: pool, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("store.open.ok", "driver", cfg.Driver)
	return s, nil
}

func openSQLite(cfg Config) (*entsql.Driver, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)
	return entsql.OpenDB(dialect.SQLite, db), nil
}

// openPostgres creates a pgx pool and wraps it as *sql.DB for ent.
func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*entsql.Driver, *pgxpool.Pool, error) {
	logger.Info("connecting to database", "driver", cfg.Driver)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	return entsql.OpenDB(dialect.Postgres, db), pool, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.drv != nil {
		if err := s.drv.Close(); err != nil {
			s.logger.Error("failed to close store driver", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Debug("store connections closed")
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var err error
	if s.pool != nil {
		err = s.pool.Ping(ctx)
	} else {
		err = s.drv.DB().PingContext(ctx)
	}
	if err != nil {
		return storeErr("ping", err)
	}
	s.logger.Debug("database ping successful")
	return nil
}

func storeErr(op string, err error) error {
	return common.NewAppError(common.CodeStore, op, fmt.Errorf("%w: %w", common.ErrStore, err))
}
