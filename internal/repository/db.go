package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// applicationName tags taskcoin sessions in pg_stat_activity.
	applicationName = "taskcoin"
	// MigrationsTable keeps the ledger schema version apart from other
	// tools sharing the database.
	MigrationsTable = "taskcoin_schema_migrations"
)

type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// NewPool connects to the ledger database and verifies the connection.
func NewPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("ledger database connected", "max_conns", cfg.MaxConns, "min_conns", cfg.MinConns)
	return pool, nil
}

// migrationURL points golang-migrate at MigrationsTable unless the URL
// already names a table.
func migrationURL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	if q.Get("x-migrations-table") == "" {
		q.Set("x-migrations-table", MigrationsTable)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// MigrateSchema brings the ledger schema up to the newest migration in
// migrations and returns the resulting version. A schema left dirty by an
// earlier failed run is refused; it needs a manual `migrate force`.
func MigrateSchema(databaseURL string, migrations fs.FS) (uint, error) {
	src, err := iofs.New(migrations, ".")
	if err != nil {
		return 0, fmt.Errorf("open migration source: %w", err)
	}
	dbURL, err := migrationURL(databaseURL)
	if err != nil {
		return 0, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return from, fmt.Errorf("ledger schema is dirty at version %d", from)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, fmt.Errorf("migrate ledger schema: %w", err)
	}

	to, _, err := m.Version()
	if err != nil {
		return from, fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("ledger schema ready", "table", MigrationsTable, "from", from, "to", to)
	return to, nil
}
