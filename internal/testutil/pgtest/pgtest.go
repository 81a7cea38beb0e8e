// Package pgtest connects integration tests to a disposable Postgres database.
//
// Tests are skipped unless DB_HOST_TEST is set. The schema is migrated once per
// test binary from the repository's migrations directory. Packages share the
// database, so run them one at a time: go test -p 1 ./...
package pgtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/config"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

var (
	once    sync.Once
	pg      *db.Postgres
	initErr error
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// Postgres returns the shared test database, skipping t when none is configured.
func Postgres(t *testing.T) *db.Postgres {
	t.Helper()

	if os.Getenv("DB_HOST_TEST") == "" {
		t.Skip("DB_HOST_TEST is not set, skipping Postgres integration test")
	}

	once.Do(func() {
		cfg := config.PostgresConfig{
			Host:            env("DB_HOST_TEST", "localhost"),
			Port:            env("DB_PORT_TEST", "5432"),
			User:            env("DB_USER_TEST", "postgres"),
			Password:        env("DB_PASSWORD_TEST", "123456"),
			DBName:          env("DB_NAME_TEST", "bookstore_test"),
			SSLMode:         env("DB_SSLMODE_TEST", "disable"),
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 5 * time.Minute,
			MigrationsPath:  migrationsDir(),
		}

		if initErr = db.ApplyMigrations(cfg); initErr != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, initErr = db.New(ctx, cfg)
	})

	if initErr != nil {
		log.Error().Err(initErr).Msg("Failed to prepare test database")
		t.Fatalf("test database: %v", initErr)
	}

	Truncate(t, pg.Pool)
	t.Cleanup(func() { Truncate(t, pg.Pool) })

	return pg
}

func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE order_items, orders, cart_items, banners, books, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// InsertUser creates a plain active customer and returns its id.
func InsertUser(t *testing.T, pool *pgxpool.Pool, username string) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV4())
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
		id, username, username+"@example.com")
	if err != nil {
		t.Fatalf("failed to insert user %s: %v", username, err)
	}
	return id
}
