package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func openForGoose(pool *pgxpool.Pool) (*sql.DB, error) {
	if pool == nil {
		return nil, errors.New("nil pool provided")
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Migrate применяет все встроенные миграции.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openForGoose(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.UpContext(ctx, db, migrationsDir)
}

// MigrateDown откатывает последнюю миграцию.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openForGoose(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.DownContext(ctx, db, migrationsDir)
}

// MigrationStatus печатает состояние миграций через логгер goose.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openForGoose(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.StatusContext(ctx, db, migrationsDir)
}
