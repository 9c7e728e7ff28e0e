package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"guardchain-realtime/config"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// NewMigrationProvider возвращает goose-провайдер со встроенными миграциями для драйвера
func NewMigrationProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if driver == config.DriverPostgres {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations %s: %w", dir, err)
	}

	return goose.NewProvider(dialect, db, fsys)
}

// Migrate применяет все ожидающие миграции
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := NewMigrationProvider(db, driver)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
