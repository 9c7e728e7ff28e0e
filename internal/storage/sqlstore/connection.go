package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"guardchain-realtime/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store представляет хранилище транзакций и оповещений поверх database/sql
type Store struct {
	*queries
	DB     *sql.DB
	driver string
}

// NewConnection открывает БД согласно cfg.DB.Driver, применяет миграции и настраивает пул
func NewConnection(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, db, cfg.DB.Driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connection established", zap.String("driver", store.driver))
	return store, nil
}

// OpenDB открывает соединение без применения миграций (нужно утилите миграций)
func OpenDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg.DB.Driver == config.DriverPostgres {
		logger.Info("connecting to postgres")
		return openPostgres(ctx, cfg.DB.PostgresURL)
	}

	dbPath := cfg.DB.Path
	if dbPath == "" {
		// Используем путь по умолчанию в текущей директории
		dbPath = "./data/guardchain.db"
	}
	logger.Info("connecting to sqlite", zap.String("path", dbPath))
	return openSQLite(ctx, dbPath)
}

// Open оборачивает уже открытое соединение, применяя миграции (используется в тестах)
func Open(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	return newStore(ctx, db, driver)
}

func newStore(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	if driver != config.DriverPostgres {
		driver = config.DriverSQLite
	}

	// Миграции до ограничения пула: goose держит отдельное соединение
	if err := Migrate(ctx, db, driver); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite поддерживает только одно соединение для записи
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{
		queries: &queries{db: db, driver: driver},
		DB:      db,
		driver:  driver,
	}, nil
}

func openSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	// Создаем директорию, если её нет
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Driver возвращает имя используемого драйвера
func (s *Store) Driver() string {
	return s.driver
}

// Close закрывает соединение с БД
func (s *Store) Close() error {
	return s.DB.Close()
}
