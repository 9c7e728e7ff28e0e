package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/storage"
)

// queryer реализуется и *sql.DB, и *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// queries содержит все запросы шлюза; работает поверх соединения или транзакции
type queries struct {
	db     queryer
	driver string
}

var (
	_ storage.Gateway       = (*Store)(nil)
	_ storage.AlertReviewer = (*Store)(nil)
	_ storage.Reader        = (*queries)(nil)
)

// ReadConsistent выполняет fn в одной читающей транзакции.
// Для Postgres используется REPEATABLE READ, для SQLite (WAL) снимок дает сама транзакция.
func (s *Store) ReadConsistent(ctx context.Context, fn func(r storage.Reader) error) error {
	var opts *sql.TxOptions
	if s.driver == config.DriverPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}

	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{db: tx, driver: s.driver}); err != nil {
		return err
	}
	return tx.Commit()
}

// rebind заменяет плейсхолдеры ? на $1, $2, ... для Postgres
func (q *queries) rebind(query string) string {
	if q.driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func transactionWhere(f storage.TransactionFilter) *where {
	w := &where{}
	if !f.Since.IsZero() {
		w.add("created_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		w.add("created_at <= ?", f.Until.UTC())
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	return w
}

func alertWhere(f storage.AlertFilter) *where {
	w := &where{}
	if !f.Since.IsZero() {
		w.add("created_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		w.add("created_at <= ?", f.Until.UTC())
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if len(f.Severities) > 0 {
		placeholders := make([]string, len(f.Severities))
		args := make([]interface{}, len(f.Severities))
		for i, s := range f.Severities {
			placeholders[i] = "?"
			args[i] = string(s)
		}
		w.add("severity IN ("+strings.Join(placeholders, ", ")+")", args...)
	}
	if f.Detected != nil {
		w.add("is_detected = ?", *f.Detected)
	}
	if f.HasResponseTime {
		w.add("response_time IS NOT NULL")
	}
	return w
}
