package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"notlikethat/internal/database"
	"notlikethat/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// SQLStore persists values as JSON rows of the kv_store table
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

// NewSQLStore wraps an open database whose kv_store table has been migrated
func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

func (s *SQLStore) spanAttrs(key string) []attribute.KeyValue {
	return []attribute.KeyValue{
		observability.AttributeStoreDriver(s.dialect.Name),
		observability.AttributeStoreKey(key),
	}
}

// Get implements KeyValueStore.
func (s *SQLStore) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "Get", s.spanAttrs(key)...)
	defer observability.FinishSpan(span, &err)

	var raw []byte
	err = s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT value FROM kv_store WHERE key = ?`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, newStorageError(OpGet, key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, newStorageError(OpDecode, key, err)
	}
	return true, nil
}

// Set implements KeyValueStore.
func (s *SQLStore) Set(ctx context.Context, key string, value any) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "Set", s.spanAttrs(key)...)
	defer observability.FinishSpan(span, &err)

	raw, err := json.Marshal(value)
	if err != nil {
		return newStorageError(OpEncode, key, err)
	}

	query := s.dialect.Rebind(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(raw), s.now().UTC()); err != nil {
		return newStorageError(OpSet, key, err)
	}
	return nil
}

// Remove implements KeyValueStore.
func (s *SQLStore) Remove(ctx context.Context, key string) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "Remove", s.spanAttrs(key)...)
	defer observability.FinishSpan(span, &err)

	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM kv_store WHERE key = ?`), key); err != nil {
		return newStorageError(OpRemove, key, err)
	}
	return nil
}

// Keys implements Lister.
func (s *SQLStore) Keys(ctx context.Context) (keys []string, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "Keys", observability.AttributeStoreDriver(s.dialect.Name))
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, newStorageError(OpKeys, "", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, newStorageError(OpKeys, "", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(OpKeys, "", err)
	}
	return keys, nil
}

// Close implements KeyValueStore.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
