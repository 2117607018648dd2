// Package mysql backs the record store with a MySQL table, for deployments
// that already run one. Same contract as the kv backends: Insert fails on an
// occupied key, Put overwrites, nothing is ever deleted.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"restaurant_booking/internal/storage/kv"
)

const dupEntryErrNo = 1062

type KV struct{ db *sql.DB }

func New(db *sql.DB) *KV { return &KV{db: db} }

func (m *KV) Insert(ctx context.Context, key, value []byte) error {
	_, err := m.db.ExecContext(ctx, insertRecordSQL, key, value)
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == dupEntryErrNo {
		return kv.ErrExists
	}
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (m *KV) Get(ctx context.Context, key []byte) ([]byte, error) {
	var v []byte
	err := m.db.QueryRowContext(ctx, getRecordSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return v, nil
}

func (m *KV) Put(ctx context.Context, key, value []byte) error {
	if _, err := m.db.ExecContext(ctx, putRecordSQL, key, value); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (m *KV) Close() error { return m.db.Close() }
