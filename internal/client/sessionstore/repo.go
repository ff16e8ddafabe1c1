package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/acadcart/internal/dbx"
)

// Repository is a key/value view of the metadata table.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type sqliteRepo struct {
	db dbx.DBTX
}

// NewRepo binds the repository to a connection or an open transaction.
func NewRepo(db dbx.DBTX) Repository {
	return &sqliteRepo{db: db}
}

// Get returns nil, nil for a missing key.
func (r *sqliteRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *sqliteRepo) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *sqliteRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete metadata[%s]: %w", key, err)
	}
	return nil
}
