package storage

import (
	"context"
	"database/sql"
	"errors"
)

// MySQL backs the billing namespace with a single key-value table.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// EnsureSchema creates the backing table if it does not exist yet.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS billing_kv (
			k VARBINARY(512) NOT NULL PRIMARY KEY,
			v MEDIUMBLOB NOT NULL
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *MySQL) Get(ctx context.Context, key []byte) ([]byte, error) {
	query := `SELECT v FROM billing_kv WHERE k = ?`

	var value []byte
	if err := m.db.QueryRowContext(ctx, query, key).Scan(&value); err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	} else if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *MySQL) Has(ctx context.Context, key []byte) (bool, error) {
	query := `SELECT 1 FROM billing_kv WHERE k = ?`

	var one int
	if err := m.db.QueryRowContext(ctx, query, key).Scan(&one); err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// ApplyBatch upserts all writes inside one SQL transaction.
func (m *MySQL) ApplyBatch(ctx context.Context, writes []Write) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO billing_kv (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v)
	`
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, query, w.Key, w.Value); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				return errors.Join(err, rbErr)
			}
			return err
		}
	}

	return tx.Commit()
}
