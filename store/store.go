package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// querier is satisfied by *sql.DB and *sql.Tx so row scanning is shared
// between plain reads and transactional reads.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Store struct {
	db           *sql.DB
	UserCache    sync.Map // map[int64]*model.User
	SettingCache sync.Map // map[string]*model.SystemSetting
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

// Tx scopes mutations and reads to one database transaction. Every engine
// operation runs inside exactly one Tx so a status transition and its
// copy-count mutation are never observable half-applied.
type Tx struct {
	tx *sql.Tx
}

func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback is a no-op after Commit, safe to defer.
func (t *Tx) Rollback() {
	_ = t.tx.Rollback()
}
