package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

type txContextKey struct{}

// Store owns the database handle and implements uow.Runner. Repositories
// built on the same Store join a running transaction through the context, so
// one Atomic call spans every repository touched inside it.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Atomic runs fn inside one transaction. A nested call joins the transaction
// already carried by the context instead of opening a second one. Lock and
// serialization failures surface as uow.ErrConflict so callers can retry the
// whole unit.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("%w: %v", uow.ErrConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("%w: commit: %v", uow.ErrConflict, err)
		}
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

func txFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sqlx.Tx)
	return tx
}

// ext returns the transaction carried by the context when inside a unit of
// work, the plain handle otherwise.
func (s *Store) ext(ctx context.Context) sqlx.ExtContext {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return s.db
}
