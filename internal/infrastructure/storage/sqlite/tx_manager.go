package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"hussiny/internal/core/tx"
	"hussiny/pkg/logger"
)

// Compile-time check that TxManager implements tx.Manager.
var _ tx.Manager = (*TxManager)(nil)

// txKey is the context key for the active transaction.
type txKey struct{}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// It also satisfies sqlscan.Querier, so repositories can scan rows the same
// way inside and outside transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages transactions over the store, carrying the active
// transaction in context so nested service calls join it.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn within a transaction. A transaction already
// present in ctx is reused; the outermost call commits or rolls back.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if existing := m.getTx(ctx); existing != nil {
		return fn(ctx)
	}

	txn, err := m.store.conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, txn)
	if err := fn(txCtx); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// getTx returns the active transaction from context, or nil.
func (m *TxManager) getTx(ctx context.Context) *sql.Tx {
	if txn, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return txn
	}
	return nil
}

// GetQuerier returns the active transaction when present, otherwise the
// live database handle.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if txn := m.getTx(ctx); txn != nil {
		return txn
	}
	return m.store.conn()
}
