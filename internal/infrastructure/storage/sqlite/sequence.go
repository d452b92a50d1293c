package sqlite

import (
	"context"
	"fmt"

	"hussiny/internal/core/sequence"
)

// Compile-time check that SequenceAllocator implements sequence.Allocator.
var _ sequence.Allocator = (*SequenceAllocator)(nil)

// SequenceAllocator hands out counter values from the sys_sequences table.
// The UPSERT increments and returns in one statement, so concurrent
// allocations inside the single-writer SQLite connection never collide.
// Run inside the document's transaction: an aborted document releases its
// allocation with the rollback.
type SequenceAllocator struct {
	txManager *TxManager
}

// NewSequenceAllocator creates an allocator over the store.
func NewSequenceAllocator(txManager *TxManager) *SequenceAllocator {
	return &SequenceAllocator{txManager: txManager}
}

// Next allocates the next value for key.
func (a *SequenceAllocator) Next(ctx context.Context, key string) (int64, error) {
	const q = `
		INSERT INTO sys_sequences (key, current_val) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET current_val = current_val + 1
		RETURNING current_val`

	var val int64
	querier := a.txManager.GetQuerier(ctx)
	if err := querier.QueryRowContext(ctx, q, key).Scan(&val); err != nil {
		return 0, fmt.Errorf("allocate sequence %s: %w", key, err)
	}
	return val, nil
}
