package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/catalog"
	"hussiny/internal/domain/ledger"
	"hussiny/internal/infrastructure/storage/sqlite"
)

func newTestStore(t *testing.T) (*sqlite.Store, *sqlite.TxManager) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store, sqlite.NewTxManager(store)
}

func seedProduct(t *testing.T, txm *sqlite.TxManager, sku string, qty int) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	category := &catalog.Category{Name: "test-" + sku}
	require.NoError(t, sqlite.NewCategoryRepo(txm).Create(ctx, category))

	p := &catalog.Product{
		SKU:        sku,
		Name:       "product " + sku,
		CategoryID: category.ID,
		CostPrice:  types.MustMoney("70"),
		SalePrice:  types.MustMoney("100"),
		Quantity:   qty,
		Active:     true,
	}
	require.NoError(t, sqlite.NewProductRepo(txm).Create(ctx, p))
	return p
}

func TestMigrate_IsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSequenceAllocator_IncrementsPerKey(t *testing.T) {
	_, txm := newTestStore(t)
	alloc := sqlite.NewSequenceAllocator(txm)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := alloc.Next(ctx, "invoice_20250101")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// A different key starts from scratch.
	got, err := alloc.Next(ctx, "invoice_20250102")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestSequenceAllocator_RollbackReleasesAllocation(t *testing.T) {
	_, txm := newTestStore(t)
	alloc := sqlite.NewSequenceAllocator(txm)
	ctx := context.Background()

	boom := errors.New("abort")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		val, err := alloc.Next(ctx, "invoice_20250101")
		require.NoError(t, err)
		require.Equal(t, int64(1), val)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The aborted allocation was never committed.
	val, err := alloc.Next(ctx, "invoice_20250101")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestProductRepo_DuplicateSKU(t *testing.T) {
	_, txm := newTestStore(t)
	repo := sqlite.NewProductRepo(txm)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 0)

	dup := &catalog.Product{
		SKU:        "SKU-1",
		Name:       "second",
		CategoryID: p.CategoryID,
		Active:     true,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "sku", appErr.Details["field"])
}

func TestProductRepo_UpdateNeverTouchesQuantity(t *testing.T) {
	_, txm := newTestStore(t)
	repo := sqlite.NewProductRepo(txm)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 5)

	p.Name = "renamed"
	p.Quantity = 999
	require.NoError(t, repo.Update(ctx, p))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	assert.Equal(t, 5, stored.Quantity)
}

func TestLedger_InvariantOverRealStore(t *testing.T) {
	_, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 0)
	svc := ledger.NewService(sqlite.NewMovementRepo(txm), txm)

	steps := []struct {
		delta int
		typ   ledger.MovementType
	}{
		{10, ledger.MovementInitial},
		{-4, ledger.MovementSale},
		{2, ledger.MovementReturn},
		{-1, ledger.MovementAdjustment},
	}
	for _, step := range steps {
		_, err := svc.Apply(ctx, ledger.ApplyInput{
			ProductID: p.ID,
			Delta:     step.delta,
			Type:      step.typ,
		})
		require.NoError(t, err)
	}

	ok, err := svc.VerifyInvariant(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := sqlite.NewProductRepo(txm).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Quantity)

	history, err := svc.History(ctx, p.ID, ledger.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestLedger_HistoryFiltersByMovementType(t *testing.T) {
	_, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 0)
	svc := ledger.NewService(sqlite.NewMovementRepo(txm), txm)

	steps := []struct {
		delta int
		typ   ledger.MovementType
	}{
		{10, ledger.MovementInitial},
		{-4, ledger.MovementSale},
		{-1, ledger.MovementSale},
	}
	for _, step := range steps {
		_, err := svc.Apply(ctx, ledger.ApplyInput{
			ProductID: p.ID,
			Delta:     step.delta,
			Type:      step.typ,
		})
		require.NoError(t, err)
	}

	saleType := ledger.MovementSale
	history, err := svc.History(ctx, p.ID, ledger.HistoryFilter{Type: &saleType})
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, m := range history {
		assert.Equal(t, ledger.MovementSale, m.Type)
	}
}

func TestLedger_NegativeStockRollsBack(t *testing.T) {
	_, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 2)
	svc := ledger.NewService(sqlite.NewMovementRepo(txm), txm)

	_, err := svc.Apply(ctx, ledger.ApplyInput{
		ProductID: p.ID,
		Delta:     -5,
		Type:      ledger.MovementSale,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNegativeStock))

	stored, err := sqlite.NewProductRepo(txm).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)

	sum, err := sqlite.NewMovementRepo(txm).SumByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestTxManager_NestedCallsJoinOuterTransaction(t *testing.T) {
	_, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 0)
	movements := sqlite.NewMovementRepo(txm)

	boom := errors.New("abort")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := movements.AdjustQuantity(ctx, p.ID, 5); err != nil {
			return err
		}
		return txm.RunInTransaction(ctx, func(ctx context.Context) error {
			if _, err := movements.AdjustQuantity(ctx, p.ID, 5); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	stored, err := sqlite.NewProductRepo(txm).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity, "both adjustments rolled back together")
}

func TestStore_SwapBlocksConcurrentQueriers(t *testing.T) {
	store, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 3)
	repo := sqlite.NewProductRepo(txm)

	require.NoError(t, store.Checkpoint(ctx))
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// Reads racing the swap wait on the store lock; a read that grabbed
	// the old handle may fail, but nothing dereferences a closed store.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_, _ = repo.GetByID(ctx, p.ID)
		}
	}()

	require.NoError(t, store.Swap(data))
	<-done

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
}

func TestStore_CheckpointAndReopen(t *testing.T) {
	store, txm := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, txm, "SKU-1", 3)

	require.NoError(t, store.Checkpoint(ctx))
	require.NoError(t, store.Close())
	require.NoError(t, store.Reopen())

	stored, err := sqlite.NewProductRepo(txm).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
}
