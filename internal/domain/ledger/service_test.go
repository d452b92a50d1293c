package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hussiny/internal/core/apperror"
)

// fakeRepo tracks quantities and movements in memory and supports rollback
// of the last transaction like a real database would.
type fakeRepo struct {
	quantities map[int64]int
	movements  []Movement

	snapshotQty map[int64]int
	snapshotLen int
}

func newFakeRepo(initial map[int64]int) *fakeRepo {
	qty := make(map[int64]int, len(initial))
	for id, q := range initial {
		qty[id] = q
	}
	return &fakeRepo{quantities: qty}
}

func (r *fakeRepo) begin() {
	r.snapshotQty = make(map[int64]int, len(r.quantities))
	for id, q := range r.quantities {
		r.snapshotQty[id] = q
	}
	r.snapshotLen = len(r.movements)
}

func (r *fakeRepo) rollback() {
	r.quantities = r.snapshotQty
	r.movements = r.movements[:r.snapshotLen]
}

func (r *fakeRepo) CreateMovement(_ context.Context, m *Movement) error {
	m.ID = int64(len(r.movements) + 1)
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeRepo) AdjustQuantity(_ context.Context, productID int64, delta int) (int, error) {
	if _, ok := r.quantities[productID]; !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	r.quantities[productID] += delta
	return r.quantities[productID], nil
}

func (r *fakeRepo) GetQuantity(_ context.Context, productID int64) (int, error) {
	q, ok := r.quantities[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return q, nil
}

func (r *fakeRepo) ListByProduct(_ context.Context, productID int64, _ HistoryFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) SumByProduct(_ context.Context, productID int64) (int, error) {
	sum := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.ChangeQty
		}
	}
	return sum, nil
}

// fakeTxManager rolls the repo back when fn fails, mirroring the real
// transaction manager.
type fakeTxManager struct {
	repo *fakeRepo
}

func (m fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.repo.begin()
	if err := fn(ctx); err != nil {
		m.repo.rollback()
		return err
	}
	return nil
}

func newTestService(initial map[int64]int) (*Service, *fakeRepo) {
	repo := newFakeRepo(initial)
	return NewService(repo, fakeTxManager{repo: repo}), repo
}

func TestApply_AdjustsQuantityAndRecordsMovement(t *testing.T) {
	svc, repo := newTestService(map[int64]int{1: 0})
	ctx := context.Background()

	m, err := svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: 10, Type: MovementInitial})
	require.NoError(t, err)
	assert.Equal(t, 10, m.ChangeQty)

	_, err = svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: -3, Type: MovementSale, ReferenceID: "INV20250101001"})
	require.NoError(t, err)

	assert.Equal(t, 7, repo.quantities[1])
	assert.Len(t, repo.movements, 2)
}

func TestApply_NegativeStockRollsBack(t *testing.T) {
	svc, repo := newTestService(map[int64]int{1: 2})
	ctx := context.Background()

	_, err := svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: -5, Type: MovementSale})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNegativeStock))

	// Neither the quantity nor the ledger changed.
	assert.Equal(t, 2, repo.quantities[1])
	assert.Empty(t, repo.movements)
}

func TestApply_Validation(t *testing.T) {
	svc, _ := newTestService(map[int64]int{1: 5})
	ctx := context.Background()

	_, err := svc.Apply(ctx, ApplyInput{ProductID: 0, Delta: 1, Type: MovementSale})
	require.Error(t, err)

	_, err = svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: 0, Type: MovementSale})
	require.Error(t, err)

	_, err = svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: 1, Type: MovementType("theft")})
	require.Error(t, err)
}

func TestApply_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Apply(context.Background(), ApplyInput{ProductID: 99, Delta: 1, Type: MovementPurchase})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestVerifyInvariant(t *testing.T) {
	svc, repo := newTestService(map[int64]int{1: 0})
	ctx := context.Background()

	deltas := []int{10, -4, 3, -2}
	types := []MovementType{MovementInitial, MovementSale, MovementReturn, MovementSale}
	for i, d := range deltas {
		_, err := svc.Apply(ctx, ApplyInput{ProductID: 1, Delta: d, Type: types[i]})
		require.NoError(t, err)
	}

	ok, err := svc.VerifyInvariant(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, repo.quantities[1])

	// Break the invariant by writing around the ledger.
	repo.quantities[1] = 100
	ok, err = svc.VerifyInvariant(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
