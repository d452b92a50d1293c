package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/sequence"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/audit"
)

// --- fakes ---

type fakeRepo struct {
	transfers map[int64]*Transfer
	nextID    int64

	// createFails makes that many Create calls return a duplicate error.
	createFails int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{transfers: make(map[int64]*Transfer)}
}

func (r *fakeRepo) Create(_ context.Context, t *Transfer) error {
	if r.createFails > 0 {
		r.createFails--
		return apperror.NewDuplicate("transfer", "reference", t.Reference)
	}
	r.nextID++
	t.ID = r.nextID
	clone := *t
	r.transfers[t.ID] = &clone
	return nil
}

func (r *fakeRepo) Update(_ context.Context, t *Transfer) error {
	if _, ok := r.transfers[t.ID]; !ok {
		return apperror.NewNotFound("transfer", t.ID)
	}
	clone := *t
	r.transfers[t.ID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.transfers[id]; !ok {
		return apperror.NewNotFound("transfer", id)
	}
	delete(r.transfers, id)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*Transfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, apperror.NewNotFound("transfer", id)
	}
	clone := *t
	return &clone, nil
}

func (r *fakeRepo) GetByReference(_ context.Context, ref string) (*Transfer, error) {
	for _, t := range r.transfers {
		if t.Reference == ref {
			clone := *t
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("transfer", ref)
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]Transfer, error) {
	out := make([]Transfer, 0, len(r.transfers))
	for _, t := range r.transfers {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeRepo) SumCommission(_ context.Context, from, to time.Time) (types.Money, error) {
	total := types.Zero()
	for _, t := range r.transfers {
		if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			total = total.Add(t.Commission)
		}
	}
	return total, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAllocator struct{ counters map[string]int64 }

func (a *fakeAllocator) Next(_ context.Context, key string) (int64, error) {
	if a.counters == nil {
		a.counters = make(map[string]int64)
	}
	a.counters[key]++
	return a.counters[key], nil
}

type nopAuditRepo struct{}

func (nopAuditRepo) Create(_ context.Context, _ *audit.Entry) error { return nil }
func (nopAuditRepo) List(_ context.Context, _ audit.Filter) ([]audit.Entry, error) {
	return nil, nil
}

func newTestService(now func() time.Time) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	gen := sequence.NewGenerator(&fakeAllocator{}, now)
	svc := NewService(repo, gen, fakeTxManager{}, audit.NewRecorder(nopAuditRepo{}))
	return svc, repo
}

func newTransfer() *Transfer {
	return &Transfer{
		Channel:      ChannelVodafoneCash,
		Direction:    DirectionSend,
		CustomerName: "أحمد حسن",
		Phone:        "01100000000",
		WalletNumber: "01100000000",
		Amount:       types.MustMoney("500"),
		Commission:   types.MustMoney("10"),
	}
}

// --- tests ---

func TestCreate_AllocatesReference(t *testing.T) {
	day := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(func() time.Time { return day })
	ctx := context.Background()

	first := newTransfer()
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, "TRF-20250315-0001", first.Reference)

	second := newTransfer()
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, "TRF-20250315-0002", second.Reference)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Transfer)
	}{
		{"unknown channel", func(tr *Transfer) { tr.Channel = "paypal" }},
		{"unknown direction", func(tr *Transfer) { tr.Direction = "sideways" }},
		{"missing customer", func(tr *Transfer) { tr.CustomerName = "" }},
		{"zero amount", func(tr *Transfer) { tr.Amount = types.Zero() }},
		{"negative commission", func(tr *Transfer) { tr.Commission = types.MustMoney("-1") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTransfer()
			tc.mutate(tr)
			err := svc.Create(ctx, tr)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.createFails = 3

	err := svc.Create(context.Background(), newTransfer())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSequenceConflict))
}

func TestCreate_RetriesPastOneCollision(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.createFails = 1

	tr := newTransfer()
	require.NoError(t, svc.Create(context.Background(), tr))
	assert.NotEmpty(t, tr.Reference)
}

func TestUpdate_KeepsReferenceAndStamp(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	tr := newTransfer()
	require.NoError(t, svc.Create(ctx, tr))
	stored := repo.transfers[tr.ID]
	stored.CreatedAt = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	edit := newTransfer()
	edit.ID = tr.ID
	edit.Reference = "TRF-FORGED"
	edit.Amount = types.MustMoney("750")
	require.NoError(t, svc.Update(ctx, edit))

	got, err := svc.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Reference, got.Reference)
	assert.Equal(t, stored.CreatedAt, got.CreatedAt)
	assert.True(t, got.Amount.Equal(types.MustMoney("750")))
}

func TestUpdate_UnknownTransfer(t *testing.T) {
	svc, _ := newTestService(nil)

	edit := newTransfer()
	edit.ID = 42
	err := svc.Update(context.Background(), edit)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_RemovesRecord(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	tr := newTransfer()
	require.NoError(t, svc.Create(ctx, tr))
	require.NoError(t, svc.Delete(ctx, tr.ID))

	_, err := svc.Get(ctx, tr.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = svc.Delete(ctx, tr.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_RejectsUnknownChannelFilter(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.List(context.Background(), Filter{Channel: "paypal"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCommissionForRange_SumsWithinWindow(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	for i, commission := range []string{"10", "15", "20"} {
		tr := newTransfer()
		tr.Commission = types.MustMoney(commission)
		require.NoError(t, svc.Create(ctx, tr))
		repo.transfers[tr.ID].CreatedAt = day.AddDate(0, 0, i)
	}

	// Window covers the first two days only.
	total, err := svc.CommissionForRange(ctx, day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, total.Equal(types.MustMoney("25")), "total %s", total)
}
