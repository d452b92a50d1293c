package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAllocator simulates the counter table: one monotonically
// increasing value per key.
type fakeAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{counters: make(map[string]int64)}
}

func (a *fakeAllocator) Next(_ context.Context, key string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[key]++
	return a.counters[key], nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestNextInvoiceNumber_FirstOfDay(t *testing.T) {
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	gen := NewGenerator(newFakeAllocator(), fixedClock(day))
	ctx := context.Background()

	num, err := gen.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV20250101001", num)

	num, err = gen.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV20250101002", num)
}

func TestNext_SequenceIsUniqueAndIncreasing(t *testing.T) {
	day := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	gen := NewGenerator(newFakeAllocator(), fixedClock(day))
	ctx := context.Background()

	seen := make(map[string]bool)
	var last int64
	for i := 0; i < 250; i++ {
		num, err := gen.NextInvoiceNumber(ctx)
		require.NoError(t, err)
		require.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true

		n := ParseCounter(InvoiceConfig, num)
		require.Greater(t, n, last)
		last = n
	}
	assert.Equal(t, int64(250), last)
}

func TestNext_CounterResetsPerDay(t *testing.T) {
	alloc := newFakeAllocator()
	ctx := context.Background()

	day1 := NewGenerator(alloc, fixedClock(time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)))
	day2 := NewGenerator(alloc, fixedClock(time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC)))

	n1, err := day1.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	n2, err := day2.NextInvoiceNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, "INV20250101001", n1)
	assert.Equal(t, "INV20250102001", n2)
}

func TestTicketAndTransferFormats(t *testing.T) {
	day := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(newFakeAllocator(), fixedClock(day))
	ctx := context.Background()

	ticket, err := gen.NextTicketNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "REP-20250307-0001", ticket)

	ref, err := gen.NextTransferRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TRF-20250307-0001", ref)
}

func TestParseCounter(t *testing.T) {
	// The counter starts right after the eight-digit stamp; the stamp
	// itself must never leak into the parsed value.
	assert.Equal(t, int64(1), ParseCounter(InvoiceConfig, "INV20250101001"))
	assert.Equal(t, int64(42), ParseCounter(TicketConfig, "REP-20250101-0042"))
	assert.Equal(t, int64(7), ParseCounter(TransferConfig, "TRF-20250101-0007"))

	// Counters past the pad width still parse.
	assert.Equal(t, int64(1234), ParseCounter(InvoiceConfig, "INV202501011234"))

	assert.Equal(t, int64(-1), ParseCounter(InvoiceConfig, "no-digits-here-"))
	assert.Equal(t, int64(-1), ParseCounter(InvoiceConfig, "INV20250101"))
	assert.Equal(t, int64(-1), ParseCounter(InvoiceConfig, ""))
}

func TestBelongsToDay(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, BelongsToDay(InvoiceConfig, "INV20250101001", day))
	assert.False(t, BelongsToDay(InvoiceConfig, "INV20250102001", day))
	assert.True(t, BelongsToDay(TicketConfig, "REP-20250101-0007", day))
}
