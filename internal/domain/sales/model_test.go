package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

func items(lines ...SaleItem) []SaleItem { return lines }

func line(qty int, unitPrice string) SaleItem {
	return SaleItem{Quantity: qty, UnitPrice: types.MustMoney(unitPrice)}
}

func TestComputeTotals_FlatDiscountAndTax(t *testing.T) {
	// 2 x 100 = 200, no discount, 14% tax = 28, total 228, paid 250 -> change 22.
	totals, err := ComputeTotals(
		items(line(2, "100")),
		DiscountFlat,
		types.Zero(),
		types.MustMoney("14"),
		types.MustMoney("250"),
	)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(types.MustMoney("200")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(types.MustMoney("28")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(types.MustMoney("228")), "total %s", totals.Total)
	assert.True(t, totals.Change.Equal(types.MustMoney("22")), "change %s", totals.Change)
}

func TestComputeTotals_PercentDiscount(t *testing.T) {
	// 200 subtotal, 10% discount = 20, taxable 180, 14% tax = 25.2, total 205.2.
	totals, err := ComputeTotals(
		items(line(1, "200")),
		DiscountPercent,
		types.MustMoney("10"),
		types.MustMoney("14"),
		types.MustMoney("205.2"),
	)
	require.NoError(t, err)

	assert.True(t, totals.Discount.Equal(types.MustMoney("20")), "discount %s", totals.Discount)
	assert.True(t, totals.Tax.Equal(types.MustMoney("25.2")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(types.MustMoney("205.2")), "total %s", totals.Total)
	assert.True(t, totals.Change.IsZero(), "change %s", totals.Change)
}

func TestComputeTotals_DiscountExceedsSubtotal(t *testing.T) {
	_, err := ComputeTotals(
		items(line(1, "50")),
		DiscountFlat,
		types.MustMoney("60"),
		types.Zero(),
		types.Zero(),
	)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestComputeTotals_NegativeDiscount(t *testing.T) {
	_, err := ComputeTotals(
		items(line(1, "50")),
		DiscountFlat,
		types.MustMoney("-5"),
		types.Zero(),
		types.Zero(),
	)
	require.Error(t, err)
}

func TestComputeTotals_UnknownMode(t *testing.T) {
	_, err := ComputeTotals(items(line(1, "10")), DiscountMode("half-off"), types.Zero(), types.Zero(), types.Zero())
	require.Error(t, err)
}

func TestComputeTotals_ShortPaymentClampsChange(t *testing.T) {
	totals, err := ComputeTotals(
		items(line(3, "33.5")),
		DiscountFlat,
		types.Zero(),
		types.Zero(),
		types.MustMoney("100"),
	)
	require.NoError(t, err)

	assert.True(t, totals.Total.Equal(types.MustMoney("100.5")), "total %s", totals.Total)
	assert.True(t, totals.Change.IsZero(), "change %s", totals.Change)
}

func TestComputeTotals_TaxRoundsToCurrencyPrecision(t *testing.T) {
	// taxable 33.33 at 14% = 4.6662 -> 4.67 after rounding.
	totals, err := ComputeTotals(
		items(line(1, "33.33")),
		DiscountFlat,
		types.Zero(),
		types.MustMoney("14"),
		types.Zero(),
	)
	require.NoError(t, err)
	assert.True(t, totals.Tax.Equal(types.MustMoney("4.67")), "tax %s", totals.Tax)
}

func TestReturnedQty(t *testing.T) {
	returns := []Return{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 1},
	}
	assert.Equal(t, 3, ReturnedQty(returns, 1))
	assert.Equal(t, 1, ReturnedQty(returns, 2))
	assert.Equal(t, 0, ReturnedQty(returns, 99))
}
