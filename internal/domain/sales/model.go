// Package sales provides invoicing: sale creation, returns and sale queries.
package sales

import (
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

// DiscountMode selects how the discount value is interpreted.
type DiscountMode string

const (
	// DiscountFlat treats the value as an absolute amount.
	DiscountFlat DiscountMode = "flat"

	// DiscountPercent treats the value as a percentage of the subtotal.
	DiscountPercent DiscountMode = "percent"
)

// Valid reports whether the mode is known.
func (m DiscountMode) Valid() bool {
	return m == DiscountFlat || m == DiscountPercent
}

// PaymentMethod for a sale.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

// Valid reports whether the payment method is known.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentWallet:
		return true
	}
	return false
}

// Sale is a completed invoice.
type Sale struct {
	ID            int64         `db:"id" json:"id"`
	InvoiceNumber string        `db:"invoice_number" json:"invoiceNumber"`
	CustomerID    *int64        `db:"customer_id" json:"customerId,omitempty"`
	Subtotal      types.Money   `db:"subtotal" json:"subtotal"`
	DiscountMode  DiscountMode  `db:"discount_mode" json:"discountMode"`
	DiscountValue types.Money   `db:"discount_value" json:"discountValue"`
	Discount      types.Money   `db:"discount" json:"discount"`
	TaxRate       types.Money   `db:"tax_rate" json:"taxRate"`
	Tax           types.Money   `db:"tax" json:"tax"`
	Total         types.Money   `db:"total" json:"total"`
	Paid          types.Money   `db:"paid" json:"paid"`
	Change        types.Money   `db:"change_due" json:"change"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	UserID        int64         `db:"user_id" json:"userId"`
	Note          string        `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one invoice line. UnitPrice and UnitCost are captured at sale
// time so later price changes never rewrite history.
type SaleItem struct {
	ID        int64       `db:"id" json:"id"`
	SaleID    int64       `db:"sale_id" json:"saleId"`
	ProductID int64       `db:"product_id" json:"productId"`
	Name      string      `db:"name" json:"name"`
	Quantity  int         `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Return is a full or partial return against a sale.
type Return struct {
	ID        int64       `db:"id" json:"id"`
	SaleID    int64       `db:"sale_id" json:"saleId"`
	ProductID int64       `db:"product_id" json:"productId"`
	Quantity  int         `db:"quantity" json:"quantity"`
	Amount    types.Money `db:"amount" json:"amount"`
	Reason    string      `db:"reason" json:"reason,omitempty"`
	UserID    int64       `db:"user_id" json:"userId"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// Totals is the computed money breakdown of an invoice.
type Totals struct {
	Subtotal types.Money `json:"subtotal"`
	Discount types.Money `json:"discount"`
	Tax      types.Money `json:"tax"`
	Total    types.Money `json:"total"`
	Change   types.Money `json:"change"`
}

// ComputeTotals derives the invoice money breakdown:
// subtotal of line totals, then discount, then tax on the discounted base,
// then change against the paid amount. Change is clamped at zero so a
// short payment never produces a negative value.
func ComputeTotals(items []SaleItem, mode DiscountMode, discountValue, taxRate, paid types.Money) (Totals, error) {
	subtotal := types.Zero()
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(types.NewMoney(float64(it.Quantity))))
	}
	subtotal = types.RoundMoney(subtotal)

	var discount types.Money
	switch mode {
	case DiscountFlat:
		discount = discountValue
	case DiscountPercent:
		discount = subtotal.Mul(discountValue).Div(types.NewMoney(100))
	default:
		return Totals{}, apperror.NewValidation("unknown discount mode").
			WithDetail("mode", string(mode))
	}
	discount = types.RoundMoney(discount)

	if discount.IsNegative() {
		return Totals{}, apperror.NewValidation("discount cannot be negative")
	}
	if discount.GreaterThan(subtotal) {
		return Totals{}, apperror.NewValidation("discount exceeds subtotal").
			WithDetail("subtotal", subtotal).
			WithDetail("discount", discount)
	}

	taxable := subtotal.Sub(discount)
	tax := types.RoundMoney(taxable.Mul(taxRate).Div(types.NewMoney(100)))
	total := taxable.Add(tax)

	change := types.MaxMoney(types.Zero(), paid.Sub(total))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
		Change:   change,
	}, nil
}

// ReturnedQty sums previously returned quantity for one sale line.
func ReturnedQty(returns []Return, productID int64) int {
	total := 0
	for _, r := range returns {
		if r.ProductID == productID {
			total += r.Quantity
		}
	}
	return total
}

// validateLine checks one requested invoice line.
func validateLine(productID int64, qty int) error {
	if productID == 0 {
		return apperror.NewValidation("product is required")
	}
	if qty <= 0 {
		return apperror.NewValidation("quantity must be positive")
	}
	return nil
}
