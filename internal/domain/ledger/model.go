// Package ledger provides the immutable stock movement ledger.
// Every quantity change to a product anywhere in the system routes through
// Service.Apply so that product.quantity always equals the running total of
// its movements.
package ledger

import (
	"time"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
	MovementTransfer   MovementType = "transfer"
	MovementInitial    MovementType = "initial"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturn,
		MovementAdjustment, MovementTransfer, MovementInitial:
		return true
	}
	return false
}

// Movement is an append-only record of a signed quantity change.
type Movement struct {
	ID          int64        `db:"id" json:"id"`
	ProductID   int64        `db:"product_id" json:"productId"`
	ChangeQty   int          `db:"change_qty" json:"changeQty"`
	Type        MovementType `db:"movement_type" json:"type"`
	ReferenceID string       `db:"reference_id" json:"referenceId,omitempty"`
	UserID      int64        `db:"user_id" json:"userId"`
	Note        string       `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}
