// Package transfers provides balance transfer bookkeeping: money moved for
// customers through cash wallets and banks, with the shop's commission.
package transfers

import (
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

// Channel is the medium the money moved through.
type Channel string

const (
	ChannelCash         Channel = "cash"
	ChannelVodafoneCash Channel = "vodafone_cash"
	ChannelInstapay     Channel = "instapay"
	ChannelBank         Channel = "bank"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelCash, ChannelVodafoneCash, ChannelInstapay, ChannelBank:
		return true
	}
	return false
}

// Direction of the transfer from the shop's point of view.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionSend || d == DirectionReceive
}

// Transfer is one balance transfer record.
type Transfer struct {
	ID           int64       `db:"id" json:"id"`
	Reference    string      `db:"reference" json:"reference"`
	Channel      Channel     `db:"channel" json:"channel"`
	Direction    Direction   `db:"direction" json:"direction"`
	CustomerName string      `db:"customer_name" json:"customerName"`
	Phone        string      `db:"phone" json:"phone,omitempty"`
	WalletNumber string      `db:"wallet_number" json:"walletNumber,omitempty"`
	Amount       types.Money `db:"amount" json:"amount"`
	Commission   types.Money `db:"commission" json:"commission"`
	Note         string      `db:"note" json:"note,omitempty"`
	UserID       int64       `db:"user_id" json:"userId"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}

// Validate implements basic field validation.
func (t *Transfer) Validate() error {
	if !t.Channel.Valid() {
		return apperror.NewValidation("unknown transfer channel").
			WithDetail("channel", string(t.Channel))
	}
	if !t.Direction.Valid() {
		return apperror.NewValidation("unknown transfer direction").
			WithDetail("direction", string(t.Direction))
	}
	if t.CustomerName == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "customerName")
	}
	if !t.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive")
	}
	if t.Commission.IsNegative() {
		return apperror.NewValidation("commission cannot be negative")
	}
	return nil
}
