// Package sequence provides day-scoped document number generation.
// Implementations of the counter live in the infrastructure layer.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Allocator atomically allocates the next counter value for a key.
// Implementations must be safe to call inside the ambient transaction so
// that an aborted business transaction releases the allocation with it.
type Allocator interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Clock returns the current time. Injectable for tests.
type Clock func() time.Time

// Config describes one number series.
type Config struct {
	// Prefix added to all numbers (e.g. "INV", "REP", "TRF")
	Prefix string

	// Separator between prefix, date stamp and counter ("" or "-")
	Separator string

	// PadWidth is the zero-padded counter width
	PadWidth int
}

// Series configurations used across the application. The counter resets
// daily because the key embeds the date stamp.
var (
	InvoiceConfig  = Config{Prefix: "INV", Separator: "", PadWidth: 3}
	TicketConfig   = Config{Prefix: "REP", Separator: "-", PadWidth: 4}
	TransferConfig = Config{Prefix: "TRF", Separator: "-", PadWidth: 4}
)

// Generator produces formatted, day-scoped sequential numbers.
type Generator struct {
	alloc Allocator
	now   Clock
}

// NewGenerator creates a Generator. A nil clock defaults to time.Now.
func NewGenerator(alloc Allocator, now Clock) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{alloc: alloc, now: now}
}

// Next allocates and formats the next number for the series.
func (g *Generator) Next(ctx context.Context, cfg Config) (string, error) {
	stamp := g.now().Format("20060102")
	key := fmt.Sprintf("%s_%s", cfg.Prefix, stamp)

	n, err := g.alloc.Next(ctx, key)
	if err != nil {
		return "", fmt.Errorf("allocate %s: %w", key, err)
	}

	return Format(cfg, stamp, n), nil
}

// NextInvoiceNumber returns the next invoice number (INV20250101001).
func (g *Generator) NextInvoiceNumber(ctx context.Context) (string, error) {
	return g.Next(ctx, InvoiceConfig)
}

// NextTicketNumber returns the next repair ticket number (REP-20250101-0001).
func (g *Generator) NextTicketNumber(ctx context.Context) (string, error) {
	return g.Next(ctx, TicketConfig)
}

// NextTransferRef returns the next transfer reference (TRF-20250101-0001).
func (g *Generator) NextTransferRef(ctx context.Context) (string, error) {
	return g.Next(ctx, TransferConfig)
}

// Format builds the final number string for a series.
func Format(cfg Config, stamp string, n int64) string {
	return fmt.Sprintf("%s%s%s%s%0*d", cfg.Prefix, cfg.Separator, stamp, cfg.Separator, cfg.PadWidth, n)
}

// ParseCounter extracts the counter from a formatted number of the given
// series. The date stamp is always eight digits, so everything past it is
// counter, even when the counter outgrew its pad width. Returns -1 when
// the string does not match the series layout.
func ParseCounter(cfg Config, formatted string) int64 {
	head := len(cfg.Prefix) + len(cfg.Separator)*2 + 8
	if len(formatted) <= head || !strings.HasPrefix(formatted, cfg.Prefix+cfg.Separator) {
		return -1
	}
	n, err := strconv.ParseInt(formatted[head:], 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// BelongsToDay reports whether a formatted number was issued on the given day.
func BelongsToDay(cfg Config, formatted string, day time.Time) bool {
	prefix := cfg.Prefix + cfg.Separator + day.Format("20060102")
	return strings.HasPrefix(formatted, prefix)
}
