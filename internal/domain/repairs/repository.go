package repairs

import (
	"context"
	"time"
)

// Repository defines storage operations for repair tickets.
type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	GetByNumber(ctx context.Context, number string) (*Ticket, error)
	List(ctx context.Context, filter Filter) ([]Ticket, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}

// Filter narrows ticket listings.
type Filter struct {
	Status   Status
	Query    string // matches ticket number, customer name, phone or device
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
