// Package repairs provides repair ticket management for the workshop.
package repairs

import (
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

// Status values are stored and displayed in Arabic, matching the shop's
// paper workflow.
type Status string

const (
	StatusInspection   Status = "قيد الفحص"      // under inspection (default)
	StatusInProgress   Status = "قيد الإصلاح"    // being repaired
	StatusWaitingParts Status = "في انتظار قطع غيار" // waiting for parts
	StatusRepaired     Status = "تم الإصلاح"     // repaired
	StatusUnrepairable Status = "غير قابل للإصلاح" // cannot be repaired
	StatusDelivered    Status = "تم التسليم"     // delivered to customer
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInspection, StatusInProgress, StatusWaitingParts,
		StatusRepaired, StatusUnrepairable, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether the status closes the ticket. The first
// transition into a terminal status stamps the exit date.
func (s Status) Terminal() bool {
	switch s {
	case StatusRepaired, StatusUnrepairable, StatusDelivered:
		return true
	}
	return false
}

// Ticket is one repair job.
type Ticket struct {
	ID           int64       `db:"id" json:"id"`
	TicketNumber string      `db:"ticket_number" json:"ticketNumber"`
	CustomerID   *int64      `db:"customer_id" json:"customerId,omitempty"`
	CustomerName string      `db:"customer_name" json:"customerName"`
	Phone        string      `db:"phone" json:"phone,omitempty"`
	DeviceType   string      `db:"device_type" json:"deviceType"`
	DeviceModel  string      `db:"device_model" json:"deviceModel,omitempty"`
	SerialNumber string      `db:"serial_number" json:"serialNumber,omitempty"`
	Problem      string      `db:"problem" json:"problem"`
	Diagnosis    string      `db:"diagnosis" json:"diagnosis,omitempty"`
	Status       Status      `db:"status" json:"status"`
	PartsCost    types.Money `db:"parts_cost" json:"partsCost"`
	LaborCost    types.Money `db:"labor_cost" json:"laborCost"`
	TotalCost    types.Money `db:"total_cost" json:"totalCost"`
	Deposit      types.Money `db:"deposit" json:"deposit"`
	UserID       int64       `db:"user_id" json:"userId"`
	EntryDate    time.Time   `db:"entry_date" json:"entryDate"`
	ExitDate     *time.Time  `db:"exit_date" json:"exitDate,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}

// Balance is the amount still owed by the customer.
func (t *Ticket) Balance() types.Money {
	return types.MaxMoney(types.Zero(), t.TotalCost.Sub(t.Deposit))
}

// Validate implements basic field validation.
func (t *Ticket) Validate() error {
	if t.CustomerName == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "customerName")
	}
	if t.DeviceType == "" {
		return apperror.NewValidation("device type is required").WithDetail("field", "deviceType")
	}
	if t.Problem == "" {
		return apperror.NewValidation("problem description is required").WithDetail("field", "problem")
	}
	if t.PartsCost.IsNegative() || t.LaborCost.IsNegative() || t.Deposit.IsNegative() {
		return apperror.NewValidation("costs cannot be negative")
	}
	return nil
}
