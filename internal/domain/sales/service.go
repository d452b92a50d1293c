package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/internal/core/sequence"
	"hussiny/internal/core/tx"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/audit"
	"hussiny/internal/domain/catalog"
	"hussiny/internal/domain/ledger"
	"hussiny/pkg/logger"
)

// numberRetries bounds the composer retry loop on invoice number collisions.
const numberRetries = 3

// LineInput is one requested invoice line. A nil UnitPrice sells at the
// product's current sale price; cashiers can override it per line.
type LineInput struct {
	ProductID int64        `json:"productId"`
	Quantity  int          `json:"quantity"`
	UnitPrice *types.Money `json:"unitPrice,omitempty"`
}

// CreateSaleInput describes a new invoice.
type CreateSaleInput struct {
	CustomerName  string        `json:"customerName,omitempty"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	Lines         []LineInput   `json:"lines"`
	DiscountMode  DiscountMode  `json:"discountMode,omitempty"`
	DiscountValue types.Money   `json:"discountValue"`
	TaxRate       types.Money   `json:"taxRate"`
	Paid          types.Money   `json:"paid"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Note          string        `json:"note,omitempty"`
}

// CreateReturnInput describes a return against an existing sale.
type CreateReturnInput struct {
	SaleID    int64  `json:"saleId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// Service composes invoices and returns on top of the stock ledger.
type Service struct {
	repo      Repository
	products  catalog.ProductRepository
	customers catalog.CustomerRepository
	ledger    *ledger.Service
	numbers   *sequence.Generator
	txManager tx.Manager
	audit     *audit.Recorder
	now       func() time.Time
}

// NewService creates a new sales service. A nil clock defaults to time.Now.
func NewService(
	repo Repository,
	products catalog.ProductRepository,
	customers catalog.CustomerRepository,
	ledgerSvc *ledger.Service,
	numbers *sequence.Generator,
	txManager tx.Manager,
	auditRec *audit.Recorder,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		products:  products,
		customers: customers,
		ledger:    ledgerSvc,
		numbers:   numbers,
		txManager: txManager,
		audit:     auditRec,
		now:       now,
	}
}

// CreateSale runs the invoice composer: allocate an invoice number, check
// and decrement stock for every line through the ledger, compute totals and
// persist the sale with its lines, all in one transaction. A collision on
// the invoice number rolls everything back and retries the whole
// transaction, bounded.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*Sale, error) {
	if err := s.validateSale(in); err != nil {
		return nil, err
	}
	if in.DiscountMode == "" {
		in.DiscountMode = DiscountFlat
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}

	customerID, err := s.resolveCustomer(ctx, in.CustomerName, in.CustomerPhone)
	if err != nil {
		return nil, err
	}

	var sale *Sale
	for attempt := 1; ; attempt++ {
		sale, err = s.composeSale(ctx, in, customerID)
		if err == nil {
			break
		}
		if !isNumberCollision(err) {
			return nil, err
		}
		if attempt >= numberRetries {
			logger.Error(ctx, "invoice number collisions exhausted retries", "attempts", attempt)
			return nil, apperror.NewSequenceConflict(sequence.InvoiceConfig.Prefix)
		}
		logger.Warn(ctx, "invoice number collision, retrying", "attempt", attempt)
	}

	s.audit.Record(ctx, "create", "sales", sale.InvoiceNumber, map[string]any{
		"total": sale.Total,
		"items": len(sale.Items),
	})
	logger.Info(ctx, "sale created",
		"invoice", sale.InvoiceNumber,
		"total", sale.Total,
		"lines", len(sale.Items),
	)
	return sale, nil
}

// composeSale is one attempt of the invoice transaction.
func (s *Service) composeSale(ctx context.Context, in CreateSaleInput, customerID *int64) (*Sale, error) {
	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		items := make([]SaleItem, 0, len(in.Lines))
		for _, line := range in.Lines {
			p, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if !p.Active {
				return apperror.NewValidation("product is not active").
					WithDetail("product", p.Name)
			}
			if p.Quantity < line.Quantity {
				return apperror.NewInsufficientStock(p.Name, line.Quantity, p.Quantity)
			}

			unitPrice := p.SalePrice
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			items = append(items, SaleItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
				UnitCost:  p.CostPrice,
				LineTotal: types.RoundMoney(unitPrice.Mul(types.NewMoney(float64(line.Quantity)))),
			})

			_, err = s.ledger.Apply(ctx, ledger.ApplyInput{
				ProductID:   p.ID,
				Delta:       -line.Quantity,
				Type:        ledger.MovementSale,
				ReferenceID: number,
				UserID:      appctx.GetUserID(ctx),
			})
			if err != nil {
				return err
			}
		}

		totals, err := ComputeTotals(items, in.DiscountMode, in.DiscountValue, in.TaxRate, in.Paid)
		if err != nil {
			return err
		}

		sale = &Sale{
			InvoiceNumber: number,
			CustomerID:    customerID,
			Subtotal:      totals.Subtotal,
			DiscountMode:  in.DiscountMode,
			DiscountValue: in.DiscountValue,
			Discount:      totals.Discount,
			TaxRate:       in.TaxRate,
			Tax:           totals.Tax,
			Total:         totals.Total,
			Paid:          in.Paid,
			Change:        totals.Change,
			PaymentMethod: in.PaymentMethod,
			UserID:        appctx.GetUserID(ctx),
			Note:          in.Note,
		}
		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return err
		}

		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := s.repo.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("create sale items: %w", err)
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) validateSale(in CreateSaleInput) error {
	if len(in.Lines) == 0 {
		return apperror.NewValidation("sale requires at least one line")
	}
	for _, line := range in.Lines {
		if err := validateLine(line.ProductID, line.Quantity); err != nil {
			return err
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("product_id", line.ProductID)
		}
	}
	if in.DiscountMode != "" && !in.DiscountMode.Valid() {
		return apperror.NewValidation("unknown discount mode").
			WithDetail("mode", string(in.DiscountMode))
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("method", string(in.PaymentMethod))
	}
	if in.DiscountValue.IsNegative() {
		return apperror.NewValidation("discount cannot be negative")
	}
	if in.TaxRate.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative")
	}
	if in.Paid.IsNegative() {
		return apperror.NewValidation("paid amount cannot be negative")
	}
	return nil
}

// resolveCustomer finds a customer by exact name+phone, creating one when
// a name was given but no match exists. Anonymous sales carry no customer.
func (s *Service) resolveCustomer(ctx context.Context, name, phone string) (*int64, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, nil
	}

	existing, err := s.customers.FindByNamePhone(ctx, name, phone)
	if err == nil && existing != nil {
		return &existing.ID, nil
	}
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	c := &catalog.Customer{Name: name, Phone: phone}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c.ID, nil
}

func isNumberCollision(err error) bool {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Code == apperror.CodeDuplicate &&
			appErr.Details != nil && appErr.Details["field"] == "invoice_number"
	}
	return false
}

// CreateReturn records a return against a sale line: validates the quantity
// against what was sold minus what was already returned, restocks through
// the ledger and records the refund amount at the captured unit price.
func (s *Service) CreateReturn(ctx context.Context, in CreateReturnInput) (*Return, error) {
	if in.SaleID == 0 {
		return nil, apperror.NewValidation("sale is required")
	}
	if err := validateLine(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}

	var ret *Return
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetByID(ctx, in.SaleID)
		if err != nil {
			return err
		}
		items, err := s.repo.ListItems(ctx, sale.ID)
		if err != nil {
			return err
		}

		var line *SaleItem
		for i := range items {
			if items[i].ProductID == in.ProductID {
				line = &items[i]
				break
			}
		}
		if line == nil {
			return apperror.NewValidation("product was not part of this sale").
				WithDetail("product_id", in.ProductID)
		}

		previous, err := s.repo.ListReturnsBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		remaining := line.Quantity - ReturnedQty(previous, in.ProductID)
		if in.Quantity > remaining {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "return exceeds sold quantity").
				WithDetail("sold", line.Quantity).
				WithDetail("already_returned", line.Quantity-remaining).
				WithDetail("requested", in.Quantity)
		}

		_, err = s.ledger.Apply(ctx, ledger.ApplyInput{
			ProductID:   in.ProductID,
			Delta:       in.Quantity,
			Type:        ledger.MovementReturn,
			ReferenceID: sale.InvoiceNumber,
			UserID:      appctx.GetUserID(ctx),
			Note:        in.Reason,
		})
		if err != nil {
			return err
		}

		ret = &Return{
			SaleID:    sale.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Amount:    types.RoundMoney(line.UnitPrice.Mul(types.NewMoney(float64(in.Quantity)))),
			Reason:    in.Reason,
			UserID:    appctx.GetUserID(ctx),
		}
		return s.repo.CreateReturn(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "return", "sales", fmt.Sprintf("%d", in.SaleID), map[string]any{
		"product_id": in.ProductID,
		"quantity":   in.Quantity,
		"amount":     ret.Amount,
	})
	return ret, nil
}

// GetSale returns a sale with its lines.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// GetSaleByNumber returns a sale by invoice number, with its lines.
func (s *Service) GetSaleByNumber(ctx context.Context, number string) (*Sale, error) {
	sale, err := s.repo.GetByInvoiceNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns sales matching the filter, newest first.
func (s *Service) ListSales(ctx context.Context, filter Filter) ([]Sale, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ListReturns returns recent returns within a period.
func (s *Service) ListReturns(ctx context.Context, from, to time.Time, limit int) ([]Return, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListReturns(ctx, from, to, limit)
}

// TodayTotal returns the sum and count of today's sales.
func (s *Service) TodayTotal(ctx context.Context) (types.Money, int, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	total, err := s.repo.TotalForRange(ctx, from, to)
	if err != nil {
		return types.Zero(), 0, err
	}
	count, err := s.repo.CountForRange(ctx, from, to)
	if err != nil {
		return types.Zero(), 0, err
	}
	return total, count, nil
}
