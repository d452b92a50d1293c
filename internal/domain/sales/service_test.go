package sales

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
	"hussiny/internal/domain/catalog"
	"hussiny/internal/domain/ledger"
)

// world is one in-memory shop: products, movements, sales and customers,
// with snapshot/rollback so transaction semantics hold in tests.
type world struct {
	products  map[int64]*catalog.Product
	movements []ledger.Movement
	customers map[int64]*catalog.Customer
	sales     map[int64]*Sale
	items     map[int64][]SaleItem
	returns   map[int64][]Return

	nextProductID  int64
	nextCustomerID int64
	nextSaleID     int64

	snapshot *world
}

func newWorld() *world {
	return &world{
		products:  make(map[int64]*catalog.Product),
		customers: make(map[int64]*catalog.Customer),
		sales:     make(map[int64]*Sale),
		items:     make(map[int64][]SaleItem),
		returns:   make(map[int64][]Return),
	}
}

func (w *world) clone() *world {
	c := newWorld()
	for id, p := range w.products {
		cp := *p
		c.products[id] = &cp
	}
	c.movements = append([]ledger.Movement(nil), w.movements...)
	for id, cu := range w.customers {
		cc := *cu
		c.customers[id] = &cc
	}
	for id, s := range w.sales {
		cs := *s
		c.sales[id] = &cs
	}
	for id, it := range w.items {
		c.items[id] = append([]SaleItem(nil), it...)
	}
	for id, rs := range w.returns {
		c.returns[id] = append([]Return(nil), rs...)
	}
	c.nextProductID = w.nextProductID
	c.nextCustomerID = w.nextCustomerID
	c.nextSaleID = w.nextSaleID
	return c
}

func (w *world) restore(from *world) {
	w.products = from.products
	w.movements = from.movements
	w.customers = from.customers
	w.sales = from.sales
	w.items = from.items
	w.returns = from.returns
	w.nextProductID = from.nextProductID
	w.nextCustomerID = from.nextCustomerID
	w.nextSaleID = from.nextSaleID
}

func (w *world) addProduct(name string, qty int, salePrice, costPrice string) *catalog.Product {
	w.nextProductID++
	p := &catalog.Product{
		ID:        w.nextProductID,
		SKU:       name,
		Name:      name,
		Quantity:  qty,
		SalePrice: types.MustMoney(salePrice),
		CostPrice: types.MustMoney(costPrice),
		Active:    true,
	}
	w.products[p.ID] = p
	return p
}

// worldTx snapshots the world per transaction, restoring on error. Nested
// calls join the outer snapshot like the real manager joins the outer tx.
type worldTx struct {
	w     *world
	depth int
}

func (m *worldTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.depth == 0 {
		m.w.snapshot = m.w.clone()
	}
	m.depth++
	err := fn(ctx)
	m.depth--
	if err != nil && m.depth == 0 {
		m.w.restore(m.w.snapshot)
	}
	return err
}

// --- repository fakes over the world ---

type worldProducts struct{ w *world }

func (r worldProducts) Create(_ context.Context, _ *catalog.Product) error { return nil }
func (r worldProducts) Update(_ context.Context, _ *catalog.Product) error { return nil }

func (r worldProducts) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := r.w.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	clone := *p
	return &clone, nil
}

func (r worldProducts) GetBySKU(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, apperror.NewNotFound("product", "")
}

func (r worldProducts) GetByBarcode(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, apperror.NewNotFound("product", "")
}

func (r worldProducts) List(_ context.Context, _ catalog.ProductFilter) ([]catalog.Product, error) {
	return nil, nil
}

func (r worldProducts) SetActive(_ context.Context, _ int64, _ bool) error { return nil }

type worldCustomers struct{ w *world }

func (r worldCustomers) Create(_ context.Context, c *catalog.Customer) error {
	r.w.nextCustomerID++
	c.ID = r.w.nextCustomerID
	clone := *c
	r.w.customers[c.ID] = &clone
	return nil
}

func (r worldCustomers) Update(_ context.Context, _ *catalog.Customer) error { return nil }

func (r worldCustomers) GetByID(_ context.Context, id int64) (*catalog.Customer, error) {
	c, ok := r.w.customers[id]
	if !ok {
		return nil, apperror.NewNotFound("customer", id)
	}
	return c, nil
}

func (r worldCustomers) FindByNamePhone(_ context.Context, name, phone string) (*catalog.Customer, error) {
	for _, c := range r.w.customers {
		if c.Name == name && c.Phone == phone {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", name)
}

func (r worldCustomers) List(_ context.Context, _ string, _ int) ([]catalog.Customer, error) {
	return nil, nil
}

type worldLedger struct{ w *world }

func (r worldLedger) CreateMovement(_ context.Context, m *ledger.Movement) error {
	m.ID = int64(len(r.w.movements) + 1)
	r.w.movements = append(r.w.movements, *m)
	return nil
}

func (r worldLedger) AdjustQuantity(_ context.Context, productID int64, delta int) (int, error) {
	p, ok := r.w.products[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	p.Quantity += delta
	return p.Quantity, nil
}

func (r worldLedger) GetQuantity(_ context.Context, productID int64) (int, error) {
	p, ok := r.w.products[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return p.Quantity, nil
}

func (r worldLedger) ListByProduct(_ context.Context, _ int64, _ ledger.HistoryFilter) ([]ledger.Movement, error) {
	return nil, nil
}

func (r worldLedger) SumByProduct(_ context.Context, productID int64) (int, error) {
	sum := 0
	for _, m := range r.w.movements {
		if m.ProductID == productID {
			sum += m.ChangeQty
		}
	}
	return sum, nil
}

type worldSales struct{ w *world }

func (r worldSales) CreateSale(_ context.Context, s *Sale) error {
	r.w.nextSaleID++
	s.ID = r.w.nextSaleID
	clone := *s
	r.w.sales[s.ID] = &clone
	return nil
}

func (r worldSales) CreateItems(_ context.Context, items []SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	saleID := items[0].SaleID
	r.w.items[saleID] = append(r.w.items[saleID], items...)
	return nil
}

func (r worldSales) GetByID(_ context.Context, id int64) (*Sale, error) {
	s, ok := r.w.sales[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	clone := *s
	return &clone, nil
}

func (r worldSales) GetByInvoiceNumber(_ context.Context, number string) (*Sale, error) {
	for _, s := range r.w.sales {
		if s.InvoiceNumber == number {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (r worldSales) ListItems(_ context.Context, saleID int64) ([]SaleItem, error) {
	return r.w.items[saleID], nil
}

func (r worldSales) List(_ context.Context, _ Filter) ([]Sale, error) { return nil, nil }

func (r worldSales) CreateReturn(_ context.Context, ret *Return) error {
	ret.ID = int64(len(r.w.returns[ret.SaleID]) + 1)
	r.w.returns[ret.SaleID] = append(r.w.returns[ret.SaleID], *ret)
	return nil
}

func (r worldSales) ListReturnsBySale(_ context.Context, saleID int64) ([]Return, error) {
	return r.w.returns[saleID], nil
}

func (r worldSales) ListReturns(_ context.Context, _, _ time.Time, _ int) ([]Return, error) {
	return nil, nil
}

func (r worldSales) TotalForRange(_ context.Context, _, _ time.Time) (types.Money, error) {
	total := types.Zero()
	for _, s := range r.w.sales {
		total = total.Add(s.Total)
	}
	return total, nil
}

func (r worldSales) CountForRange(_ context.Context, _, _ time.Time) (int, error) {
	return len(r.w.sales), nil
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

func newTestService(w *world) *Service {
	txm := &worldTx{w: w}
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	gen := sequence.NewGenerator(&fakeAllocator{}, func() time.Time { return day })
	return NewService(
		worldSales{w},
		worldProducts{w},
		worldCustomers{w},
		ledger.NewService(worldLedger{w}, txm),
		gen,
		txm,
		audit.NewRecorder(nopAuditRepo{}),
		func() time.Time { return day },
	)
}

func TestCreateSale_HappyPath(t *testing.T) {
	w := newWorld()
	phone := w.addProduct("phone", 5, "100", "70")
	cable := w.addProduct("cable", 10, "20", "8")
	svc := newTestService(w)

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		Lines: []LineInput{
			{ProductID: phone.ID, Quantity: 2},
			{ProductID: cable.ID, Quantity: 1},
		},
		TaxRate: types.MustMoney("14"),
		Paid:    types.MustMoney("250.80"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV20250101001", sale.InvoiceNumber)
	assert.True(t, sale.Subtotal.Equal(types.MustMoney("220")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.Tax.Equal(types.MustMoney("30.8")), "tax %s", sale.Tax)
	assert.True(t, sale.Total.Equal(types.MustMoney("250.8")), "total %s", sale.Total)
	assert.True(t, sale.Change.IsZero())
	assert.Equal(t, DiscountFlat, sale.DiscountMode)
	assert.Equal(t, PaymentCash, sale.PaymentMethod)
	assert.Nil(t, sale.CustomerID, "anonymous sale carries no customer")

	// Stock moved and captured prices landed on the lines.
	assert.Equal(t, 3, w.products[phone.ID].Quantity)
	assert.Equal(t, 9, w.products[cable.ID].Quantity)
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].UnitCost.Equal(types.MustMoney("70")))
	assert.Len(t, w.movements, 2)
}

func TestCreateSale_PerLinePriceOverride(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 5, "100", "70")
	svc := newTestService(w)
	ctx := context.Background()

	bargain := types.MustMoney("85")
	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 2, UnitPrice: &bargain}},
		Paid:  types.MustMoney("170"),
	})
	require.NoError(t, err)

	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].UnitPrice.Equal(bargain))
	assert.True(t, sale.Subtotal.Equal(types.MustMoney("170")), "subtotal %s", sale.Subtotal)

	// Refunds pay back the price actually charged, not the list price.
	ret, err := svc.CreateReturn(ctx, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: p.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.True(t, ret.Amount.Equal(bargain), "amount %s", ret.Amount)
}

func TestCreateSale_InsufficientStockRollsBackEverything(t *testing.T) {
	w := newWorld()
	phone := w.addProduct("phone", 5, "100", "70")
	cable := w.addProduct("cable", 1, "20", "8")
	svc := newTestService(w)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		Lines: []LineInput{
			{ProductID: phone.ID, Quantity: 2},
			{ProductID: cable.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The first line's decrement was rolled back with the rest.
	assert.Equal(t, 5, w.products[phone.ID].Quantity)
	assert.Equal(t, 1, w.products[cable.ID].Quantity)
	assert.Empty(t, w.movements)
	assert.Empty(t, w.sales)
}

func TestCreateSale_InactiveProductRejected(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 5, "100", "70")
	p.Active = false
	svc := newTestService(w)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateSale_NamedCustomerIsCreatedOnce(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 10, "100", "70")
	svc := newTestService(w)
	ctx := context.Background()

	first, err := svc.CreateSale(ctx, CreateSaleInput{
		CustomerName:  "أحمد",
		CustomerPhone: "0111",
		Lines:         []LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)

	second, err := svc.CreateSale(ctx, CreateSaleInput{
		CustomerName:  "أحمد",
		CustomerPhone: "0111",
		Lines:         []LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, second.CustomerID)

	assert.Equal(t, *first.CustomerID, *second.CustomerID)
	assert.Len(t, w.customers, 1)
}

func TestCreateSale_Validation(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 10, "100", "70")
	svc := newTestService(w)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, CreateSaleInput{})
	require.Error(t, err, "no lines")

	_, err = svc.CreateSale(ctx, CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 0}},
	})
	require.Error(t, err, "zero quantity")

	_, err = svc.CreateSale(ctx, CreateSaleInput{
		Lines:         []LineInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentMethod("barter"),
	})
	require.Error(t, err, "unknown payment method")

	negative := types.MustMoney("-5")
	_, err = svc.CreateSale(ctx, CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: &negative}},
	})
	require.Error(t, err, "negative unit price")
}

func TestCreateReturn_RestocksAndCapsQuantity(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 5, "100", "70")
	svc := newTestService(w)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, w.products[p.ID].Quantity)

	ret, err := svc.CreateReturn(ctx, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: p.ID,
		Quantity:  2,
		Reason:    "عيب مصنع",
	})
	require.NoError(t, err)
	assert.True(t, ret.Amount.Equal(types.MustMoney("200")), "amount %s", ret.Amount)
	assert.Equal(t, 4, w.products[p.ID].Quantity)

	// Only one unit remains returnable.
	_, err = svc.CreateReturn(ctx, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: p.ID,
		Quantity:  2,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))

	_, err = svc.CreateReturn(ctx, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: p.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
}

func TestCreateReturn_ProductNotOnSale(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 5, "100", "70")
	other := w.addProduct("cable", 5, "20", "8")
	svc := newTestService(w)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.CreateReturn(ctx, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: other.ID,
		Quantity:  1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateSale_SequentialInvoiceNumbers(t *testing.T) {
	w := newWorld()
	p := w.addProduct("phone", 100, "100", "70")
	svc := newTestService(w)
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		sale, err := svc.CreateSale(ctx, CreateSaleInput{
			Lines: []LineInput{{ProductID: p.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		numbers = append(numbers, sale.InvoiceNumber)
	}
	assert.Equal(t, []string{"INV20250101001", "INV20250101002", "INV20250101003"}, numbers)
}
