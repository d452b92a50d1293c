package dto

// SaleLineRequest is one invoice line. An empty unit price sells at the
// product's current sale price.
type SaleLineRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	UnitPrice string `json:"unitPrice"`
}

// CreateSaleRequest creates an invoice.
type CreateSaleRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Lines         []SaleLineRequest `json:"lines" binding:"required"`
	DiscountMode  string            `json:"discountMode"`
	DiscountValue string            `json:"discountValue"`
	TaxRate       string            `json:"taxRate"`
	Paid          string            `json:"paid"`
	PaymentMethod string            `json:"paymentMethod"`
	Note          string            `json:"note"`
}

// CreateReturnRequest records a return against a sale.
type CreateReturnRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Reason    string `json:"reason"`
}
