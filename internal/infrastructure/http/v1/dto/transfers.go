package dto

// CreateTransferRequest records a balance transfer.
type CreateTransferRequest struct {
	Channel      string `json:"channel" binding:"required"`
	Direction    string `json:"direction" binding:"required"`
	CustomerName string `json:"customerName" binding:"required"`
	Phone        string `json:"phone"`
	WalletNumber string `json:"walletNumber"`
	Amount       string `json:"amount" binding:"required"`
	Commission   string `json:"commission"`
	Note         string `json:"note"`
}
