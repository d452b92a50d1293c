package dto

// CreateRepairRequest opens a repair ticket.
type CreateRepairRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	Phone        string `json:"phone"`
	DeviceType   string `json:"deviceType" binding:"required"`
	DeviceModel  string `json:"deviceModel"`
	SerialNumber string `json:"serialNumber"`
	Problem      string `json:"problem" binding:"required"`
	PartsCost    string `json:"partsCost"`
	LaborCost    string `json:"laborCost"`
	Deposit      string `json:"deposit"`
}

// UpdateRepairRequest edits a ticket. Absent fields stay unchanged.
type UpdateRepairRequest struct {
	Diagnosis   *string `json:"diagnosis"`
	DeviceModel *string `json:"deviceModel"`
	Status      *string `json:"status"`
	PartsCost   *string `json:"partsCost"`
	LaborCost   *string `json:"laborCost"`
	Deposit     *string `json:"deposit"`
}
