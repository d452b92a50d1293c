// Package dto defines request and response shapes for the v1 API.
package dto

// IDResponse is returned on resource creation.
type IDResponse struct {
	ID int64 `json:"id"`
}

// SuccessResponse is a generic acknowledgment.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery carries common paging parameters.
type ListQuery struct {
	Query  string `form:"q"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// RangeQuery carries a date range (yyyy-mm-dd, inclusive from, exclusive to).
type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}
