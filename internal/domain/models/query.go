package models

import "time"

// QueryStatus is the final status of an applied analysis request.
type QueryStatus string

const (
	QueryStatusSuccess QueryStatus = "success"
	QueryStatusFailed  QueryStatus = "failed"
)

// QueryRecord describes one completed analysis request, as kept in the
// query history.
//
// swagger:model QueryRecord
type QueryRecord struct {
	ID           int64       `json:"id,omitempty" example:"42"`
	RequestID    string      `json:"request_id" example:"5f0c7c2e-3c55-4e4b-9d0e-0c0a2f4b7e10"`
	SessionID    string      `json:"session_id,omitempty"`
	Market       Market      `json:"market" swaggertype:"string" example:"Shanghai"`
	Ticker       string      `json:"ticker" example:"600310"`
	Status       QueryStatus `json:"status" example:"success"`
	ResultCount  int         `json:"result_count" example:"1"`
	ErrorMessage string      `json:"error_message,omitempty"`
	DurationMS   int64       `json:"duration_ms" example:"1530"`
	CreatedAt    time.Time   `json:"created_at"`
}
