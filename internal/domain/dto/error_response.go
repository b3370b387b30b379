package dto

import "time"

// ErrorResponse is the JSON error envelope returned by the page host.
type ErrorResponse struct {
	Message      string    `json:"message" example:"page not found"`
	ErrorDetails string    `json:"error,omitempty" example:"unknown session id"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse, copying err's text into ErrorDetails when present.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
