package dto

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`     // Offending input of a validation failure
	RequestID string `json:"requestId,omitempty"` // Matches the X-Request-ID response header
}
