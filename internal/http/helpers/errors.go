package helpers

import (
	"encoding/json"
	"net/http"
)

// Standard Error Responses

var (
	ErrBadRequest          = &HTTPError{Code: "bad_request", Message: "Bad request", Status: http.StatusBadRequest}
	ErrForbidden           = &HTTPError{Code: "forbidden", Message: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound            = &HTTPError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServerError = &HTTPError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrBadGateway          = &HTTPError{Code: "bad_gateway", Message: "Upstream request failed", Status: http.StatusBadGateway}
)

// HTTPError represents a standard API error.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"-"`
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail returns a copy of the error with specific details.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: e.Message,
		Detail:  detail,
		Status:  e.Status,
	}
}

// WriteError writes the error to the response writer.
func WriteError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if hErr, ok := err.(*HTTPError); ok {
		httpErr = hErr
	} else {
		// Default to internal error if unknown type
		httpErr = ErrInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}

// WriteJSON writes a JSON payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
