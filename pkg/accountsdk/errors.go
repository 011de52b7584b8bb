package accountsdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/vidtab/pkg/httpx"
)

// APIError is the failure envelope. The server writes it with WriteError and
// the client returns it as an error.
type APIError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// NewAPIError builds a failure envelope. Errors is never nil so it encodes
// as [].
func NewAPIError(statusCode int, message string, details ...string) *APIError {
	if details == nil {
		details = []string{}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Errors:     details,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("accounts api: %d %s", e.StatusCode, e.Message)
}

// WriteError writes this error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	body := *e
	body.Success = false
	if body.Errors == nil {
		body.Errors = []string{}
	}
	httpx.WriteJSON(w, e.StatusCode, body)
}

var (
	ErrUnauthorized  = NewAPIError(http.StatusUnauthorized, "Unauthorized request")
	ErrInvalidAccess = NewAPIError(http.StatusUnauthorized, "Invalid access token")
	ErrInternal      = NewAPIError(http.StatusInternalServerError, "Internal server error")
)

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
