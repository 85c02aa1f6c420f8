package shared

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// ErrorCategoryConnection covers failures to obtain a store connection.
	// Callers surface these with a fixed message so connection details
	// (host, credentials) never leak to clients.
	ErrorCategoryConnection ErrorCategory = "connection"

	// ErrorCategoryQuery covers failures while executing or scanning a
	// query on an already-acquired connection. The raw error text is
	// surfaced to the caller; existing clients match on it.
	ErrorCategoryQuery ErrorCategory = "query"
)

// ServiceError is a standardized error with category context. It wraps the
// underlying cause so errors.Is/As keep working through the service layer.
type ServiceError struct {
	Category  ErrorCategory `json:"category"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// PublicMessage is the text returned to API clients. Connection failures
// get a fixed message; query failures expose the raw cause text. TODO:
// stop leaking query error detail once clients no longer parse it.
func (e *ServiceError) PublicMessage() string {
	return e.Message
}

// HTTPStatus maps the category to a response status code. Both current
// categories are server-side failures.
func (e *ServiceError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"underlying_error": e.Cause,
	}).Error(e.Message)
}

// NewConnectionError wraps a failed connection acquire.
func NewConnectionError(operation string, cause error) *ServiceError {
	return &ServiceError{
		Category:  ErrorCategoryConnection,
		Code:      "DB_CONNECTION_FAILED",
		Message:   "Database connection failed",
		Timestamp: time.Now(),
		Operation: operation,
		Retryable: true,
		Cause:     cause,
	}
}

// NewQueryError wraps a failed query or row scan.
func NewQueryError(operation string, cause error) *ServiceError {
	msg := "Error: unknown query failure"
	if cause != nil {
		msg = "Error: " + cause.Error()
	}
	return &ServiceError{
		Category:  ErrorCategoryQuery,
		Code:      "DB_QUERY_FAILED",
		Message:   msg,
		Timestamp: time.Now(),
		Operation: operation,
		Retryable: false,
		Cause:     cause,
	}
}
