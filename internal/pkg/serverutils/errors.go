// FILE: internal/pkg/serverutils/errors.go
package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a failure for the client and for logging.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "NETWORK_ERROR"
	KindFormat     ErrorKind = "FORMAT_ERROR"
	KindBackend    ErrorKind = "BACKEND_ERROR"
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindCapacity   ErrorKind = "CAPACITY_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
)

// AppError carries an HTTP status and a client-safe message alongside
// the wrapped cause.
type AppError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNetworkError(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadGateway, Kind: KindNetwork, Message: message, Err: err}
}

func NewFormatError(message string) *AppError {
	return &AppError{Code: fiber.StatusUnsupportedMediaType, Kind: KindFormat, Message: message}
}

func NewBackendError(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadGateway, Kind: KindBackend, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Kind: KindValidation, Message: message}
}

func NewCapacityError(message string) *AppError {
	return &AppError{Code: fiber.StatusConflict, Kind: KindCapacity, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Kind: KindNotFound, Message: message}
}

// AsAppError unwraps err to an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
