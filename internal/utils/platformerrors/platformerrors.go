package platformerrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/formgrid/forms-api/internal/infrastructure/logger"
)

// Layer identifies which architectural layer produced an error.
type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerRepository     Layer = "repository"
	LayerInfrastructure Layer = "infrastructure"
	LayerTransport      Layer = "transport"
)

// ErrorType classifies an error for transport mapping.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeEligibility  ErrorType = "eligibility"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal"
)

// Error is the platform error carried across layer boundaries.
type Error struct {
	Layer   Layer
	Type    ErrorType
	Message string
	Code    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a typed error and logs it with its stable error code.
func NewError(ctx context.Context, layer Layer, errType ErrorType, message string, cause error, code string) error {
	err := &Error{
		Layer:   layer,
		Type:    errType,
		Message: message,
		Code:    code,
		Cause:   cause,
	}
	log := logger.GetLogger()
	event := log.Debug()
	if errType == ErrorTypeInternal {
		event = log.Error()
	}
	event.
		Str("layer", string(layer)).
		Str("error_type", string(errType)).
		Str("error_code", code).
		Err(cause).
		Msg(message)
	return err
}

// AsError wraps err while preserving an existing platform error's type so
// classification survives layer hops.
func AsError(ctx context.Context, layer Layer, err error, message string) error {
	if err == nil {
		return nil
	}
	var platformErr *Error
	if errors.As(err, &platformErr) {
		return &Error{
			Layer:   layer,
			Type:    platformErr.Type,
			Message: message,
			Code:    platformErr.Code,
			Cause:   err,
		}
	}
	return &Error{
		Layer:   layer,
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   err,
	}
}

// AsErrorWithUUID is AsError with a stable error code attached for log
// correlation.
func AsErrorWithUUID(ctx context.Context, layer Layer, err error, message, code string) error {
	wrapped := AsError(ctx, layer, err, message)
	if wrapped == nil {
		return nil
	}
	var platformErr *Error
	if errors.As(wrapped, &platformErr) && platformErr.Code == "" {
		platformErr.Code = code
	}
	return wrapped
}

// TypeOf extracts the error type, defaulting to internal.
func TypeOf(err error) ErrorType {
	var platformErr *Error
	if errors.As(err, &platformErr) {
		return platformErr.Type
	}
	return ErrorTypeInternal
}

// MessageOf returns the outermost platform message, or err.Error().
func MessageOf(err error) string {
	var platformErr *Error
	if errors.As(err, &platformErr) {
		return platformErr.Message
	}
	return err.Error()
}

// IsErrorType reports whether err carries the given error type.
func IsErrorType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
