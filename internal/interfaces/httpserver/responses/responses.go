package responses

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// ErrorResponse is the wire shape of every error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Details carries per-field validation messages when present.
	Details map[string][]string `json:"details,omitempty"`
}

// statusFor maps platform error types to HTTP status codes.
func statusFor(errType platformerrors.ErrorType) int {
	switch errType {
	case platformerrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case platformerrors.ErrorTypeEligibility:
		return http.StatusUnprocessableEntity
	case platformerrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case platformerrors.ErrorTypeConflict:
		return http.StatusConflict
	case platformerrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case platformerrors.ErrorTypeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes err with the status derived from its platform type.
// Internal causes are never leaked to the client.
func HandleError(c *gin.Context, err error) {
	errType := platformerrors.TypeOf(err)
	status := statusFor(errType)

	body := ErrorResponse{Error: platformerrors.MessageOf(err)}
	if status == http.StatusInternalServerError {
		body.Error = "internal server error"
	}

	var platformErr *platformerrors.Error
	if errors.As(err, &platformErr) {
		body.Code = platformErr.Code
	}

	var validationErr *submission.ValidationFailedError
	if errors.As(err, &validationErr) {
		body.Details = validationErr.Fields
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// HandleNewError builds a fresh platform error and writes it.
func HandleNewError(c *gin.Context, errType platformerrors.ErrorType, message, code string) {
	err := platformerrors.NewError(contextOf(c), platformerrors.LayerTransport, errType, message, nil, code)
	HandleError(c, err)
}

// HandleErrorWithStatus writes an explicit status, bypassing type mapping.
func HandleErrorWithStatus(c *gin.Context, status int, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

func contextOf(c *gin.Context) context.Context {
	if c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}
