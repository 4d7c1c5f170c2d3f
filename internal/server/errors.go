package server

import (
	"errors"
	"net/http"
	"strings"

	billingdomain "github.com/mesterwork/mesterwork/internal/billing/domain"
	diarydomain "github.com/mesterwork/mesterwork/internal/diary/domain"
	marketpricedomain "github.com/mesterwork/mesterwork/internal/marketprice/domain"
	pricelistdomain "github.com/mesterwork/mesterwork/internal/pricelist/domain"
	registrydomain "github.com/mesterwork/mesterwork/internal/registry/domain"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, pricelistdomain.ErrForbidden),
		errors.Is(err, registrydomain.ErrRestricted),
		errors.Is(err, workforcedomain.ErrWorkerRestricted):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, registrydomain.ErrDuplicateName):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "Van már ilyen nevű munkás a regiszterben! Kérlek válassz másik nevet.",
		}
	case errors.Is(err, billingdomain.ErrNotDraft),
		errors.Is(err, workforcedomain.ErrSlotBelowAssigned):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, workdomain.ErrInvalidTitle),
		errors.Is(err, workdomain.ErrInvalidName),
		errors.Is(err, workdomain.ErrInvalidQuantity),
		errors.Is(err, workforcedomain.ErrInvalidName),
		errors.Is(err, workforcedomain.ErrInvalidQuantity),
		errors.Is(err, registrydomain.ErrInvalidName),
		errors.Is(err, pricelistdomain.ErrInvalidTask),
		errors.Is(err, billingdomain.ErrInvalidTitle),
		errors.Is(err, billingdomain.ErrEmptySelection),
		errors.Is(err, billingdomain.ErrNothingBillable),
		errors.Is(err, diarydomain.ErrEmptySelection):
		return true
	default:
		return false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, workdomain.ErrInvalidTenant),
		errors.Is(err, workforcedomain.ErrInvalidTenant),
		errors.Is(err, registrydomain.ErrInvalidTenant),
		errors.Is(err, diarydomain.ErrInvalidTenant),
		errors.Is(err, billingdomain.ErrInvalidTenant),
		errors.Is(err, pricelistdomain.ErrInvalidTenant),
		errors.Is(err, marketpricedomain.ErrInvalidTenant):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, workdomain.ErrWorkNotFound),
		errors.Is(err, workdomain.ErrItemNotFound),
		errors.Is(err, workforcedomain.ErrWorkNotFound),
		errors.Is(err, workforcedomain.ErrSlotNotFound),
		errors.Is(err, workforcedomain.ErrAssignmentNotFound),
		errors.Is(err, registrydomain.ErrNotFound),
		errors.Is(err, diarydomain.ErrWorkNotFound),
		errors.Is(err, diarydomain.ErrGroupNotFound),
		errors.Is(err, diarydomain.ErrItemNotFound),
		errors.Is(err, billingdomain.ErrNotFound),
		errors.Is(err, pricelistdomain.ErrNotFound),
		errors.Is(err, marketpricedomain.ErrItemNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
