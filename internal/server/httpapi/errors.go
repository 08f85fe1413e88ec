package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code   string                  `json:"code"`
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// Error codes that are not validation reasons.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeValidationFailed   = "validation_failed"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeTokenExpired       = "token_expired"
	CodeNotFound           = "not_found"
	CodeStaleWrite         = "stale_write"
	CodeStoreUnavailable   = "store_unavailable"
	CodeCorruptDocument    = "corrupt_document"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal"

	CodeIdempotencyKeyReused = "idempotency_key_reused"
)

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	if reason := common.Reason(err); reason != "" {
		if errors.Is(err, common.ErrTimeConflict) {
			return http.StatusConflict, reason
		}
		return http.StatusBadRequest, reason
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, CodeInvalidCredentials
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, CodeValidationFailed
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusForbidden, CodeTokenExpired
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, common.ErrStaleWrite):
		return http.StatusConflict, CodeStaleWrite
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	case errors.Is(err, common.ErrCorruptDocument):
		return http.StatusInternalServerError, CodeCorruptDocument
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// abortWithError writes the error body and stops the handler chain. Server
// side failures are logged with their cause; clients only get a generic
// message for them.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, code := statusFor(err)

	resp := ErrorResponse{Code: code, Error: err.Error()}
	var fes validation.FieldErrors
	if errors.As(err, &fes) {
		resp.Fields = fes
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "code", code, "error", err)
		resp.Error = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, resp)
}

func abortWithCode(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Error: msg})
}
