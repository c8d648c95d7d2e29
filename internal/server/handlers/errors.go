package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError aborts the request with the standard error body.
func WriteError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: c.GetString(RequestIDKey),
	})
}

// respondError maps a service error onto a status code. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		WriteError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, models.ErrInsufficientStock):
		WriteError(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, models.ErrNotFound):
		WriteError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		WriteError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, models.ErrConflict):
		WriteError(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
		WriteError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	WriteError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
}

var (
	maxCount = decimal.NewFromInt(math.MaxInt32)
	minCount = decimal.NewFromInt(math.MinInt32)
)

// wholeNumber converts a request count to int. Counts are bounded to 32 bits,
// matching the INTEGER stock column.
func wholeNumber(field string, v decimal.Decimal, message string) (int, error) {
	if !v.IsInteger() {
		return 0, models.NewValidationError(field, message)
	}
	if v.GreaterThan(maxCount) || v.LessThan(minCount) {
		return 0, models.NewValidationError(field, fmt.Sprintf("%s is out of range", field))
	}
	return int(v.IntPart()), nil
}
