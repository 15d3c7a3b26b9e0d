package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"madlib-maker/shared/models"
)

// Error strings of the public API. Clients match on them, keep them stable.
const (
	errInvalidShortenRequest = "Invalid request. Required: mode (play|edit|story) and data object"
	errRequestTooLarge       = "Request body too large"
	errShortCodeNotFound     = "Short code not found"
	errGenerationExhausted   = "Failed to generate unique short code. Please try again."
	errProcessRequest        = "Failed to process request"
	errExpandShortCode       = "Failed to expand short code"
	errInternal              = "Internal server error"
)

// handleServiceError maps a service error onto a status code and error body.
// fallback is the error string used for unexpected failures, whose detail is
// added as message.
func handleServiceError(c *gin.Context, err error, fallback string) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidMode), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrShortLinkNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: errShortCodeNotFound}
	case errors.Is(err, models.ErrCodeGenerationExhausted):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: errGenerationExhausted}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: fallback, Message: err.Error()}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, errResp)
}

// recoverPanic turns a handler panic into a 500 JSON response.
func recoverPanic(c *gin.Context, recovered any) {
	zap.L().Error("Recovered from panic in HTTP handler",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
	)
	msg := "unexpected panic"
	if err, ok := recovered.(error); ok {
		msg = err.Error()
	} else if s, ok := recovered.(string); ok {
		msg = s
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: errInternal, Message: msg})
}
