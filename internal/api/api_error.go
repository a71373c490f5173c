package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/izikbr/calorific2-app/internal/nutrition"
	"github.com/izikbr/calorific2-app/internal/service"
)

var errConfirmationRequired = errors.New("confirmation required")

// APIError pairs an error with the status and machine-readable kind the
// client sees.
type APIError struct {
	error
	status int
	kind   string
}

func (e *APIError) Unwrap() error {
	return e.error
}

func (e *APIError) HTTPStatus() int {
	return e.status
}

func (e *APIError) Kind() string {
	return e.kind
}

func newAPIError(err error, status int, kind string) *APIError {
	return &APIError{error: err, status: status, kind: kind}
}

// toAPIError keeps an existing APIError and maps service sentinels otherwise.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, nutrition.ErrInvalidProfile):
		return newAPIError(err, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, service.ErrNotFound):
		return newAPIError(err, http.StatusNotFound, "not_found")
	case errors.Is(err, errConfirmationRequired):
		return newAPIError(err, http.StatusConflict, "confirmation_required")
	case errors.Is(err, service.ErrEstimateUnavailable):
		return newAPIError(err, http.StatusBadGateway, "estimate_unavailable")
	default:
		return newAPIError(err, http.StatusInternalServerError, "internal")
	}
}

// badRequest marks binding and query errors as invalid input.
func badRequest(err error) error {
	return newAPIError(err, http.StatusBadRequest, "invalid_input")
}

func errorBody(c *gin.Context, kind, msg string) gin.H {
	return gin.H{
		"status":     "error",
		"error":      kind,
		"message":    msg,
		"request_id": c.GetString(requestIDKey),
	}
}
