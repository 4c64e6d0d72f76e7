package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"payswiftly/internal/apiclient"
	"payswiftly/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends a JSON error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(mapErrorToHTTPStatus(err), ErrorResponse{Error: err.Error()})
}

// renderError renders the error page with the appropriate HTTP status code.
func renderError(c *gin.Context, err error, backURL string) {
	_ = c.Error(err)
	c.HTML(mapErrorToHTTPStatus(err), "error.html", gin.H{
		"Title":   "Error",
		"Error":   err.Error(),
		"BackURL": backURL,
	})
}

// mapErrorToHTTPStatus maps service and backend errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var (
		apiErr    *apiclient.APIError
		malformed *apiclient.MalformedResponseError
	)

	switch {
	// Not found errors
	case errors.Is(err, service.ErrFlowNotFound),
		errors.Is(err, service.ErrDriverNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTransactionID),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, service.ErrPaymentAlreadySubmitted):
		return http.StatusConflict

	// Backend rejected the request: pass its client errors through
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway

	// Backend unreachable or answering garbage
	case errors.Is(err, apiclient.ErrNetwork),
		errors.As(err, &malformed):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
