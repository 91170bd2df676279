// Package response writes the JSON envelopes shared by every API endpoint.
package response

import (
	"net/http"

	deliverycontext "jobportal/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Additional error context (only for 4xx errors)

	// RequiresPasswordReset tells the client to send the user to the forgot-password flow.
	RequiresPasswordReset bool `json:"requiresPasswordReset,omitempty"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"` // Request tracking ID
}

// MessageData is the payload of endpoints that only report an outcome.
type MessageData struct {
	Message string `json:"message"`
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Data: data,
		Meta: &MetaInfo{
			RequestID: deliverycontext.RequestID(c),
		},
	})
}

// Message returns a 200 response carrying only a message.
func Message(c echo.Context, message string) error {
	return Success(c, http.StatusOK, MessageData{Message: message})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	// Details should not be included for 5xx errors or authentication/authorization errors
	if statusCode >= 500 || statusCode == 401 || statusCode == 403 {
		details = nil
	}

	return ErrorWithInfo(c, statusCode, &ErrorInfo{
		Code:    errorCode,
		Message: message,
		Details: details,
	})
}

// ErrorWithInfo writes info as is. Callers decide which details are safe to expose.
func ErrorWithInfo(c echo.Context, statusCode int, info *ErrorInfo) error {
	return c.JSON(statusCode, ErrorResponse{
		Error: info,
		Meta: &MetaInfo{
			RequestID: deliverycontext.RequestID(c),
		},
	})
}
