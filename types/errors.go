package types

import (
	"errors"
	"net/http"
)

// X402Error is the error type returned across package boundaries
type X402Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *X402Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidRequest      = "INVALID_REQUEST"
	ErrPaymentRequired     = "PAYMENT_REQUIRED"
	ErrPaymentRejected     = "PAYMENT_REJECTED"
	ErrUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrUpstreamFailure     = "UPSTREAM_FAILURE"
	ErrUnknownOperation    = "UNKNOWN_OPERATION"
	ErrNetworkError        = "NETWORK_ERROR"
	ErrConfigError         = "CONFIG_ERROR"
)

// ErrorCode extracts the X402Error code from err, or "" when err is not one.
func ErrorCode(err error) string {
	var xe *X402Error
	if errors.As(err, &xe) {
		return xe.Code
	}
	return ""
}

// HTTPStatus maps an error code to the status code clients see.
func HTTPStatus(code string) int {
	switch code {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrPaymentRequired, ErrPaymentRejected:
		return http.StatusPaymentRequired
	case ErrUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
