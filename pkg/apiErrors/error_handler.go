// Package apiErrors defines the standardized error envelope returned by the API
package apiErrors

import (
	"encoding/json"
	"net/http"
)

const (
	// Authentication errors (AUTH_*)
	ErrInvalidToken       = "AUTH_001" // Dashboard token invalid
	ErrExpiredToken       = "AUTH_002" // Dashboard token expired
	ErrUpstreamAuth       = "AUTH_003" // Google Ads rejected the access token and refresh failed
	ErrMissingAccessToken = "AUTH_004" // No Google Ads access token supplied

	// Validation errors (VAL_*)
	ErrInvalidRequest      = "VAL_001" // Malformed request body
	ErrMissingRequiredData = "VAL_002" // Required fields missing
	ErrUnknownReport       = "VAL_003" // Unknown report key

	// Rate limiting (RATE_*)
	ErrLimitReached = "RATE_001" // Monthly report generation limit reached

	// Server errors (SRV_*)
	ErrInternalServer  = "SRV_001" // Internal server error
	ErrExternalService = "SRV_002" // Upstream Ads API failure
	ErrAggregateFailed = "SRV_003" // One or more report blocks failed
	ErrSummarizer      = "SRV_004" // Summarization call failed or timed out
)

var httpStatusMap = map[string]int{
	ErrInvalidToken:        http.StatusUnauthorized,
	ErrExpiredToken:        http.StatusUnauthorized,
	ErrUpstreamAuth:        http.StatusUnauthorized,
	ErrMissingAccessToken:  http.StatusBadRequest,
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrUnknownReport:       http.StatusNotFound,
	ErrLimitReached:        http.StatusTooManyRequests,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrExternalService:     http.StatusBadGateway,
	ErrAggregateFailed:     http.StatusBadGateway,
	ErrSummarizer:          http.StatusGatewayTimeout,
}

// APIError is the standardized error payload
type APIError struct {
	Code    string `json:"code"`              // Machine-readable error code
	Message string `json:"message,omitempty"` // Human-readable description
	Details any    `json:"details,omitempty"` // Structured details (e.g. limit metadata)
}

// WriteError writes the standardized error to the HTTP response
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// FromError wraps a Go error into an APIError with the given code
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "unknown error",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
