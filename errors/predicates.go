package errors

import (
	"errors"
	"strings"

	cihttp "github.com/randalmurphal/nativeci/http"
)

// IsInputError checks if an error comes from step input validation.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrInvalidInput)
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotAuthenticated) || cihttp.IsUnauthorized(err)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPermissionDenied) || cihttp.IsForbidden(err)
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		return true
	}
	if strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		return true
	}
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsRateLimited checks if the platform API throttled the request.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) || cihttp.IsRateLimited(err)
}

// Kind names the failure class of err for logs: "input", "auth",
// "permission", "rate-limit", "connection" or "" when unclassified.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInputError(err):
		return "input"
	case IsAuthError(err):
		return "auth"
	case IsRateLimited(err):
		return "rate-limit"
	case IsPermissionError(err):
		return "permission"
	case IsConnectionError(err):
		return "connection"
	}
	return ""
}
