package errors

import (
	"errors"
	"fmt"
	"strings"

	cihttp "github.com/randalmurphal/nativeci/http"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion for rejected tokens.
	AuthErrorMessage(service string) (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage(service string) (message, suggestion string)

	// RateLimitMessage returns the message and suggestion for throttled requests.
	RateLimitMessage(service string) (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)
}

// DefaultMessenger provides messages phrased for workflow authors.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage(service string) (string, string) {
	return fmt.Sprintf("The %s token was rejected.", service),
		"Pass a valid token through the github-token input or configure GitHub App credentials."
}

func (m DefaultMessenger) PermissionDeniedMessage(service string) (string, string) {
	return fmt.Sprintf("The %s token is not allowed to perform this request.", service),
		"Grant the workflow job the permissions it needs, e.g.\n  permissions:\n    actions: read\n    pull-requests: write"
}

func (m DefaultMessenger) RateLimitMessage(service string) (string, string) {
	return fmt.Sprintf("The %s API rate limit was exceeded.", service),
		"Re-run the job after the limit resets."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s", serverURL),
		"Check the runner's network access and the API URL."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The API may be degraded. Re-run the job in a moment."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAPIError classifies a platform client error and, for authentication,
// permission and rate limit failures, attaches guidance. The original error
// stays in Details and remains reachable through errors.As.
func WrapAPIError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	classified := cihttp.Classify(err)
	messenger := getMessenger(opts)
	service := serviceOf(classified)

	var msg, suggestion string
	var sentinel error
	switch {
	case errors.Is(classified, cihttp.ErrUnauthorized):
		msg, suggestion = messenger.AuthErrorMessage(service)
		sentinel = ErrNotAuthenticated
	case errors.Is(classified, cihttp.ErrRateLimited):
		msg, suggestion = messenger.RateLimitMessage(service)
		sentinel = ErrRateLimited
	case errors.Is(classified, cihttp.ErrForbidden):
		msg, suggestion = messenger.PermissionDeniedMessage(service)
		sentinel = ErrPermissionDenied
	default:
		return err
	}

	return &CLIError{
		Err:        errors.Join(sentinel, err),
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

func serviceOf(err error) string {
	var apiErr *cihttp.APIError
	if errors.As(err, &apiErr) && apiErr.Service != "" {
		return apiErr.Service
	}
	var limitErr *cihttp.RateLimitError
	if errors.As(err, &limitErr) && limitErr.Service != "" {
		return limitErr.Service
	}
	return "API"
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        errors.Join(ErrConnectionFailed, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{
			Err:        errors.Join(ErrConnectionFailed, err),
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapClientError applies WrapAPIError and, when the error is not an API
// response, WrapConnectionError against serverURL.
func WrapClientError(err error, serverURL string, opts ...Option) error {
	wrapped := WrapAPIError(err, opts...)
	if _, ok := wrapped.(*CLIError); ok {
		return wrapped
	}
	return WrapConnectionError(err, serverURL, opts...)
}
