// Package http provides the HTTP plumbing shared by the platform clients:
// token-authenticated transports, a generic page iterator and typed API errors.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/xanzy/go-gitlab"
)

// Standard sentinel errors for platform API calls.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the token lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed or rejected.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError represents an error from a platform API.
type APIError struct {
	// Service is the name of the platform (e.g., "github", "gitlab").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the request ID for debugging (if available).
	RequestID string

	// Err is the client library error this was built from.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the sentinel matching the status code and the original client error.
func (e *APIError) Unwrap() []error {
	var errs []error
	if sentinel := sentinelFor(e.StatusCode); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func sentinelFor(status int) error {
	switch status {
	case 400, 422:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if status >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// RateLimitError represents a rate limit being exceeded.
type RateLimitError struct {
	// Service is the platform that rate limited.
	Service string

	// RetryAfter is how long to wait before retrying.
	RetryAfter time.Duration

	// Limit is the rate limit that was exceeded (if known).
	Limit int

	// Remaining is how many requests remain (usually 0).
	Remaining int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Service)
}

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// Classify converts go-github and go-gitlab errors into *APIError or
// *RateLimitError so callers can match them with errors.Is against the
// sentinels above. Errors from other sources are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{
			Service:    "github",
			RetryAfter: time.Until(rateErr.Rate.Reset.Time).Round(time.Second),
			Limit:      rateErr.Rate.Limit,
			Remaining:  rateErr.Rate.Remaining,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{
			Service:    "github",
			RetryAfter: abuseErr.GetRetryAfter(),
		}
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return fromResponse("github", ghErr.Response, ghErr.Message, err)
	}

	var glErr *gitlab.ErrorResponse
	if errors.As(err, &glErr) {
		return fromResponse("gitlab", glErr.Response, glErr.Message, err)
	}

	return err
}

func fromResponse(service string, resp *http.Response, message string, err error) error {
	apiErr := &APIError{
		Service: service,
		Message: message,
		Err:     err,
	}
	if resp != nil {
		apiErr.StatusCode = resp.StatusCode
		apiErr.RequestID = resp.Header.Get("X-GitHub-Request-Id")
		if apiErr.RequestID == "" {
			apiErr.RequestID = resp.Header.Get("X-Request-Id")
		}
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.Path
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.StatusCode)
	}
	return apiErr
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(Classify(err), ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(Classify(err), ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(Classify(err), ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(Classify(err), ErrRateLimited)
}
