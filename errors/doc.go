// Package errors provides the error taxonomy shared by every step.
//
// Input validation:
//   - InputError: a single missing or invalid step input
//   - Missing: joins one InputError per missing field so all are reported
//   - Invalid: an InputError for an unusable value
//
// API failures:
//   - WrapAPIError: classifies go-github / go-gitlab errors and attaches
//     guidance for rejected tokens, missing permissions and rate limits
//   - WrapConnectionError: guidance for unreachable APIs and timeouts
//   - WrapClientError: both of the above, for errors from an API client
//   - Kind: a short failure class for logs
//
// Example usage:
//
//	if err := errors.Missing("github-token", "title"); err != nil {
//	    return err // "missing required input: github-token\nmissing required input: title"
//	}
//
//	artifacts, err := lister.List(ctx, repo, name)
//	if err != nil {
//	    return errors.WrapAPIError(err)
//	}
//
//	if errors.IsPermissionError(err) {
//	    // token lacks actions: read
//	}
package errors
