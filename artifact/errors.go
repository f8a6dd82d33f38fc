package artifact

import "errors"

// Sentinel errors for artifact operations.
var (
	// ErrInvalidURL indicates a string is not an artifact download link.
	ErrInvalidURL = errors.New("invalid artifact URL")

	// ErrDeleteFailed indicates at least one artifact could not be deleted.
	ErrDeleteFailed = errors.New("artifact deletion failed")
)
