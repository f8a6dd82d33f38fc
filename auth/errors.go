package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidPrivateKey indicates the app private key is not an RSA PEM key.
	ErrInvalidPrivateKey = errors.New("invalid GitHub App private key")

	// ErrNoInstallation indicates the app is not installed on the repository.
	ErrNoInstallation = errors.New("GitHub App is not installed on the repository")

	// ErrNoAppSlug indicates GitHub returned the app without a slug.
	ErrNoAppSlug = errors.New("GitHub App has no slug")
)
