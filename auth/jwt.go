package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// GitHub rejects app JWTs living longer than ten minutes and tolerates
// issued-at values in the past, so the token is backdated to absorb clock drift.
const (
	DefaultAppJWTTTL = 9 * time.Minute
	DefaultClockSkew = 60 * time.Second
)

// AppConfig holds the GitHub App credentials used to mint JWTs.
type AppConfig struct {
	// AppID is the numeric app id or the client id; it becomes the issuer.
	AppID string

	// PrivateKey is the PEM encoded RSA key downloaded from the app settings.
	PrivateKey []byte

	// TTL is the JWT lifetime. Defaults to DefaultAppJWTTTL if zero.
	TTL time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (c AppConfig) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultAppJWTTTL
	}
	return c.TTL
}

func (c AppConfig) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// AppClaims are the claims of a GitHub App JWT.
type AppClaims struct {
	jwt.RegisteredClaims
}

// ParsePrivateKey decodes a PEM RSA private key. Keys pasted into a single
// line secret with literal "\n" sequences are accepted too.
func ParsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	text := strings.TrimSpace(string(pemData))
	if !strings.Contains(text, "\n") && strings.Contains(text, `\n`) {
		text = strings.ReplaceAll(text, `\n`, "\n")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// GenerateAppJWT signs a RS256 JWT that authenticates as the app itself.
func GenerateAppJWT(cfg AppConfig) (string, error) {
	if cfg.AppID == "" {
		return "", errors.New("GitHub App id is required")
	}

	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return "", err
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := cfg.now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.AppID,
			IssuedAt:  jwt.NewNumericDate(now.Add(-DefaultClockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl())),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(key)
}

// ValidateAppJWT parses tokenString and verifies its RS256 signature
// against publicKey.
func ValidateAppJWT(publicKey *rsa.PublicKey, tokenString string) (*AppClaims, error) {
	claims := &AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
