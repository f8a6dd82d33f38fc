package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return key, pemData
}

func TestGenerateAppJWT(t *testing.T) {
	key, pemData := testKey(t)
	now := time.Now().Truncate(time.Second)

	token, err := GenerateAppJWT(AppConfig{
		AppID:      "12345",
		PrivateKey: pemData,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("GenerateAppJWT() error = %v", err)
	}

	claims, err := ValidateAppJWT(&key.PublicKey, token)
	if err != nil {
		t.Fatalf("ValidateAppJWT() error = %v", err)
	}

	if claims.Issuer != "12345" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "12345")
	}
	if got := claims.IssuedAt.Time; !got.Equal(now.Add(-60 * time.Second)) {
		t.Errorf("IssuedAt = %v, want now-60s", got)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(now.Add(9 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want now+9m", got)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &AppClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if parsed.Method.Alg() != "RS256" {
		t.Errorf("alg = %q, want RS256", parsed.Method.Alg())
	}
}

func TestGenerateAppJWT_UniqueIDs(t *testing.T) {
	key, pemData := testKey(t)
	cfg := AppConfig{AppID: "1", PrivateKey: pemData}

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		token, err := GenerateAppJWT(cfg)
		if err != nil {
			t.Fatalf("GenerateAppJWT: %v", err)
		}
		claims, err := ValidateAppJWT(&key.PublicKey, token)
		if err != nil {
			t.Fatalf("ValidateAppJWT: %v", err)
		}
		if seen[claims.ID] {
			t.Fatalf("duplicate token id %q", claims.ID)
		}
		seen[claims.ID] = true
	}
}

func TestGenerateAppJWT_Errors(t *testing.T) {
	_, pemData := testKey(t)

	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr error
	}{
		{"missing app id", AppConfig{PrivateKey: pemData}, nil},
		{"garbage key", AppConfig{AppID: "1", PrivateKey: []byte("not a key")}, ErrInvalidPrivateKey},
		{"empty key", AppConfig{AppID: "1"}, ErrInvalidPrivateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateAppJWT(tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePrivateKey_EscapedNewlines(t *testing.T) {
	_, pemData := testKey(t)
	oneLine := strings.ReplaceAll(strings.TrimSpace(string(pemData)), "\n", `\n`)

	if _, err := ParsePrivateKey([]byte(oneLine)); err != nil {
		t.Errorf("ParsePrivateKey(single line) error = %v", err)
	}
}

func TestValidateAppJWT(t *testing.T) {
	key, pemData := testKey(t)
	other, _ := testKey(t)

	t.Run("wrong key", func(t *testing.T) {
		token, err := GenerateAppJWT(AppConfig{AppID: "1", PrivateKey: pemData})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ValidateAppJWT(&other.PublicKey, token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateAppJWT(AppConfig{
			AppID:      "1",
			PrivateKey: pemData,
			Now:        func() time.Time { return time.Now().Add(-time.Hour) },
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ValidateAppJWT(&key.PublicKey, token); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("error = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "1"}).
			SignedString([]byte("this-is-a-test-secret-key-32-bytes!"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ValidateAppJWT(&key.PublicKey, token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}
