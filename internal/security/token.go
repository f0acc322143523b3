package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed    = errors.New("access token malformed")
	ErrTokenBadSignature = errors.New("access token signature invalid")
	ErrTokenExpired      = errors.New("access token expired")
)

// Minted tokens carry the bearer scheme tag so clients can echo them back
// verbatim in the Authorization header.
const bearerScheme = "Bearer "

// TokenMinter signs and verifies short-lived access tokens. Validity is
// determined purely by signature and expiry; nothing is persisted.
type TokenMinter struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewTokenMinter(secret string, algorithm string, ttl time.Duration) (*TokenMinter, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenMinter{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// Mint signs a token for the subject with the configured ttl and returns it
// prefixed with the bearer scheme tag.
func (m *TokenMinter) Mint(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return bearerScheme + signed, nil
}

// Verify checks signature and expiry against the wall clock (no leeway) and
// returns the embedded subject. The scheme tag is optional on input.
func (m *TokenMinter) Verify(token string) (string, error) {
	token = strings.TrimPrefix(token, bearerScheme)

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenBadSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// NewRefreshToken returns a fresh opaque refresh token and the hash under
// which it is stored.
func NewRefreshToken() (string, []byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token, HashRefreshToken(token), nil
}

func HashRefreshToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
