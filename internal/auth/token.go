package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed, expired, and badly signed tokens.
	// Callers treat all of these as the same rejection class.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the token payload: the caller-supplied identity label plus the
// registered time-bound claims.
type Claims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HS256-signed bearer tokens that gate
// every document operation. It is stateless; verification has no side effects.
type TokenManager struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewTokenManager creates a token manager for the given signing key.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	return &TokenManager{
		secretKey: []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
	}, nil
}

// Issue mints a token binding the given identity label.
//
// No identity verification happens here: any label yields a valid token.
// This is the existing open-mint contract; a production deployment must put
// real credential verification in front of it.
func (m *TokenManager) Issue(user string) (string, error) {
	now := time.Now()
	claims := &Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   user,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify checks the token's signature, validity window, and signing method.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExtractBearer pulls the raw token out of an Authorization header value.
// Format: Authorization: Bearer <token>
func ExtractBearer(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return authHeader[len(bearerPrefix):], nil
}
