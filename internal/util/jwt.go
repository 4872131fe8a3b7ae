package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type issued by this service.
const TokenTypeAccess = "access"

// Claims carries the identity in the registered "sub" claim.
type Claims struct {
	Type  string `json:"type"`
	Fresh bool   `json:"fresh"`
	jwt.RegisteredClaims
}

// Identity returns the subject the token was issued for.
func (c *Claims) Identity() string {
	return c.Subject
}

// GenerateToken signs an HS256 token for identity. A ttl of zero or less
// produces a token without an expiry.
func GenerateToken(secret, identity string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}
	now := time.Now()
	claims := &Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenStr and returns its claims. exp and nbf are
// enforced only when present.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != TokenTypeAccess {
		return nil, fmt.Errorf("%w: unexpected token type %q", jwt.ErrTokenInvalidClaims, claims.Type)
	}
	return claims, nil
}
