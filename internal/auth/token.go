// Package auth issues and verifies the bearer tokens that guard the admin
// endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the service recognises.
const RoleAdmin = "admin"

// ErrInvalidToken is returned for malformed, unsigned, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrForbidden is returned when a valid token lacks the admin role.
var ErrForbidden = errors.New("admin role required")

// Claims are the verified contents of an admin token.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// IssueToken creates a signed HS256 admin token for subject.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": RoleAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies raw against secret and requires the admin role.
func ParseToken(secret, raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	out := &Claims{}
	out.Subject, _ = claims["sub"].(string)
	out.Role, _ = claims["role"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if out.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return out, nil
}
