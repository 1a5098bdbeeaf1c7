package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleCompliance = "compliance"
	RoleManager    = "manager"
	RoleRecruiter  = "recruiter"
)

// Identity is the decoded caller identity consumed by the service layer.
// Credential verification happens at the middleware boundary; the core
// never sees the raw token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// IsElevated reports whether the identity bypasses ownership checks.
func (i Identity) IsElevated() bool {
	return i.Role == RoleAdmin || i.Role == RoleCompliance
}

// Claims is the expected JWT payload shape.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

// ParseToken verifies an HS256 bearer token and decodes the caller identity.
func ParseToken(secret, tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: userID, Email: claims.Email, Role: claims.Role}, nil
}
