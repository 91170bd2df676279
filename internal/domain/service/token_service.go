package service

import (
	"time"

	"jobportal/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the custom claims for access tokens.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token and its expiry.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenService mints and validates access tokens.
type TokenService interface {
	// Issue signs a fresh access token for the account.
	Issue(account *entity.Account) (*IssuedToken, error)

	// Validate checks signature, issuer, audience and expiry with no leeway.
	Validate(tokenString string) (*Claims, error)
}
