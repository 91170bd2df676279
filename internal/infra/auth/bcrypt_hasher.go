// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobportal/config"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost     int
	strength config.PasswordStrengthConfig

	dummyOnce   sync.Once
	dummyDigest []byte
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost, cfg.PasswordStrength)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost, mostly for tests.
func NewBcryptHasherWithCost(cost int, strength *config.PasswordStrengthConfig) service.PasswordHasher {
	h := &bcryptHasher{cost: cost}
	if strength != nil {
		h.strength = *strength
	}
	h.strength.Normalize()

	return h
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	if hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDummy runs one comparison at the configured cost against a digest no
// password matches, and discards the result.
func (h *bcryptHasher) CompareDummy(password string) {
	h.dummyOnce.Do(func() {
		digest, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), h.cost)
		if err == nil {
			h.dummyDigest = digest
		}
	})
	if h.dummyDigest == nil {
		return
	}

	_ = bcrypt.CompareHashAndPassword(h.dummyDigest, []byte(password))
}

// IsDigest accepts only well-formed bcrypt hashes ($2a$, $2b$, $2y$ with a valid cost).
func (h *bcryptHasher) IsDigest(value string) bool {
	if len(value) < 4 || value[0] != '$' || value[1] != '2' {
		return false
	}
	_, err := bcrypt.Cost([]byte(value))

	return err == nil
}

func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if password == "" {
		return domainerrors.ErrPasswordStrength.WithMessage("Password is required")
	}

	if utf8.RuneCountInString(password) < h.strength.MinLength {
		return domainerrors.ErrPasswordStrength.WithMessage(
			fmt.Sprintf("Password must be at least %d characters long", h.strength.MinLength))
	}

	// bcrypt refuses input past 72 bytes.
	if len(password) > h.strength.MaxLength {
		return domainerrors.ErrPasswordStrength.WithMessage(
			fmt.Sprintf("Password must not exceed %d bytes", h.strength.MaxLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return domainerrors.ErrPasswordStrength.WithMessage("Password must contain at least one uppercase letter")
	case !hasLower:
		return domainerrors.ErrPasswordStrength.WithMessage("Password must contain at least one lowercase letter")
	case !hasDigit:
		return domainerrors.ErrPasswordStrength.WithMessage("Password must contain at least one digit")
	case !hasSpecial:
		return domainerrors.ErrPasswordStrength.WithMessage("Password must contain at least one special character")
	}

	return nil
}
