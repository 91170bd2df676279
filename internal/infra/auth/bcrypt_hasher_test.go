package auth

import (
	"strings"
	"testing"

	"jobportal/config"
	domainerrors "jobportal/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashRoundTrip(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil)

	for _, password := range []string{"StrongPass123!", "x", "pässwörd ✓", ""} {
		first, err := hasher.Hash(password)
		require.NoError(t, err)
		second, err := hasher.Hash(password)
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "salt must differ per call")
		assert.True(t, hasher.Check(password, first))
		assert.True(t, hasher.Check(password, second))
		assert.True(t, hasher.IsDigest(first))
	}
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost+1, nil)

	hash, err := hasher.Hash("StrongPass123!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil)
	password := "StrongPass123!"

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPassword123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
	assert.False(t, hasher.Check(password, ""))
	// A plaintext value equal to the password is never accepted.
	assert.False(t, hasher.Check(password, password))
}

func TestBcryptHasher_IsDigest(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil)

	hash, err := hasher.Hash("StrongPass123!")
	require.NoError(t, err)

	assert.True(t, hasher.IsDigest(hash))
	assert.False(t, hasher.IsDigest(""))
	assert.False(t, hasher.IsDigest("StrongPass123!"))
	assert.False(t, hasher.IsDigest("$2a$10$short"))
	assert.False(t, hasher.IsDigest("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil)

	for _, password := range []string{"StrongPass123!", "MySecure@Pass1", "Complex#Secret9", "Valid$Phrase2024"} {
		assert.NoError(t, hasher.ValidatePasswordStrength(password), password)
	}

	tests := []struct {
		password string
		message  string
	}{
		{password: "", message: "Password is required"},
		{password: "Ab1!", message: "Password must be at least 8 characters long"},
		{password: "password123!", message: "Password must contain at least one uppercase letter"},
		{password: "PASSWORD123!", message: "Password must contain at least one lowercase letter"},
		{password: "Password!!!", message: "Password must contain at least one digit"},
		{password: "Password123", message: "Password must contain at least one special character"},
		{password: "Aa1!" + strings.Repeat("x", 80), message: "Password must not exceed 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := hasher.ValidatePasswordStrength(tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message())
		})
	}
}

func TestBcryptHasher_StrengthConfigOnlyTightens(t *testing.T) {
	loose := NewBcryptHasherWithCost(bcrypt.MinCost, &config.PasswordStrengthConfig{MinLength: 4, MaxLength: 500})

	err := loose.ValidatePasswordStrength("Ab1!x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
	assert.Error(t, loose.ValidatePasswordStrength("alllowercase1!"), "complexity is mandatory")
	assert.Error(t, loose.ValidatePasswordStrength("Aa1!"+strings.Repeat("x", 69)), "73 bytes exceed bcrypt's limit")

	strict := NewBcryptHasherWithCost(bcrypt.MinCost, &config.PasswordStrengthConfig{MinLength: 12, MaxLength: 16})

	assert.Error(t, strict.ValidatePasswordStrength("Short1!aa"))
	assert.NoError(t, strict.ValidatePasswordStrength("LongEnough1!pw"))
	assert.Error(t, strict.ValidatePasswordStrength("LongEnough1!pw-too-long"))
}

func TestBcryptHasher_AcceptedPasswordsAlwaysHash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil)
	longest := "Aa1!" + strings.Repeat("x", 68)

	require.NoError(t, hasher.ValidatePasswordStrength(longest))
	_, err := hasher.Hash(longest)
	assert.NoError(t, err)
}

func TestBcryptHasher_CompareDummy(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost, nil).(*bcryptHasher)

	hasher.CompareDummy("StrongPass123!")
	require.NotNil(t, hasher.dummyDigest)

	cost, err := bcrypt.Cost(hasher.dummyDigest)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	digest := hasher.dummyDigest
	hasher.CompareDummy("another")
	assert.Equal(t, digest, hasher.dummyDigest, "built once")
}
