package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"jobportal/internal/domain/service"
	"jobportal/internal/errors"
)

// SecretBytes is the entropy of reset and refresh secrets (256 bits).
const SecretBytes = 32

type randomSecrets struct {
	size int
}

// NewSecretGenerator returns a generator backed by crypto/rand.
func NewSecretGenerator() service.SecretGenerator {
	return &randomSecrets{size: SecretBytes}
}

func (g *randomSecrets) NewSecret() (string, error) {
	return GenerateSecret(g.size)
}

func (g *randomSecrets) Fingerprint(secret string) string {
	return HashToken(secret)
}

// GenerateSecret returns n random bytes encoded as unpadded base64url.
func GenerateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 of a high-entropy token. It is used for
// refresh secrets, which are looked up by hash.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
