package service

// SecretGenerator produces opaque high-entropy secrets for reset links and
// refresh tokens.
type SecretGenerator interface {
	// NewSecret returns a random URL-safe secret.
	NewSecret() (string, error)

	// Fingerprint returns a deterministic lookup hash of a secret.
	Fingerprint(secret string) string
}
