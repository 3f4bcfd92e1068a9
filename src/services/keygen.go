package services

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	apiKeyLength        = 24
	webhookSecretLength = 32

	// maskPlaceholder is returned for input that cannot be masked safely.
	maskPlaceholder = "***"
)

// RandomString returns a cryptographically random alphanumeric string of
// length n.
func RandomString(n int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = charset[buf[i]%byte(len(charset))]
	}
	return string(buf), nil
}

// GenerateAPIKey returns "{prefix}_{random24}".
func GenerateAPIKey(prefix string) (string, error) {
	random, err := RandomString(apiKeyLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + random, nil
}

// GenerateWebhookSecret returns "whsec_{random32}".
func GenerateWebhookSecret() (string, error) {
	random, err := RandomString(webhookSecretLength)
	if err != nil {
		return "", err
	}
	return "whsec_" + random, nil
}

// MaskSecret renders a secret for display. A prefixed secret "P_REST" becomes
// "P_...<last 6 of REST>" (or "P_..." when REST is 6 chars or fewer); a bare
// secret shows its first 6 characters followed by "...". At most
// prefix + "_..." + 6 trailing characters are ever revealed.
func MaskSecret(secret string) string {
	if secret == "" {
		return maskPlaceholder
	}

	if idx := strings.Index(secret, "_"); idx > 0 {
		prefix, rest := secret[:idx], secret[idx+1:]
		if len(rest) > 6 {
			return prefix + "_..." + rest[len(rest)-6:]
		}
		return prefix + "_..."
	}

	if len(secret) <= 6 {
		return maskPlaceholder
	}
	return secret[:6] + "..."
}
