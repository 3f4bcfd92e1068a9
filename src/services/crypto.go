package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const codecKeySize = 32

// SecretCodec is the reversible transform applied to setting values stored
// with is_encrypted. Two modes exist, chosen once at construction:
//
//   - AES-256-GCM, emitting "nonce:tag:ciphertext" as three hex segments
//   - a plain base64 codec for deployments that only need obfuscation
//
// The codec never fails past its boundary: encryption trouble degrades to
// storing the plaintext (logged), and Decrypt returns unrecognizable input
// unchanged so pre-encryption rows keep working.
type SecretCodec struct {
	gcm    cipher.AEAD
	simple bool
	logger zerolog.Logger
}

// NewSecretCodec builds a codec from the configured secret. The secret is
// normalized to exactly 32 bytes by padding with '0' or truncating; this is
// deliberately not a KDF and must stay byte-compatible with existing rows.
func NewSecretCodec(secret string, simple bool, logger zerolog.Logger) *SecretCodec {
	c := &SecretCodec{simple: simple, logger: logger}
	if simple {
		return c
	}

	block, err := aes.NewCipher(normalizeKey(secret))
	if err != nil {
		// Unreachable with a 32-byte key, but degrade rather than panic.
		logger.Error().Err(err).Msg("failed to create AES cipher, codec degraded to pass-through")
		return c
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create GCM, codec degraded to pass-through")
		return c
	}
	c.gcm = gcm
	return c
}

// normalizeKey pads the secret with '0' up to 32 bytes, or truncates it.
func normalizeKey(secret string) []byte {
	key := make([]byte, codecKeySize)
	for i := range key {
		key[i] = '0'
	}
	copy(key, secret)
	return key
}

// Encrypt transforms plaintext into its storable form. Empty input stays
// empty. On any internal failure the plaintext is returned unmodified.
func (c *SecretCodec) Encrypt(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	if c.simple {
		return c.SimpleEncode(plaintext)
	}
	if c.gcm == nil {
		return plaintext
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		c.logger.Error().Err(err).Msg("failed to generate nonce, storing value unencrypted")
		return plaintext
	}

	sealed := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - c.gcm.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext)
}

// Decrypt is the inverse of Encrypt. Values that do not match the expected
// shape are treated as already-plaintext and returned unchanged, as is
// anything that fails authentication.
func (c *SecretCodec) Decrypt(stored string) string {
	if stored == "" {
		return ""
	}
	if c.simple {
		return c.SimpleDecode(stored)
	}
	if c.gcm == nil {
		return stored
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		return stored
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != c.gcm.NonceSize() {
		return stored
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != c.gcm.Overhead() {
		return stored
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return stored
	}

	plaintext, err := c.gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		// Authentication failure — likely a pre-encryption row
		return stored
	}
	return string(plaintext)
}

// SimpleEncode is the non-cryptographic reversible codec.
func (c *SecretCodec) SimpleEncode(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(plaintext))
}

// SimpleDecode inverts SimpleEncode, returning undecodable input unchanged.
func (c *SecretCodec) SimpleDecode(stored string) string {
	if stored == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return stored
	}
	return string(decoded)
}
