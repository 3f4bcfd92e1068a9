package services

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testCodec(secret string) *SecretCodec {
	return NewSecretCodec(secret, false, zerolog.Nop())
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	codec := testCodec("unit-test-secret")

	plaintext := `{"smtp_password":"hunter2"}`
	stored := codec.Encrypt(plaintext)

	if stored == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}
	if got := codec.Decrypt(stored); got != plaintext {
		t.Fatalf("decrypted != plaintext: got %q, want %q", got, plaintext)
	}
}

func TestEncrypt_OutputShape(t *testing.T) {
	codec := testCodec("unit-test-secret")

	stored := codec.Encrypt("value")
	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		t.Fatalf("expected 3 colon-separated segments, got %d in %q", len(parts), stored)
	}
	for i, p := range parts {
		if _, err := hex.DecodeString(p); err != nil {
			t.Fatalf("segment %d is not hex: %q", i, p)
		}
	}
	// nonce 12 bytes, tag 16 bytes
	if len(parts[0]) != 24 {
		t.Fatalf("nonce segment length = %d, want 24", len(parts[0]))
	}
	if len(parts[1]) != 32 {
		t.Fatalf("tag segment length = %d, want 32", len(parts[1]))
	}
}

func TestEncryptDecrypt_Empty(t *testing.T) {
	codec := testCodec("unit-test-secret")

	if got := codec.Encrypt(""); got != "" {
		t.Fatalf("Encrypt(\"\") = %q, want \"\"", got)
	}
	if got := codec.Decrypt(""); got != "" {
		t.Fatalf("Decrypt(\"\") = %q, want \"\"", got)
	}
}

func TestDecrypt_PlaintextPassthrough(t *testing.T) {
	codec := testCodec("unit-test-secret")

	// Historical rows that were never encrypted must come back unchanged.
	cases := []string{
		"plain value",
		"no:hex:here",
		"a:b",
		"deadbeef:deadbeef:deadbeef", // wrong nonce/tag lengths
		"smtp.example.com:587",
	}
	for _, in := range cases {
		if got := codec.Decrypt(in); got != in {
			t.Errorf("Decrypt(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestDecrypt_WrongKey_Passthrough(t *testing.T) {
	c1 := testCodec("first-secret")
	c2 := testCodec("second-secret")

	stored := c1.Encrypt("secret data")
	if got := c2.Decrypt(stored); got != stored {
		t.Fatalf("wrong-key decrypt should return stored value unchanged, got %q", got)
	}
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	codec := testCodec("unit-test-secret")

	ct1 := codec.Encrypt("same data")
	ct2 := codec.Encrypt("same data")
	if ct1 == ct2 {
		t.Fatal("two encryptions of same data should produce different ciphertexts")
	}
	if codec.Decrypt(ct1) != codec.Decrypt(ct2) {
		t.Fatal("both ciphertexts should decrypt to the same plaintext")
	}
}

func TestKeyNormalization(t *testing.T) {
	// A short secret and its explicitly zero-padded form must be
	// byte-compatible.
	short := testCodec("abc")
	padded := testCodec("abc" + strings.Repeat("0", 29))

	stored := short.Encrypt("value")
	if got := padded.Decrypt(stored); got != "value" {
		t.Fatalf("padded-key codec should decrypt short-key ciphertext, got %q", got)
	}

	// Overlong secrets are truncated to 32 bytes.
	long := testCodec(strings.Repeat("x", 40))
	trunc := testCodec(strings.Repeat("x", 32))
	if got := trunc.Decrypt(long.Encrypt("value")); got != "value" {
		t.Fatalf("truncated-key codec should decrypt overlong-key ciphertext, got %q", got)
	}
}

func TestSimpleMode_RoundTrip(t *testing.T) {
	codec := NewSecretCodec("ignored", true, zerolog.Nop())

	stored := codec.Encrypt("plain value")
	if stored == "plain value" {
		t.Fatal("simple mode should still transform the value")
	}
	if got := codec.Decrypt(stored); got != "plain value" {
		t.Fatalf("simple round trip failed: got %q", got)
	}
}

func TestSimpleDecode_UndecodableInput(t *testing.T) {
	codec := NewSecretCodec("ignored", true, zerolog.Nop())

	in := "not base64 !!!"
	if got := codec.Decrypt(in); got != in {
		t.Fatalf("undecodable input should pass through, got %q", got)
	}
}
