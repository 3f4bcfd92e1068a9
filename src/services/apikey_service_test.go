package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateKey_PlaintextShownOnce(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	aks := NewAPIKeyService(pool)

	created, err := aks.GenerateKey(ctx, GenerateKeyInput{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(created.RawKey, "sk_") {
		t.Fatalf("raw key = %q, want sk_ prefix", created.RawKey)
	}

	// Any subsequent read must be masked
	fetched, err := aks.GetKey(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if fetched.RawKey != "" {
		t.Fatal("fetched key leaked plaintext")
	}
	if fetched.DisplayKey == created.RawKey {
		t.Fatal("display key equals plaintext")
	}
	if !strings.HasPrefix(fetched.DisplayKey, "sk_...") {
		t.Fatalf("display key = %q, want masked form", fetched.DisplayKey)
	}
}

func TestGenerateKey_CustomPrefix(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	aks := NewAPIKeyService(pool)
	created, err := aks.GenerateKey(context.Background(), GenerateKeyInput{
		KeyName: "analytics", Prefix: "rpt",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(created.RawKey, "rpt_") {
		t.Fatalf("raw key = %q, want rpt_ prefix", created.RawKey)
	}
}

func TestRotateKey(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	aks := NewAPIKeyService(pool)

	created, err := aks.GenerateKey(ctx, GenerateKeyInput{KeyName: "rotate-me"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	rotated, err := aks.RotateKey(ctx, created.ID)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if rotated.RawKey == "" {
		t.Fatal("rotation did not return a new plaintext key")
	}
	if rotated.RawKey == created.RawKey {
		t.Fatal("rotation returned the old key")
	}

	// The stored key must now be the new one
	var stored string
	if err := pool.QueryRow(ctx, "SELECT api_key FROM api_keys WHERE id = $1", created.ID).Scan(&stored); err != nil {
		t.Fatalf("raw fetch failed: %v", err)
	}
	if stored == created.RawKey {
		t.Fatal("old key still stored after rotation")
	}
	if stored != rotated.RawKey {
		t.Fatal("stored key does not match rotated key")
	}
}

func TestRevokeKey_Terminal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	aks := NewAPIKeyService(pool)

	created, err := aks.GenerateKey(ctx, GenerateKeyInput{KeyName: "revoke-me"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if err := aks.RevokeKey(ctx, created.ID, "compromised"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	fetched, err := aks.GetKey(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if fetched.IsActive {
		t.Fatal("key still active after revocation")
	}
	if fetched.RevokeReason == nil || *fetched.RevokeReason != "compromised" {
		t.Fatalf("revoke reason = %v", fetched.RevokeReason)
	}

	// Revoked keys cannot be rotated back to life
	if _, err := aks.RotateKey(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound rotating revoked key, got %v", err)
	}
}
