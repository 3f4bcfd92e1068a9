package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func uniqueKey(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func TestCreateSetting_DuplicateKey(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	key := uniqueKey("dup")
	input := CreateSettingInput{Key: key, Category: "general", DisplayName: "Dup Test"}

	if _, err := ss.CreateSetting(ctx, input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := ss.CreateSetting(ctx, input)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCreateSetting_InvalidKey(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ss := NewSettingsService(pool, testCodec("test-secret"))

	for _, key := range []string{"Bad-Key", "has space", "UPPER", ""} {
		_, err := ss.CreateSetting(context.Background(), CreateSettingInput{
			Key: key, Category: "general", DisplayName: "Bad",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("key %q: expected ErrValidation, got %v", key, err)
		}
	}
}

func TestUpdateValue_WritesHistoryAtomically(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	key := uniqueKey("hist")
	created, err := ss.CreateSetting(ctx, CreateSettingInput{
		Key: key, Category: "general", DisplayName: "History Test", Value: "before",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := ss.UpdateValueByKey(ctx, key, "after", nil, "unit test")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Value != "after" {
		t.Fatalf("value = %q, want %q", updated.Value, "after")
	}

	history, err := ss.GetHistory(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	if history[0].OldValue != "before" || history[0].NewValue != "after" {
		t.Fatalf("history row = %q -> %q, want before -> after", history[0].OldValue, history[0].NewValue)
	}
	if history[0].ChangeReason != "unit test" {
		t.Fatalf("change_reason = %q", history[0].ChangeReason)
	}
}

func TestUpdateValue_ValidationFailureLeavesRowUntouched(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	key := uniqueKey("num")
	created, err := ss.CreateSetting(ctx, CreateSettingInput{
		Key: key, Category: "limits", DisplayName: "Numeric Test",
		Value: "10", DataType: "number",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = ss.UpdateValueByKey(ctx, key, "not-a-number", nil, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	// Neither the value nor the history may have changed
	after, err := ss.GetSettingByKey(ctx, key)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if after.Value != "10" {
		t.Fatalf("value changed to %q after failed update", after.Value)
	}
	history, _ := ss.GetHistory(ctx, created.ID, 10)
	if len(history) != 0 {
		t.Fatalf("expected no history rows, got %d", len(history))
	}
}

func TestUpdateValue_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ss := NewSettingsService(pool, testCodec("test-secret"))

	_, err := ss.UpdateValue(context.Background(), uuid.New(), "x", nil, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEncryptedSetting_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	key := uniqueKey("enc")
	created, err := ss.CreateSetting(ctx, CreateSettingInput{
		Key: key, Category: "integrations", DisplayName: "Encrypted Test",
		Value: "super-secret", IsEncrypted: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Reads go through the codec transparently
	if created.Value != "super-secret" {
		t.Fatalf("decrypted value = %q", created.Value)
	}

	// The stored column must not hold the plaintext
	var raw string
	if err := pool.QueryRow(ctx, "SELECT setting_value FROM settings WHERE id = $1", created.ID).Scan(&raw); err != nil {
		t.Fatalf("raw fetch failed: %v", err)
	}
	if raw == "super-secret" {
		t.Fatal("encrypted setting stored in plaintext")
	}
	if len(strings.Split(raw, ":")) != 3 {
		t.Fatalf("stored value %q is not in nonce:tag:ciphertext form", raw)
	}
}

func TestBulkUpdate_AllOrNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	keys := make([]string, 3)
	for i := range keys {
		keys[i] = uniqueKey(fmt.Sprintf("bulk%d", i))
		if _, err := ss.CreateSetting(ctx, CreateSettingInput{
			Key: keys[i], Category: "bulk", DisplayName: "Bulk Test",
			Value: "old", DataType: "string",
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	numKey := uniqueKey("bulknum")
	if _, err := ss.CreateSetting(ctx, CreateSettingInput{
		Key: numKey, Category: "bulk", DisplayName: "Bulk Number",
		Value: "1", DataType: "number",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := ss.BulkUpdate(ctx, []BulkItem{
		{Key: keys[0], Value: "new"},
		{Key: keys[1], Value: "new"},
		{Key: numKey, Value: "not-a-number"}, // poison item
		{Key: keys[2], Value: "new"},
	}, nil, "bulk test")

	if !errors.Is(err, ErrBulkFailed) {
		t.Fatalf("expected ErrBulkFailed, got %v", err)
	}
	if result == nil {
		t.Fatal("expected itemized result alongside the error")
	}
	if len(result.Errors) != 1 || result.Errors[0].Key != numKey {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if len(result.Updated) != 3 {
		t.Fatalf("expected 3 would-have-succeeded keys, got %d", len(result.Updated))
	}

	// Every row must still hold its old value
	for _, key := range keys {
		s, err := ss.GetSettingByKey(ctx, key)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if s.Value != "old" {
			t.Fatalf("key %s: value = %q after rolled-back bulk update", key, s.Value)
		}
	}
}

func TestBulkUpdate_Success(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	k1, k2 := uniqueKey("ok1"), uniqueKey("ok2")
	for _, k := range []string{k1, k2} {
		if _, err := ss.CreateSetting(ctx, CreateSettingInput{
			Key: k, Category: "bulk", DisplayName: "Bulk OK", Value: "old",
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	result, err := ss.BulkUpdate(ctx, []BulkItem{
		{Key: k1, Value: "new"},
		{Key: k2, Value: "new"},
	}, nil, "")
	if err != nil {
		t.Fatalf("bulk update failed: %v", err)
	}
	if len(result.Updated) != 2 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}

	for _, k := range []string{k1, k2} {
		s, _ := ss.GetSettingByKey(ctx, k)
		if s.Value != "new" {
			t.Fatalf("key %s: value = %q, want new", k, s.Value)
		}
	}
}

func TestSoftDeleteSetting(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ss := NewSettingsService(pool, testCodec("test-secret"))

	key := uniqueKey("del")
	created, err := ss.CreateSetting(ctx, CreateSettingInput{
		Key: key, Category: "general", DisplayName: "Delete Test",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := ss.SoftDeleteSetting(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Row still exists but is inactive
	s, err := ss.GetSetting(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if s.IsActive {
		t.Fatal("setting still active after soft delete")
	}

	// Repeating the call is harmless
	if err := ss.SoftDeleteSetting(ctx, created.ID); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}
