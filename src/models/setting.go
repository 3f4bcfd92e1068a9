package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is a named, typed configuration value. The stored value is
// ciphertext when IsEncrypted is set; services decrypt before returning it.
type Setting struct {
	ID          uuid.UUID      `json:"id"`
	Key         string         `json:"setting_key"`
	Category    string         `json:"setting_category"`
	DisplayName string         `json:"setting_name"`
	Value       string         `json:"setting_value"`
	DataType    string         `json:"data_type"`
	InputType   string         `json:"input_type"`
	Description string         `json:"description,omitempty"`
	Options     []string       `json:"options,omitempty"`
	ExtraConfig map[string]any `json:"extra_config,omitempty"`
	IsEncrypted bool           `json:"is_encrypted"`
	IsRequired  bool           `json:"is_required"`
	IsActive    bool           `json:"is_active"`
	SortOrder   int            `json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SettingHistory records one committed value mutation. Old/new values mirror
// the setting's storage form (ciphertext stays ciphertext).
type SettingHistory struct {
	ID           uuid.UUID  `json:"id"`
	SettingID    uuid.UUID  `json:"setting_id"`
	OldValue     string     `json:"old_value"`
	NewValue     string     `json:"new_value"`
	ChangedBy    *uuid.UUID `json:"changed_by,omitempty"`
	ChangedByName string    `json:"changed_by_name,omitempty"`
	ChangeReason string     `json:"change_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
