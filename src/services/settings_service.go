package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/database"
	"github.com/opsboard/backoffice/src/models"
)

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

const settingColumns = `id, setting_key, category, display_name, setting_value, data_type,
	input_type, description, options, extra_config, is_encrypted, is_required,
	is_active, sort_order, created_at, updated_at`

// SettingsService owns the settings store: typed configuration values with
// optional at-rest encryption and a transactional change history.
type SettingsService struct {
	pool  *pgxpool.Pool
	codec *SecretCodec
}

// NewSettingsService creates a new settings service
func NewSettingsService(pool *pgxpool.Pool, codec *SecretCodec) *SettingsService {
	return &SettingsService{pool: pool, codec: codec}
}

// scanSetting reads one settings row. Options and extra_config stay raw here;
// decorate finishes the job.
func scanSetting(row pgx.Row) (*models.Setting, *string, *string, error) {
	var s models.Setting
	var options, extraConfig *string
	err := row.Scan(
		&s.ID, &s.Key, &s.Category, &s.DisplayName, &s.Value, &s.DataType,
		&s.InputType, &s.Description, &options, &extraConfig, &s.IsEncrypted,
		&s.IsRequired, &s.IsActive, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return &s, options, extraConfig, nil
}

// decorate decrypts an encrypted value and parses the embedded JSON columns.
// Unparseable JSON is left nil rather than failing the read.
func (ss *SettingsService) decorate(s *models.Setting, options, extraConfig *string) {
	if s.IsEncrypted {
		s.Value = ss.codec.Decrypt(s.Value)
	}
	if options != nil && *options != "" {
		_ = json.Unmarshal([]byte(*options), &s.Options)
	}
	if extraConfig != nil && *extraConfig != "" {
		_ = json.Unmarshal([]byte(*extraConfig), &s.ExtraConfig)
	}
}

// ListSettings returns settings grouped by category, each group ordered by
// sort_order then display name. Inactive settings are excluded unless
// includeInactive is set.
func (ss *SettingsService) ListSettings(ctx context.Context, category, key string, includeInactive bool) (map[string][]*models.Setting, int, error) {
	query := "SELECT " + settingColumns + " FROM settings WHERE 1=1"
	args := []any{}

	if !includeInactive {
		query += " AND is_active = true"
	}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if key != "" {
		args = append(args, key)
		query += fmt.Sprintf(" AND setting_key = $%d", len(args))
	}
	query += " ORDER BY category, sort_order, display_name"

	rows, err := ss.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]*models.Setting)
	count := 0
	for rows.Next() {
		s, options, extraConfig, err := scanSetting(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan setting: %w", err)
		}
		ss.decorate(s, options, extraConfig)
		grouped[s.Category] = append(grouped[s.Category], s)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating settings: %w", err)
	}

	return grouped, count, nil
}

// GetSetting fetches one setting by id.
func (ss *SettingsService) GetSetting(ctx context.Context, id uuid.UUID) (*models.Setting, error) {
	return ss.getOne(ctx, "id = $1", id)
}

// GetSettingByKey fetches one setting by its unique key.
func (ss *SettingsService) GetSettingByKey(ctx context.Context, key string) (*models.Setting, error) {
	return ss.getOne(ctx, "setting_key = $1", key)
}

func (ss *SettingsService) getOne(ctx context.Context, where string, arg any) (*models.Setting, error) {
	row := ss.pool.QueryRow(ctx, "SELECT "+settingColumns+" FROM settings WHERE "+where, arg)
	s, options, extraConfig, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch setting: %w", err)
	}
	ss.decorate(s, options, extraConfig)
	return s, nil
}

// UpdateValue replaces a setting's value by id. The row update and its
// history insert commit together or not at all.
func (ss *SettingsService) UpdateValue(ctx context.Context, id uuid.UUID, value string, changedBy *uuid.UUID, reason string) (*models.Setting, error) {
	return ss.updateValue(ctx, "id = $1", id, value, changedBy, reason)
}

// UpdateValueByKey replaces a setting's value addressed by key.
func (ss *SettingsService) UpdateValueByKey(ctx context.Context, key, value string, changedBy *uuid.UUID, reason string) (*models.Setting, error) {
	return ss.updateValue(ctx, "setting_key = $1", key, value, changedBy, reason)
}

func (ss *SettingsService) updateValue(ctx context.Context, where string, arg any, value string, changedBy *uuid.UUID, reason string) (*models.Setting, error) {
	var updated *models.Setting

	err := database.WithTx(ctx, ss.pool, func(tx pgx.Tx) error {
		var current models.Setting
		err := tx.QueryRow(ctx,
			"SELECT id, setting_key, setting_value, data_type, is_encrypted, is_required FROM settings WHERE "+where+" FOR UPDATE",
			arg,
		).Scan(&current.ID, &current.Key, &current.Value, &current.DataType, &current.IsEncrypted, &current.IsRequired)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to read setting: %w", err)
		}

		if result := ValidateSettingValue(&current, value); !result.Valid {
			return fmt.Errorf("%w: %s", ErrValidation, result.Err)
		}

		stored := value
		if current.IsEncrypted {
			stored = ss.codec.Encrypt(value)
		}

		if err := ss.applyValue(ctx, tx, &current, stored, changedBy, reason); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err = ss.getOne(ctx, where, arg)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyValue performs the paired UPDATE + history INSERT inside tx. History
// records the stored (possibly encrypted) values, not plaintext.
func (ss *SettingsService) applyValue(ctx context.Context, tx pgx.Tx, current *models.Setting, stored string, changedBy *uuid.UUID, reason string) error {
	tag, err := tx.Exec(ctx,
		"UPDATE settings SET setting_value = $1, updated_at = NOW() WHERE id = $2",
		stored, current.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update setting value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO setting_history (setting_id, old_value, new_value, changed_by, change_reason)
		VALUES ($1, $2, $3, $4, $5)
	`, current.ID, current.Value, stored, changedBy, reason)
	if err != nil {
		return fmt.Errorf("failed to record setting history: %w", err)
	}
	return nil
}

// BulkItem is one entry of a bulk value update.
type BulkItem struct {
	Key   string `json:"setting_key"`
	Value string `json:"setting_value"`
}

// BulkError describes why one bulk item was rejected.
type BulkError struct {
	Key   string `json:"setting_key"`
	Error string `json:"error"`
}

// BulkResult itemizes a bulk update. When Errors is non-empty the whole batch
// was rolled back and Updated lists the keys that would have succeeded.
type BulkResult struct {
	Updated []string    `json:"updated"`
	Errors  []BulkError `json:"errors"`
}

// BulkUpdate applies a batch of value updates in one transaction. The batch
// is all-or-nothing: any item failure rolls back every change, while the
// returned result still reports per-item outcomes.
func (ss *SettingsService) BulkUpdate(ctx context.Context, items []BulkItem, changedBy *uuid.UUID, reason string) (*BulkResult, error) {
	result := &BulkResult{Updated: []string{}, Errors: []BulkError{}}

	err := database.WithTx(ctx, ss.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			var current models.Setting
			err := tx.QueryRow(ctx,
				"SELECT id, setting_key, setting_value, data_type, is_encrypted, is_required FROM settings WHERE setting_key = $1 FOR UPDATE",
				item.Key,
			).Scan(&current.ID, &current.Key, &current.Value, &current.DataType, &current.IsEncrypted, &current.IsRequired)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					result.Errors = append(result.Errors, BulkError{Key: item.Key, Error: "setting not found"})
					continue
				}
				return fmt.Errorf("failed to read setting %q: %w", item.Key, err)
			}

			if vr := ValidateSettingValue(&current, item.Value); !vr.Valid {
				result.Errors = append(result.Errors, BulkError{Key: item.Key, Error: vr.Err})
				continue
			}

			stored := item.Value
			if current.IsEncrypted {
				stored = ss.codec.Encrypt(item.Value)
			}
			if err := ss.applyValue(ctx, tx, &current, stored, changedBy, reason); err != nil {
				return err
			}
			result.Updated = append(result.Updated, item.Key)
		}

		if len(result.Errors) > 0 {
			return ErrBulkFailed
		}
		return nil
	})

	if errors.Is(err, ErrBulkFailed) {
		return result, err
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateSettingInput carries the fields accepted on setting creation.
type CreateSettingInput struct {
	Key         string         `json:"setting_key" binding:"required"`
	Category    string         `json:"setting_category" binding:"required"`
	DisplayName string         `json:"setting_name" binding:"required"`
	Value       string         `json:"setting_value"`
	DataType    string         `json:"data_type"`
	InputType   string         `json:"input_type"`
	Description string         `json:"description"`
	Options     []string       `json:"options"`
	ExtraConfig map[string]any `json:"extra_config"`
	IsEncrypted bool           `json:"is_encrypted"`
	IsRequired  bool           `json:"is_required"`
	SortOrder   int            `json:"sort_order"`
}

// CreateSetting inserts a new setting. Duplicate keys are rejected before any
// write; unset typed fields fall back to their documented defaults.
func (ss *SettingsService) CreateSetting(ctx context.Context, input CreateSettingInput) (*models.Setting, error) {
	if !settingKeyPattern.MatchString(input.Key) {
		return nil, fmt.Errorf("%w: setting_key must match [a-z0-9_]+", ErrValidation)
	}
	if input.DataType == "" {
		input.DataType = models.DataTypeString
	}
	if input.InputType == "" {
		input.InputType = "text"
	}

	var exists bool
	if err := ss.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM settings WHERE setting_key = $1)", input.Key).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check setting key: %w", err)
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	def := &models.Setting{Key: input.Key, DataType: input.DataType, IsRequired: input.IsRequired}
	if vr := ValidateSettingValue(def, input.Value); !vr.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, vr.Err)
	}

	stored := input.Value
	if input.IsEncrypted {
		stored = ss.codec.Encrypt(input.Value)
	}

	optionsJSON, err := marshalOrNil(input.Options)
	if err != nil {
		return nil, err
	}
	extraJSON, err := marshalOrNil(input.ExtraConfig)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = ss.pool.QueryRow(ctx, `
		INSERT INTO settings (setting_key, category, display_name, setting_value, data_type,
			input_type, description, options, extra_config, is_encrypted, is_required,
			is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12)
		RETURNING id
	`, input.Key, input.Category, input.DisplayName, stored, input.DataType,
		input.InputType, input.Description, optionsJSON, extraJSON,
		input.IsEncrypted, input.IsRequired, input.SortOrder,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create setting: %w", err)
	}

	return ss.GetSetting(ctx, id)
}

func marshalOrNil(v any) (*string, error) {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return nil, nil
		}
	case map[string]any:
		if t == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	s := string(data)
	return &s, nil
}

// SoftDeleteSetting flips is_active off. The value and history are untouched,
// and repeating the call leaves the row in the same state.
func (ss *SettingsService) SoftDeleteSetting(ctx context.Context, id uuid.UUID) error {
	tag, err := ss.pool.Exec(ctx, "UPDATE settings SET is_active = false, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate setting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetHistory returns a setting's mutation records, newest first, joined with
// the actor's display name.
func (ss *SettingsService) GetHistory(ctx context.Context, settingID uuid.UUID, limit int) ([]*models.SettingHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := ss.pool.Query(ctx, `
		SELECT sh.id, sh.setting_id, sh.old_value, sh.new_value, sh.changed_by,
			COALESCE(au.username, ''), sh.change_reason, sh.created_at
		FROM setting_history sh
		LEFT JOIN admin_users au ON au.id = sh.changed_by
		WHERE sh.setting_id = $1
		ORDER BY sh.created_at DESC
		LIMIT $2
	`, settingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query setting history: %w", err)
	}
	defer rows.Close()

	var history []*models.SettingHistory
	for rows.Next() {
		var h models.SettingHistory
		if err := rows.Scan(&h.ID, &h.SettingID, &h.OldValue, &h.NewValue,
			&h.ChangedBy, &h.ChangedByName, &h.ChangeReason, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
