package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/opsboard/backoffice/src/models"
)

// ValidationResult reports whether a candidate value may be stored.
type ValidationResult struct {
	Valid bool
	Err   string
}

// ValidateSettingValue decides whether value may be stored for the given
// setting definition. Pure and side-effect-free; callers must check the
// result before persisting.
func ValidateSettingValue(def *models.Setting, value string) ValidationResult {
	if def.IsRequired && strings.TrimSpace(value) == "" {
		return ValidationResult{Err: "field is required"}
	}
	if value == "" {
		return ValidationResult{Valid: true}
	}

	switch def.DataType {
	case models.DataTypeString:
		return ValidationResult{Valid: true}
	case models.DataTypeNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return ValidationResult{Err: "value must be a finite number"}
		}
		return ValidationResult{Valid: true}
	case models.DataTypeBoolean:
		switch value {
		case "true", "false", "0", "1":
			return ValidationResult{Valid: true}
		}
		return ValidationResult{Err: "value must be a boolean"}
	case models.DataTypeJSON:
		if !json.Valid([]byte(value)) {
			return ValidationResult{Err: "value must be valid JSON"}
		}
		return ValidationResult{Valid: true}
	default:
		// Unknown types are accepted permissively
		return ValidationResult{Valid: true}
	}
}
