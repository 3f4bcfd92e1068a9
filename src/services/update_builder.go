package services

import (
	"fmt"
	"sort"
)

// buildUpdate assembles a parameterized UPDATE statement from an allow-list
// of column names. Fields outside the allow-list are rejected outright, never
// interpolated. The id lands in the last placeholder; updated_at is always
// touched.
func buildUpdate(table string, allowed map[string]bool, fields map[string]any, id any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !allowed[col] {
			return "", nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	query := "UPDATE " + table + " SET "
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, fields[col])
	}
	query += fmt.Sprintf(", updated_at = NOW() WHERE id = $%d", len(columns)+1)
	args = append(args, id)

	return query, args, nil
}
