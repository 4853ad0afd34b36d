package db

import (
	"fmt"
	"strings"
)

// UpsertSQL builds an INSERT ... ON CONFLICT DO UPDATE statement with
// numbered placeholders. Columns that are not conflict keys are overwritten
// with the incoming values (last write wins).
func UpsertSQL(table string, columns, conflictKeys []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	conflictSet := make(map[string]bool, len(conflictKeys))
	for _, k := range conflictKeys {
		conflictSet[k] = true
	}
	var sets []string
	for _, c := range columns {
		if !conflictSet[c] {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictKeys, ", "),
		action,
	)
}
