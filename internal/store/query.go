package store

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

const baseNotificationsSelect = `SELECT id, owner_id, rule_id, title, body, category, priority,
	COALESCE(data, '{}'), channels, status, COALESCE(failure_reason, ''),
	version, created_at, updated_at, read_at
FROM notifications`

const countNotificationsSelect = "SELECT COUNT(*) FROM notifications"

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

// notificationsSQL builds the data and count queries for an owner's
// notifications and returns them with their positional parameters.
func notificationsSQL(ownerID string, f domain.NotificationFilter) (dataSQL, countSQL string, args []any) {
	conditions := []string{"owner_id = $1"}
	args = []any{ownerID}
	paramIdx := 2

	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", paramIdx))
		args = append(args, string(f.Status))
		paramIdx++
	}

	if f.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", paramIdx))
		args = append(args, string(f.Category))
	}

	if f.UnreadOnly {
		conditions = append(conditions, "read_at IS NULL")
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d",
		baseNotificationsSelect, whereClause, clampLimit(f.Limit), max(f.Offset, 0),
	)
	countSQL = countNotificationsSelect + whereClause

	return dataSQL, countSQL, args
}
