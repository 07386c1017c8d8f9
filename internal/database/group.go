package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// BumpGroupVersion increments the group's ledger version, which also takes
// the group's row lock until tx ends. Every writer to a group's expenses or
// membership calls it first. It reports false when the group does not exist.
func BumpGroupVersion(ctx context.Context, tx *sql.Tx, groupID int64) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`UPDATE groups SET version = version + 1 WHERE id = $1 RETURNING id`, groupID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock group: %w", err)
	}
	return true, nil
}
