package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository reads ledger snapshots from Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new balance repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Version returns the group's current ledger version
func (r *Repository) Version(ctx context.Context, groupID int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM groups WHERE id = $1`, groupID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrGroupNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get group version: %w", err)
	}
	return version, nil
}

// Snapshot reads members and the complete expense history of a group as of
// one point in time
func (r *Repository) Snapshot(ctx context.Context, groupID int64) (*Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap := &Snapshot{GroupID: groupID, Usernames: map[int64]string{}}

	err = tx.QueryRowContext(ctx, `SELECT version FROM groups WHERE id = $1`, groupID).Scan(&snap.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group version: %w", err)
	}

	memberRows, err := tx.QueryContext(ctx, `
		SELECT u.id, u.username
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY u.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var (
			id       int64
			username string
		)
		if err := memberRows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		snap.Members = append(snap.Members, id)
		snap.Usernames[id] = username
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	expenseRows, err := tx.QueryContext(ctx, `
		SELECT e.id, e.paid_by, e.amount, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.group_id = $1
		ORDER BY e.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	defer expenseRows.Close()

	for expenseRows.Next() {
		var (
			e        Entry
			username string
		)
		if err := expenseRows.Scan(&e.ID, &e.PaidBy, &e.Amount, &username); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		snap.Expenses = append(snap.Expenses, e)
		snap.Usernames[e.PaidBy] = username
	}
	if err := expenseRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to close snapshot: %w", err)
	}
	return snap, nil
}
