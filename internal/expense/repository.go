package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fkhayef/groupledger/internal/database"
)

// Repository handles expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectExpense = `
	SELECT e.id, e.group_id, e.description, e.amount, e.paid_by, e.created_at, g.name, u.username
	FROM expenses e
	JOIN groups g ON e.group_id = g.id
	JOIN users u ON e.paid_by = u.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Amount,
		&e.PaidBy,
		&e.CreatedAt,
		&e.GroupName,
		&e.PaidByUsername,
	)
	return e, err
}

// lockGroup maps a missing group onto ErrGroupNotFound
func lockGroup(ctx context.Context, tx *sql.Tx, groupID int64) error {
	ok, err := database.BumpGroupVersion(ctx, tx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupNotFound
	}
	return nil
}

func loadRoster(ctx context.Context, tx *sql.Tx, groupID int64) (*Roster, error) {
	rows, err := tx.QueryContext(ctx, `SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	return NewRoster(groupID, ids), nil
}

// Create inserts an expense built from the group's locked roster
func (r *Repository) Create(ctx context.Context, groupID int64, build func(*Roster) (*Expense, error)) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockGroup(ctx, tx, groupID); err != nil {
		return nil, err
	}

	roster, err := loadRoster(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	e, err := build(roster)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO expenses (group_id, description, amount, paid_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := tx.QueryRowContext(ctx, query, e.GroupID, e.Description, e.Amount, e.PaidBy).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	stored, err := scanExpense(tx.QueryRowContext(ctx, selectExpense+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to read created expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return stored, nil
}

// GetByID retrieves an expense by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, selectExpense+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// List retrieves a filtered page of expenses and the total matching count
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*Expense, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conds = append(conds, fmt.Sprintf("e.group_id = $%d", len(args)))
	}
	if filter.PaidBy != nil {
		args = append(args, *filter.PaidBy)
		conds = append(conds, fmt.Sprintf("e.paid_by = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := selectExpense + where +
		fmt.Sprintf(" ORDER BY e.created_at DESC, e.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}

	return expenses, total, nil
}

// lockExpense locks the expense's group and then the expense itself.
// The group id of an expense never changes, so reading it unlocked first is safe.
func (r *Repository) lockExpense(ctx context.Context, tx *sql.Tx, id int64) (*Expense, *Roster, error) {
	var groupID int64
	err := tx.QueryRowContext(ctx, `SELECT group_id FROM expenses WHERE id = $1`, id).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := lockGroup(ctx, tx, groupID); err != nil {
		return nil, nil, err
	}

	current, err := scanExpense(tx.QueryRowContext(ctx, selectExpense+` WHERE e.id = $1 FOR UPDATE OF e`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock expense: %w", err)
	}

	roster, err := loadRoster(ctx, tx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return current, roster, nil
}

// Update rewrites an expense with the result of apply
func (r *Repository) Update(ctx context.Context, id int64, apply func(current *Expense, roster *Roster) (*Expense, error)) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, roster, err := r.lockExpense(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	next, err := apply(current, roster)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, paid_by = $4
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, id, next.Description, next.Amount, next.PaidBy); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	stored, err := scanExpense(tx.QueryRowContext(ctx, selectExpense+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to read updated expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return stored, nil
}

// Delete removes an expense once authorize allows it
func (r *Repository) Delete(ctx context.Context, id int64, authorize func(current *Expense, roster *Roster) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, roster, err := r.lockExpense(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := authorize(current, roster); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
