package expense

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	bumpGroupSQL  = regexp.QuoteMeta(`UPDATE groups SET version = version + 1 WHERE id = $1 RETURNING id`)
	loadRosterSQL = regexp.QuoteMeta(`SELECT user_id FROM group_members WHERE group_id = $1`)
	expenseCols   = []string{"id", "group_id", "description", "amount", "paid_by", "created_at", "name", "username"}
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewRepository(db), mock
}

func expectLockedRoster(mock sqlmock.Sqlmock, groupID int64, members ...int64) {
	mock.ExpectQuery(bumpGroupSQL).WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(groupID))
	rows := sqlmock.NewRows([]string{"user_id"})
	for _, id := range members {
		rows.AddRow(id)
	}
	mock.ExpectQuery(loadRosterSQL).WithArgs(groupID).WillReturnRows(rows)
}

func TestRepository_CreateRejectedRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewService(repo)

	mock.ExpectBegin()
	expectLockedRoster(mock, 1, alice, bob)
	// The version bump is undone and nothing is inserted
	mock.ExpectRollback()

	_, err := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
		GroupID:     ptr(1),
		Description: "Dinner",
		Amount:      dec("50"),
		PaidBy:      ptr(carol),
	})

	if got := kinds(err); len(got) != 1 || got[0] != KindNotAMember {
		t.Fatalf("RecordExpense() error = %v, want NOT_A_MEMBER", err)
	}
}

func TestRepository_CreateUnknownGroup(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(bumpGroupSQL).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 9, func(*Roster) (*Expense, error) {
		t.Fatal("build called for a missing group")
		return nil, nil
	})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Create() error = %v, want ErrGroupNotFound", err)
	}
}

func TestRepository_CreateCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewService(repo)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectLockedRoster(mock, 1, alice, bob)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO expenses (group_id, description, amount, paid_by)`)).
		WithArgs(int64(1), "Dinner", sqlmock.AnyArg(), bob).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE e.id = $1`)).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(int64(7), int64(1), "Dinner", "50.00", bob, created, "Trip", "bob"))
	mock.ExpectCommit()

	e, err := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
		GroupID:     ptr(1),
		Description: "  Dinner ",
		Amount:      dec("50"),
		PaidBy:      ptr(bob),
	})
	if err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}
	if e.ID != 7 || e.PaidByUsername != "bob" || !e.Amount.Equal(dec("50")) {
		t.Errorf("RecordExpense() = %+v", e)
	}
}

func TestRepository_UpdateByOutsiderRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewService(repo)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT group_id FROM expenses WHERE id = $1`)).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(int64(1)))
	mock.ExpectQuery(bumpGroupSQL).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE OF e`)).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(int64(7), int64(1), "Dinner", "50.00", alice, created, "Trip", "alice"))
	mock.ExpectQuery(loadRosterSQL).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(alice).AddRow(bob))
	mock.ExpectRollback()

	desc := "Lunch"
	_, err := svc.UpdateExpense(context.Background(), 7, carol, &UpdateExpenseRequest{Description: &desc})
	if !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("UpdateExpense() error = %v, want ErrNotGroupMember", err)
	}
}

func TestRepository_DeleteMissingExpense(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT group_id FROM expenses WHERE id = $1`)).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"group_id"}))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 99, func(*Expense, *Roster) error { return nil })
	if !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("Delete() error = %v, want ErrExpenseNotFound", err)
	}
}
