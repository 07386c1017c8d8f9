package user

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var (
	lockUserSQL   = regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)
	bumpGroupsSQL = regexp.QuoteMeta(`UPDATE groups SET version = version + 1 WHERE id IN (SELECT group_id FROM group_members WHERE user_id = $1)`)
	deleteUserSQL = regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)
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

func TestRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted after locking the user and bumping their groups",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockUserSQL).WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
				mock.ExpectExec(bumpGroupsSQL).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(deleteUserSQL).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "payer of an expense",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockUserSQL).WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
				mock.ExpectExec(bumpGroupsSQL).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(deleteUserSQL).WithArgs(int64(3)).
					WillReturnError(&pq.Error{Code: "23503", Constraint: "expenses_paid_by_fkey"})
				mock.ExpectRollback()
			},
			wantErr: ErrUserHasExpenses,
		},
		{
			name: "unknown user",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockUserSQL).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectBegin()
			tt.expect(mock)

			if err := repo.Delete(context.Background(), 3); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Delete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepository_CreateConflicts(t *testing.T) {
	tests := []struct {
		constraint string
		wantErr    error
	}{
		{"users_username_key", ErrUsernameTaken},
		{"users_email_key", ErrEmailAlreadyInUse},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, email)`)).
				WithArgs("alice", "alice@example.com").
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			if _, err := repo.Create(context.Background(), "alice", "alice@example.com"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
