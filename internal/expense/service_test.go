package expense

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store
type memStore struct {
	mu       sync.Mutex
	groups   map[int64][]int64
	expenses map[int64]*Expense
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		groups:   map[int64][]int64{},
		expenses: map[int64]*Expense{},
	}
}

func (s *memStore) Create(ctx context.Context, groupID int64, build func(*Roster) (*Expense, error)) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	e, err := build(NewRoster(groupID, members))
	if err != nil {
		return nil, err
	}
	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(s.nextID), 0, time.UTC)
	stored := *e
	s.expenses[e.ID] = &stored
	return e, nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, nil
	}
	out := *e
	return &out, nil
}

func (s *memStore) List(ctx context.Context, f ListFilter) ([]*Expense, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*Expense
	for _, e := range s.expenses {
		if f.GroupID != nil && e.GroupID != *f.GroupID {
			continue
		}
		if f.PaidBy != nil && e.PaidBy != *f.PaidBy {
			continue
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	end := min(f.Offset+f.Limit, len(all))
	if f.Offset >= len(all) {
		return []*Expense{}, len(all), nil
	}
	return all[f.Offset:end], len(all), nil
}

func (s *memStore) Update(ctx context.Context, id int64, apply func(*Expense, *Roster) (*Expense, error)) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.expenses[id]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	next, err := apply(cur, NewRoster(cur.GroupID, s.groups[cur.GroupID]))
	if err != nil {
		return nil, err
	}
	s.expenses[id] = next
	return next, nil
}

func (s *memStore) Delete(ctx context.Context, id int64, authorize func(*Expense, *Roster) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.expenses[id]
	if !ok {
		return ErrExpenseNotFound
	}
	if err := authorize(cur, NewRoster(cur.GroupID, s.groups[cur.GroupID])); err != nil {
		return err
	}
	delete(s.expenses, id)
	return nil
}

type recordingListener struct {
	got     []*Expense
	members [][]int64
	err     error
}

func (l *recordingListener) ExpenseRecorded(ctx context.Context, e *Expense, members []int64) error {
	l.got = append(l.got, e)
	l.members = append(l.members, members)
	return l.err
}

func setup(t *testing.T, listeners ...Listener) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	store.groups[1] = []int64{alice, bob}
	store.groups[2] = []int64{carol}
	return NewService(store, listeners...), store
}

func TestService_RecordExpense(t *testing.T) {
	ok := &recordingListener{}
	failing := &recordingListener{err: errors.New("broker down")}
	svc, store := setup(t, failing, ok)

	groupID := int64(1)
	e, err := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
		GroupID:     &groupID,
		Description: " Dinner ",
		Amount:      dec("50"),
	})
	if err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}
	if e.ID == 0 || e.PaidBy != alice || e.Description != "Dinner" {
		t.Errorf("RecordExpense() = %+v", e)
	}
	if len(store.expenses) != 1 {
		t.Errorf("stored %d expenses, want 1", len(store.expenses))
	}

	if len(ok.got) != 1 || ok.got[0].ID != e.ID {
		t.Fatalf("listener saw %v, want expense %d", ok.got, e.ID)
	}
	if got := ok.members[0]; len(got) != 2 || got[0] != alice || got[1] != bob {
		t.Errorf("listener members = %v, want [alice bob]", got)
	}
}

func TestService_RecordExpenseRejected(t *testing.T) {
	l := &recordingListener{}
	svc, store := setup(t, l)

	g1, g2, missing := int64(1), int64(2), int64(99)

	tests := []struct {
		name    string
		req     *CreateExpenseRequest
		want    Kind
		wantErr error
	}{
		{
			name: "payer outside group",
			req:  &CreateExpenseRequest{GroupID: &g2, Description: "Snacks", Amount: dec("5")},
			want: KindNotAMember,
		},
		{
			name: "no group",
			req:  &CreateExpenseRequest{Description: "Snacks", Amount: dec("5")},
			want: KindRequired,
		},
		{
			name: "over ceiling",
			req:  &CreateExpenseRequest{GroupID: &g1, Description: "Car", Amount: dec("10000.01")},
			want: KindAmountTooHigh,
		},
		{
			name:    "unknown group",
			req:     &CreateExpenseRequest{GroupID: &missing, Description: "Snacks", Amount: dec("5")},
			wantErr: ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordExpense(context.Background(), alice, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.Has(tt.want) {
				t.Fatalf("error = %v, want %s", err, tt.want)
			}
		})
	}

	if len(store.expenses) != 0 {
		t.Errorf("rejected requests stored %d expenses", len(store.expenses))
	}
	if len(l.got) != 0 {
		t.Errorf("listener notified %d times for rejected requests", len(l.got))
	}
}

func TestService_UpdateExpense(t *testing.T) {
	svc, _ := setup(t)
	groupID := int64(1)
	e, err := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
		GroupID: &groupID, Description: "Taxi", Amount: dec("20"),
	})
	if err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}

	amount := dec("25.50")
	updated, err := svc.UpdateExpense(context.Background(), e.ID, bob, &UpdateExpenseRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if !updated.Amount.Equal(amount) || updated.PaidBy != alice || updated.Description != "Taxi" {
		t.Errorf("UpdateExpense() = %+v", updated)
	}
	if !updated.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", e.CreatedAt, updated.CreatedAt)
	}

	outsider := carol
	if _, err := svc.UpdateExpense(context.Background(), e.ID, alice, &UpdateExpenseRequest{PaidBy: &outsider}); err == nil {
		t.Error("moving the payer outside the group succeeded")
	} else if verr := (*ValidationError)(nil); !errors.As(err, &verr) || !verr.Has(KindNotAMember) {
		t.Errorf("error = %v, want NOT_A_MEMBER", err)
	}

	desc := "Cab ride"
	if _, err := svc.UpdateExpense(context.Background(), e.ID, carol, &UpdateExpenseRequest{Description: &desc}); !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("non-member update error = %v, want ErrNotGroupMember", err)
	}

	if _, err := svc.UpdateExpense(context.Background(), 404, alice, &UpdateExpenseRequest{}); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("missing expense error = %v, want ErrExpenseNotFound", err)
	}
}

func TestService_DeleteExpense(t *testing.T) {
	svc, store := setup(t)
	groupID := int64(1)
	e, _ := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
		GroupID: &groupID, Description: "Taxi", Amount: dec("20"),
	})

	if err := svc.DeleteExpense(context.Background(), e.ID, carol); !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("non-member delete error = %v, want ErrNotGroupMember", err)
	}
	if err := svc.DeleteExpense(context.Background(), e.ID, bob); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if len(store.expenses) != 0 {
		t.Error("expense still stored after delete")
	}
	if _, err := svc.GetExpenseByID(context.Background(), e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("GetExpenseByID() error = %v, want ErrExpenseNotFound", err)
	}
}

func TestService_ListExpensesPaging(t *testing.T) {
	svc, _ := setup(t)
	groupID := int64(1)
	for _, payer := range []int64{alice, bob, alice} {
		p := payer
		if _, err := svc.RecordExpense(context.Background(), alice, &CreateExpenseRequest{
			GroupID: &groupID, PaidBy: &p, Description: "Coffee", Amount: dec("3"),
		}); err != nil {
			t.Fatalf("RecordExpense() error = %v", err)
		}
	}

	page, total, err := svc.ListExpenses(context.Background(), &groupID, nil, 1, 2)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].ID != 3 {
		t.Errorf("page 1 = %d items (first %d), total %d", len(page), page[0].ID, total)
	}

	payer := alice
	mine, total, _ := svc.ListExpenses(context.Background(), nil, &payer, 0, 0)
	if total != 2 || len(mine) != 2 {
		t.Errorf("paid_by filter returned %d of %d", len(mine), total)
	}
}
