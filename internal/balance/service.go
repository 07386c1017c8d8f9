package balance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/cache"
	"github.com/fkhayef/groupledger/internal/metrics"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Snapshot is a consistent read of one group's ledger
type Snapshot struct {
	GroupID   int64
	Version   int64
	Members   []int64
	Expenses  []Entry
	Usernames map[int64]string
}

// Store reads ledger state for the balance service
type Store interface {
	// Version is a cheap read of the group's ledger version
	Version(ctx context.Context, groupID int64) (int64, error)
	Snapshot(ctx context.Context, groupID int64) (*Snapshot, error)
}

// Result is the computed balance sheet of a group at one ledger version
type Result struct {
	GroupID   int64
	Version   int64
	Balances  map[int64]decimal.Decimal
	Usernames map[int64]string
}

// Service computes balances, memoized per group and ledger version
type Service struct {
	store Store
	cache cache.Cache[*Result]
}

// NewService creates a new balance service
func NewService(store Store, c cache.Cache[*Result]) *Service {
	return &Service{store: store, cache: c}
}

func cacheKey(groupID, version int64) string {
	return strconv.FormatInt(groupID, 10) + ":" + strconv.FormatInt(version, 10)
}

// GroupBalances returns the net balance of every member of the group.
// Every ledger mutation bumps the group's version, so a cached result is
// only ever served for the exact ledger it was computed from.
func (s *Service) GroupBalances(ctx context.Context, groupID int64) (*Result, error) {
	version, err := s.store.Version(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if res, ok := s.cache.Get(cacheKey(groupID, version)); ok {
		metrics.BalanceComputations.WithLabelValues("hit").Inc()
		return res, nil
	}

	snap, err := s.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := Compute(snap.Members, snap.Expenses)
	if err != nil {
		metrics.BalanceComputations.WithLabelValues("error").Inc()
		if errors.Is(err, ErrDivisionUndefined) {
			slog.WarnContext(ctx, "Group has expenses but no members", "group_id", groupID)
		}
		return nil, err
	}
	metrics.BalanceComputations.WithLabelValues("miss").Inc()

	res := &Result{
		GroupID:   groupID,
		Version:   snap.Version,
		Balances:  balances,
		Usernames: snap.Usernames,
	}
	s.cache.Set(cacheKey(groupID, snap.Version), res)

	return res, nil
}

// GroupTransfers returns the balances together with payments that would settle them
func (s *Service) GroupTransfers(ctx context.Context, groupID int64) (*Result, []Transfer, error) {
	res, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return res, SuggestTransfers(res.Balances), nil
}
