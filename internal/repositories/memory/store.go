// Package memory provides in-process repositories for local runs and tests.
// Data is lost on restart; use the pgsql repositories for persistence.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	"github.com/SscSPs/reconciliation_engine/internal/utils/pagination"
)

type transactionRecord struct {
	tx          domain.Transaction
	seq         int64
	allocations []domain.SplitAllocation
	transfers   []domain.TransferRecord
	logs        []domain.MatchLog
}

// Store keeps transactions and members in maps. Writes to one transaction are serialized
// by a per-transaction lock held for the whole read-validate-write cycle.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]*transactionRecord
	members      map[string]domain.Member
	seq          int64

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*transactionRecord),
		members:      make(map[string]domain.Member),
		locks:        make(map[string]*sync.Mutex),
	}
}

var (
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.MemberRepositoryFacade      = (*Store)(nil)
)

// NewRepositoryProvider exposes the store through the repository ports.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: store,
		MemberRepo:      store,
	}
}

func (s *Store) lockFor(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// --- Members ---

func (s *Store) SaveMember(ctx context.Context, member domain.Member) error {
	if member.MemberID == "" {
		return fmt.Errorf("%w: member id is required", apperrors.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.MemberID] = member
	return nil
}

func (s *Store) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
	}
	return &m, nil
}

func (s *Store) FindMembersByIDs(ctx context.Context, memberIDs []string) (map[string]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Member, len(memberIDs))
	for _, id := range memberIDs {
		if m, ok := s.members[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (s *Store) ListActiveMembers(ctx context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Member, 0, len(s.members))
	for _, m := range s.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.Member) int { return strings.Compare(a.MemberID, b.MemberID) })
	return out, nil
}

// --- Transactions ---

func (s *Store) InsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(transactions))
	for _, t := range transactions {
		if t.TransactionID == "" {
			return fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
		}
		if err := t.ValidateAmounts(); err != nil {
			return fmt.Errorf("transaction %s: %w", t.TransactionID, err)
		}
		if _, exists := s.transactions[t.TransactionID]; exists || seen[t.TransactionID] {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, t.TransactionID)
		}
		seen[t.TransactionID] = true
	}

	for _, t := range transactions {
		s.seq++
		t.Allocations = nil
		t.MatchLogs = nil
		if t.Version == 0 {
			t.Version = 1
		}
		s.transactions[t.TransactionID] = &transactionRecord{tx: t, seq: s.seq}
	}
	return nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	t := rec.tx
	return &t, nil
}

func (s *Store) FindTransactionDetail(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	t := rec.detail()
	return &t, nil
}

func (r *transactionRecord) detail() domain.Transaction {
	t := r.tx
	t.Allocations = slices.Clone(r.allocations)
	t.MatchLogs = slices.Clone(r.logs)
	return t
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	sortField := filter.SortBy
	if sortField == "" {
		sortField = domain.SortByDate
	}

	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken, string(sortField))
		if err != nil {
			return nil, nil, err
		}
		cursor = &c
	}

	s.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, rec := range s.transactions {
		if filter.Matches(rec.tx) {
			matched = append(matched, rec.tx)
		}
	}
	s.mu.RUnlock()

	order := func(a, b domain.Transaction) int {
		c := compareTransactions(a, b, sortField)
		if filter.SortDescending {
			return -c
		}
		return c
	}
	slices.SortFunc(matched, order)

	start := 0
	if cursor != nil {
		start = len(matched)
		for i, t := range matched {
			c, err := compareToCursor(t, *cursor, sortField)
			if err != nil {
				return nil, nil, err
			}
			if filter.SortDescending {
				c = -c
			}
			if c > 0 {
				start = i
				break
			}
		}
	}

	page := matched[start:]
	var next *string
	if len(page) > limit {
		page = page[:limit]
		token := pagination.EncodeCursor(pagination.TransactionCursor(page[len(page)-1], sortField))
		next = &token
	}
	return slices.Clone(page), next, nil
}

func compareTransactions(a, b domain.Transaction, sortField domain.TransactionSortField) int {
	var c int
	if sortField == domain.SortByAmount {
		c = a.Amount().Cmp(b.Amount())
	} else {
		c = a.TransactionDate.Compare(b.TransactionDate)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.TransactionID, b.TransactionID)
}

func compareToCursor(t domain.Transaction, cursor pagination.Cursor, sortField domain.TransactionSortField) (int, error) {
	var c int
	if sortField == domain.SortByAmount {
		v, err := cursor.AmountValue()
		if err != nil {
			return 0, err
		}
		c = t.Amount().Cmp(v)
	} else {
		v, err := cursor.DateValue()
		if err != nil {
			return 0, err
		}
		c = t.TransactionDate.Compare(v)
	}
	if c != 0 {
		return c, nil
	}
	return strings.Compare(t.TransactionID, cursor.ID), nil
}

func (s *Store) ListMatchableTransactionIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	recs := make([]*transactionRecord, 0)
	for _, rec := range s.transactions {
		if rec.tx.IsMatchable() {
			recs = append(recs, rec)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(recs, func(a, b *transactionRecord) int { return int(a.seq - b.seq) })
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.tx.TransactionID)
	}
	return ids, nil
}

func (s *Store) FindFirstWithSignature(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	signature := tx.DuplicateSignature()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var first *transactionRecord
	for _, rec := range s.transactions {
		if rec.tx.Status() == domain.StatusDuplicate || rec.tx.DuplicateSignature() != signature {
			continue
		}
		if first == nil || rec.seq < first.seq {
			first = rec
		}
	}
	if first == nil {
		return nil, fmt.Errorf("%w: no transaction with signature %s", apperrors.ErrNotFound, signature)
	}
	t := first.tx
	return &t, nil
}

func (s *Store) ListMemberStatement(ctx context.Context, memberID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	out := make([]domain.Transaction, 0)
	for _, rec := range s.transactions {
		if rec.tx.IsArchived {
			continue
		}
		owner, owned := rec.tx.MemberID()
		holdsShare := rec.tx.IsSplit && slices.ContainsFunc(rec.allocations, func(a domain.SplitAllocation) bool {
			return a.MemberID == memberID
		})
		if (owned && owner == memberID && !rec.tx.IsSplit) || holdsShare {
			out = append(out, rec.detail())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Transaction) int { return compareTransactions(a, b, domain.SortByDate) })
	return out, nil
}

// MutateTransaction holds the transaction's lock while fn runs, so concurrent writers
// observe each other's committed state.
func (s *Store) MutateTransaction(ctx context.Context, transactionID string, fn portsrepo.MutateFunc) (*domain.Transaction, error) {
	l := s.lockFor(transactionID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	rec, ok := s.transactions[transactionID]
	var current domain.Transaction
	if ok {
		current = rec.detail()
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}

	change, err := fn(current)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return &current, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := change.Transaction
	next.TransactionID = transactionID
	next.Version = current.Version + 1
	next.Allocations = nil
	next.MatchLogs = nil
	rec.tx = next

	if change.ReplaceAllocations {
		rec.allocations = nil
	}
	if change.Transfer != nil {
		rec.transfers = append(rec.transfers, *change.Transfer)
	}
	rec.allocations = append(rec.allocations, change.Allocations...)
	rec.logs = append(rec.logs, change.MatchLogs...)

	committed := rec.detail()
	return &committed, nil
}

// Transfers returns the transfer history of a transaction, oldest first.
func (s *Store) Transfers(transactionID string) []domain.TransferRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.transactions[transactionID]; ok {
		return slices.Clone(rec.transfers)
	}
	return nil
}
