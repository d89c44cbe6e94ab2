package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	"github.com/SscSPs/reconciliation_engine/internal/models"
	"github.com/SscSPs/reconciliation_engine/internal/utils/mapping"
	"github.com/SscSPs/reconciliation_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, statement_ref, transaction_date, value_date, particulars, transaction_code,
	credit, debit, status, member_id, draft_candidates, match_confidence, is_split, is_archived,
	archive_reason, archived_at, created_at, created_by, last_updated_at, last_updated_by, version`

// querier is satisfied by both the pool and an open pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for statement transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.StatementRef,
		&t.TransactionDate,
		&t.ValueDate,
		&t.Particulars,
		&t.TransactionCode,
		&t.Credit,
		&t.Debit,
		&t.Status,
		&t.MemberID,
		&t.DraftCandidates,
		&t.MatchConfidence,
		&t.IsSplit,
		&t.IsArchived,
		&t.ArchiveReason,
		&t.ArchivedAt,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
		&t.Version,
	)
	return t, err
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var results []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	return mapping.ToDomainTransactionSlice(results)
}

// InsertTransactions persists new statement lines in one database transaction.
func (r *PgxTransactionRepository) InsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	for _, t := range transactions {
		if err := t.ValidateAmounts(); err != nil {
			return fmt.Errorf("transaction %s: %w", t.TransactionID, err)
		}
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	batch := &pgx.Batch{}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	for _, t := range transactions {
		m := mapping.ToModelTransaction(t)
		if m.Version == 0 {
			m.Version = 1
		}
		batch.Queue(query,
			m.TransactionID, m.StatementRef, m.TransactionDate, m.ValueDate, m.Particulars, m.TransactionCode,
			m.Credit, m.Debit, m.Status, m.MemberID, m.DraftCandidates, m.MatchConfidence, m.IsSplit, m.IsArchived,
			m.ArchiveReason, m.ArchivedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert transactions", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) findByID(ctx context.Context, q querier, transactionID string, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanTransaction(q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}
	d, err := mapping.ToDomainTransaction(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "stored transaction is inconsistent", err)
	}
	return &d, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findByID(ctx, r.Pool, transactionID, false)
}

func (r *PgxTransactionRepository) FindTransactionDetail(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, err := r.findByID(ctx, r.Pool, transactionID, false)
	if err != nil {
		return nil, err
	}
	if err := r.loadDetail(ctx, r.Pool, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PgxTransactionRepository) loadDetail(ctx context.Context, q querier, t *domain.Transaction) error {
	allocations, err := r.allocationsFor(ctx, q, []string{t.TransactionID})
	if err != nil {
		return err
	}
	t.Allocations = allocations[t.TransactionID]

	rows, err := q.Query(ctx, `
		SELECT match_log_id, transaction_id, member_id, confidence, reason, source, operator_id, created_at
		FROM match_logs
		WHERE transaction_id = $1
		ORDER BY created_at, match_log_id;
	`, t.TransactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query match logs for "+t.TransactionID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var l models.MatchLog
		if err := rows.Scan(&l.MatchLogID, &l.TransactionID, &l.MemberID, &l.Confidence, &l.Reason, &l.Source, &l.OperatorID, &l.CreatedAt); err != nil {
			return apperrors.NewAppError(500, "failed to scan match log row", err)
		}
		t.MatchLogs = append(t.MatchLogs, mapping.ToDomainMatchLog(l))
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating match log rows", err)
	}
	return nil
}

// allocationsFor loads the current allocations of the given transactions, keyed by transaction id.
func (r *PgxTransactionRepository) allocationsFor(ctx context.Context, q querier, transactionIDs []string) (map[string][]domain.SplitAllocation, error) {
	out := make(map[string][]domain.SplitAllocation, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT allocation_id, transaction_id, transfer_id, member_id, amount, notes, created_at, created_by
		FROM split_allocations
		WHERE transaction_id = ANY($1)
		ORDER BY created_at, allocation_id;
	`, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query split allocations", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a models.SplitAllocation
		if err := rows.Scan(&a.AllocationID, &a.TransactionID, &a.TransferID, &a.MemberID, &a.Amount, &a.Notes, &a.CreatedAt, &a.CreatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan split allocation row", err)
		}
		out[a.TransactionID] = append(out[a.TransactionID], mapping.ToDomainSplitAllocation(a))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating split allocation rows", err)
	}
	return out, nil
}

// ListTransactions retrieves a filtered page of transactions using token-based pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	sortField := filter.SortBy
	if sortField == "" {
		sortField = domain.SortByDate
	}
	sortExpr := "transaction_date"
	if sortField == domain.SortByAmount {
		sortExpr = "(credit + debit)"
	}
	direction, cmp := "ASC", ">"
	if filter.SortDescending {
		direction, cmp = "DESC", "<"
	}

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	switch {
	case filter.Archived != nil:
		where = append(where, "is_archived = "+arg(*filter.Archived))
	case !filter.IncludeArchived:
		where = append(where, "NOT is_archived")
	}
	if filter.Status != nil {
		where = append(where, "status = "+arg(string(*filter.Status)))
	}
	if filter.MemberID != nil {
		where = append(where, "member_id = "+arg(*filter.MemberID))
	}
	if filter.DateFrom != nil {
		where = append(where, "transaction_date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "transaction_date <= "+arg(*filter.DateTo))
	}
	if filter.Search != "" {
		p := arg("%" + escapeLike(filter.Search) + "%")
		where = append(where, "(particulars ILIKE "+p+" OR transaction_code ILIKE "+p+")")
	}

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursor(*nextToken, string(sortField))
		if err != nil {
			return nil, nil, err
		}
		var value any
		if sortField == domain.SortByAmount {
			value, err = cursor.AmountValue()
		} else {
			value, err = cursor.DateValue()
		}
		if err != nil {
			return nil, nil, err
		}
		// Tuple comparison is concise and efficient in Postgres
		where = append(where, fmt.Sprintf("(%s, transaction_id) %s (%s, %s)", sortExpr, cmp, arg(value), arg(cursor.ID)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s, transaction_id %s LIMIT %s;", sortExpr, direction, direction, arg(fetchLimit))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		// The token points to the last item included in this page.
		token := pagination.EncodeCursor(pagination.TransactionCursor(transactions[limit-1], sortField))
		nextTokenVal = &token
	}
	return transactions, nextTokenVal, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PgxTransactionRepository) ListMatchableTransactionIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT transaction_id
		FROM transactions
		WHERE status IN ('unassigned', 'draft') AND NOT is_archived
		ORDER BY ingest_seq;
	`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matchable transactions", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan matchable transaction ids", err)
	}
	return ids, nil
}

// FindFirstWithSignature compares the same fields as domain.Transaction.DuplicateSignature.
func (r *PgxTransactionRepository) FindFirstWithSignature(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_date = $1
		  AND btrim(particulars) = $2
		  AND credit = $3
		  AND debit = $4
		  AND status <> 'duplicate'
		ORDER BY ingest_seq
		LIMIT 1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query,
		t.TransactionDate,
		strings.TrimSpace(t.Particulars),
		t.Credit.Round(2),
		t.Debit.Round(2),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no transaction with signature %s", apperrors.ErrNotFound, t.DuplicateSignature())
		}
		return nil, apperrors.NewAppError(500, "failed to look up duplicate signature", err)
	}
	d, err := mapping.ToDomainTransaction(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "stored transaction is inconsistent", err)
	}
	return &d, nil
}

func (r *PgxTransactionRepository) ListMemberStatement(ctx context.Context, memberID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE NOT t.is_archived
		  AND ((t.member_id = $1 AND NOT t.is_split)
		       OR (t.is_split AND EXISTS (
		           SELECT 1 FROM split_allocations a
		           WHERE a.transaction_id = t.transaction_id AND a.member_id = $1)))
		ORDER BY t.transaction_date, t.transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query statement for member "+memberID, err)
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	var splitIDs []string
	for _, t := range transactions {
		if t.IsSplit {
			splitIDs = append(splitIDs, t.TransactionID)
		}
	}
	allocations, err := r.allocationsFor(ctx, r.Pool, splitIDs)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].Allocations = allocations[transactions[i].TransactionID]
	}
	return transactions, nil
}

// MutateTransaction locks the row with SELECT ... FOR UPDATE, runs fn against the locked state and
// writes the change in the same database transaction.
func (r *PgxTransactionRepository) MutateTransaction(ctx context.Context, transactionID string, fn portsrepo.MutateFunc) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	current, err := r.findByID(ctx, tx, transactionID, true)
	if err != nil {
		if isConcurrencyConflict(err) {
			return nil, apperrors.ErrConcurrentUpdate
		}
		return nil, err
	}
	if err := r.loadDetail(ctx, tx, current); err != nil {
		return nil, err
	}

	change, err := fn(*current)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return current, nil
	}

	next := change.Transaction
	next.TransactionID = transactionID
	m := mapping.ToModelTransaction(next)

	update := `
		UPDATE transactions SET
			status = $2, member_id = $3, draft_candidates = $4, match_confidence = $5,
			is_split = $6, is_archived = $7, archive_reason = $8, archived_at = $9,
			last_updated_at = $10, last_updated_by = $11, version = version + 1
		WHERE transaction_id = $1
		RETURNING version;
	`
	err = tx.QueryRow(ctx, update,
		m.TransactionID, m.Status, m.MemberID, m.DraftCandidates, m.MatchConfidence,
		m.IsSplit, m.IsArchived, m.ArchiveReason, m.ArchivedAt,
		m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&next.Version)
	if err != nil {
		if isConcurrencyConflict(err) {
			return nil, apperrors.ErrConcurrentUpdate
		}
		return nil, apperrors.NewAppError(500, "failed to update transaction "+transactionID, err)
	}

	batch := &pgx.Batch{}
	allocations := current.Allocations
	if change.ReplaceAllocations {
		batch.Queue(`DELETE FROM split_allocations WHERE transaction_id = $1;`, transactionID)
		allocations = nil
	}
	if change.Transfer != nil {
		tr := mapping.ToModelTransferRecord(*change.Transfer)
		batch.Queue(`
			INSERT INTO transaction_transfers (transfer_id, transaction_id, from_member_id, mode, total_amount, notes, previous_status, initiated_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`, tr.TransferID, tr.TransactionID, tr.FromMemberID, tr.Mode, tr.TotalAmount, tr.Notes, tr.PreviousStatus, tr.InitiatedBy, tr.CreatedAt)
	}
	for _, alloc := range change.Allocations {
		a := mapping.ToModelSplitAllocation(alloc)
		batch.Queue(`
			INSERT INTO split_allocations (allocation_id, transaction_id, transfer_id, member_id, amount, notes, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, a.AllocationID, a.TransactionID, a.TransferID, a.MemberID, a.Amount, a.Notes, a.CreatedAt, a.CreatedBy)
		allocations = append(allocations, alloc)
	}
	for _, log := range change.MatchLogs {
		l := mapping.ToModelMatchLog(log)
		batch.Queue(`
			INSERT INTO match_logs (match_log_id, transaction_id, member_id, confidence, reason, source, operator_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, l.MatchLogID, l.TransactionID, l.MemberID, l.Confidence, l.Reason, l.Source, l.OperatorID, l.CreatedAt)
	}

	if batch.Len() > 0 {
		// Important: Close the batch results to check for errors in each command
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, apperrors.NewAppError(500, "failed to write changes for transaction "+transactionID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	next.Allocations = allocations
	next.MatchLogs = append(current.MatchLogs, change.MatchLogs...)
	return &next, nil
}
