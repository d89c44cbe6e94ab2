// Package seed loads members and statement lines from a YAML fixture and feeds them to the
// repositories. It backs the seed command and local runs on the memory store.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Actor is recorded as the creator of seeded rows.
const Actor = "seed"

type memberEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Phone        string `yaml:"phone"`
	MemberCode   string `yaml:"member_code"`
	MemberNumber string `yaml:"member_number"`
	Inactive     bool   `yaml:"inactive"`
}

type transactionEntry struct {
	ID           string `yaml:"id"`
	StatementRef string `yaml:"statement_ref"`
	Date         string `yaml:"date"`
	ValueDate    string `yaml:"value_date"`
	Particulars  string `yaml:"particulars"`
	Code         string `yaml:"code"`
	Credit       string `yaml:"credit"`
	Debit        string `yaml:"debit"`
}

// File is the fixture layout.
type File struct {
	Members      []memberEntry      `yaml:"members"`
	Transactions []transactionEntry `yaml:"transactions"`
}

// Data is a parsed fixture ready to be stored.
type Data struct {
	Members      []domain.Member
	Transactions []domain.Transaction
}

// LoadFile reads and parses a fixture from disk.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw, time.Now().UTC())
}

// Parse decodes a YAML fixture. Every transaction starts unassigned.
func Parse(raw []byte, now time.Time) (*Data, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: decode seed yaml: %v", apperrors.ErrValidation, err)
	}

	audit := domain.AuditFields{CreatedAt: now, CreatedBy: Actor, LastUpdatedAt: now, LastUpdatedBy: Actor}
	data := &Data{}
	for i, m := range f.Members {
		if m.ID == "" || m.Name == "" {
			return nil, fmt.Errorf("%w: member %d needs id and name", apperrors.ErrValidation, i)
		}
		data.Members = append(data.Members, domain.Member{
			MemberID:          m.ID,
			Name:              m.Name,
			Phone:             m.Phone,
			MemberCode:        m.MemberCode,
			MemberNumber:      m.MemberNumber,
			IsActive:          !m.Inactive,
			HasContactChannel: m.Phone != "",
			AuditFields:       audit,
		})
	}

	for i, t := range f.Transactions {
		tx, err := t.toDomain(audit)
		if err != nil {
			return nil, fmt.Errorf("transaction %d (%s): %w", i, t.ID, err)
		}
		data.Transactions = append(data.Transactions, tx)
	}
	return data, nil
}

func (t transactionEntry) toDomain(audit domain.AuditFields) (domain.Transaction, error) {
	if t.ID == "" {
		return domain.Transaction{}, fmt.Errorf("%w: id is required", apperrors.ErrValidation)
	}
	date, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: date %q", apperrors.ErrValidation, t.Date)
	}
	tx := domain.Transaction{
		TransactionID:   t.ID,
		StatementRef:    t.StatementRef,
		TransactionDate: date,
		Particulars:     t.Particulars,
		TransactionCode: t.Code,
		Credit:          decimal.Zero,
		Debit:           decimal.Zero,
		Assignment:      domain.Unassigned(),
		MatchConfidence: decimal.Zero,
		AuditFields:     audit,
	}
	if t.ValueDate != "" {
		vd, err := time.Parse("2006-01-02", t.ValueDate)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: value_date %q", apperrors.ErrValidation, t.ValueDate)
		}
		tx.ValueDate = &vd
	}
	if t.Credit != "" {
		if tx.Credit, err = decimal.NewFromString(t.Credit); err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: credit %q", apperrors.ErrValidation, t.Credit)
		}
	}
	if t.Debit != "" {
		if tx.Debit, err = decimal.NewFromString(t.Debit); err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: debit %q", apperrors.ErrValidation, t.Debit)
		}
	}
	if err := tx.ValidateAmounts(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Apply stores the members first, then ingests the transactions in one call.
func Apply(ctx context.Context, data *Data, members portsrepo.MemberWriter, ingestor portsrepo.TransactionIngestor) error {
	for _, m := range data.Members {
		if err := members.SaveMember(ctx, m); err != nil {
			return fmt.Errorf("save member %s: %w", m.MemberID, err)
		}
	}
	if len(data.Transactions) == 0 {
		return nil
	}
	if err := ingestor.InsertTransactions(ctx, data.Transactions); err != nil {
		return fmt.Errorf("ingest transactions: %w", err)
	}
	return nil
}
