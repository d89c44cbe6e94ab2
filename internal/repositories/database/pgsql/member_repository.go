package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	"github.com/SscSPs/reconciliation_engine/internal/models"
	"github.com/SscSPs/reconciliation_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `member_id, name, phone, member_code, member_number, is_active, has_contact_channel,
	created_at, created_by, last_updated_at, last_updated_by, version`

type PgxMemberRepository struct {
	BaseRepository
}

func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberRepositoryFacade {
	return &PgxMemberRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxMemberRepository implements portsrepo.MemberRepositoryFacade
var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.MemberID,
		&m.Name,
		&m.Phone,
		&m.MemberCode,
		&m.MemberNumber,
		&m.IsActive,
		&m.HasContactChannel,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveMember inserts or replaces a member. Used for seeding.
func (r *PgxMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	m := mapping.ToModelMember(member)
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (member_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			member_code = EXCLUDED.member_code,
			member_number = EXCLUDED.member_number,
			is_active = EXCLUDED.is_active,
			has_contact_channel = EXCLUDED.has_contact_channel,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by,
			version = members.version + 1;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.MemberID, m.Name, m.Phone, m.MemberCode, m.MemberNumber, m.IsActive, m.HasContactChannel,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save member "+member.MemberID, err)
	}
	return nil
}

func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1;`
	m, err := scanMember(r.Pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
		}
		return nil, apperrors.NewAppError(500, "failed to find member "+memberID, err)
	}
	d := mapping.ToDomainMember(m)
	return &d, nil
}

func (r *PgxMemberRepository) FindMembersByIDs(ctx context.Context, memberIDs []string) (map[string]domain.Member, error) {
	out := make(map[string]domain.Member, len(memberIDs))
	if len(memberIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, memberIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members by ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan member row", err)
		}
		out[m.MemberID] = mapping.ToDomainMember(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating member rows", err)
	}
	return out, nil
}

func (r *PgxMemberRepository) ListActiveMembers(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE is_active ORDER BY member_id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query active members", err)
	}
	defer rows.Close()

	members := make([]domain.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan member row", err)
		}
		members = append(members, mapping.ToDomainMember(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating member rows", err)
	}
	return members, nil
}
