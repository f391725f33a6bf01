package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/repository"
)

var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct{ pool *pgxpool.Pool }

func NewMembershipRepo(pool *pgxpool.Pool) *membershipRepo {
	return &membershipRepo{pool: pool}
}

func (r *membershipRepo) Save(ctx context.Context, qx repository.Tx, m *model.Membership) error {
	const q = `
INSERT INTO memberships (user_id, is_member, tier, expires_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id) DO UPDATE SET
  is_member=$2, tier=$3, expires_at=$4, updated_at=$5;`

	_, err := execSQL(ctx, r.pool, qx, q, m.UserID, m.IsMember, m.Tier, m.ExpiresAt, m.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *membershipRepo) FindByUser(ctx context.Context, qx repository.Tx, userID string) (*model.Membership, error) {
	const q = `
SELECT user_id, is_member, tier, expires_at, updated_at
  FROM memberships WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, userID)
	if err != nil {
		return nil, err
	}

	m := &model.Membership{}
	if err := row.Scan(&m.UserID, &m.IsMember, &m.Tier, &m.ExpiresAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
