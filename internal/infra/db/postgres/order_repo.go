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

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

func (r *orderRepo) Save(ctx context.Context, qx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, user_id, tier, amount, currency, key_id, simulated, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET status=$8;`

	_, err := execSQL(ctx, r.pool, qx, q, o.ID, o.UserID, o.Tier, o.Amount, o.Currency, o.KeyID, o.Simulated, o.Status, o.CreatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Order, error) {
	const q = `
SELECT id, user_id, tier, amount, currency, key_id, simulated, status, created_at
  FROM orders WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}

	o := &model.Order{}
	if err := row.Scan(&o.ID, &o.UserID, &o.Tier, &o.Amount, &o.Currency, &o.KeyID, &o.Simulated, &o.Status, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, qx repository.Tx, id string, status model.OrderStatus) error {
	const q = `UPDATE orders SET status=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, qx, q, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
