package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/repository"
)

var _ repository.PaymentRecordRepository = (*paymentRecordRepo)(nil)

type paymentRecordRepo struct{ pool *pgxpool.Pool }

func NewPaymentRecordRepo(pool *pgxpool.Pool) *paymentRecordRepo {
	return &paymentRecordRepo{pool: pool}
}

// Append inserts one immutable history entry. The unique index on payment_id
// turns a duplicate delivery into domain.ErrAlreadyProcessed.
func (r *paymentRecordRepo) Append(ctx context.Context, qx repository.Tx, rec *model.PaymentRecord) error {
	const q = `
INSERT INTO payment_records (
  id, payment_id, order_id, user_id, tier, amount, currency, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	_, err := execSQL(ctx, r.pool, qx, q, rec.ID, rec.PaymentID, rec.OrderID, rec.UserID, rec.Tier, rec.Amount, rec.Currency, rec.Status, rec.CreatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyProcessed
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRecordRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.PaymentRecord, error) {
	const q = `
SELECT id, payment_id, order_id, user_id, tier, amount, currency, status, created_at
  FROM payment_records WHERE payment_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, qx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanRecord(row)
}

func (r *paymentRecordRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	const q = `
SELECT id, payment_id, order_id, user_id, tier, amount, currency, status, created_at
  FROM payment_records
 WHERE user_id=$1
 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, qx, q, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		rec := &model.PaymentRecord{}
		if err := rows.Scan(&rec.ID, &rec.PaymentID, &rec.OrderID, &rec.UserID, &rec.Tier, &rec.Amount, &rec.Currency, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*model.PaymentRecord, error) {
	rec := &model.PaymentRecord{}
	if err := row.Scan(&rec.ID, &rec.PaymentID, &rec.OrderID, &rec.UserID, &rec.Tier, &rec.Amount, &rec.Currency, &rec.Status, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}
