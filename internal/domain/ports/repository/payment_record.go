package repository

import (
	"context"

	"membership-payments/internal/domain/model"
)

// PaymentRecordRepository is the append-only payment history.
// Append must fail with domain.ErrAlreadyProcessed when a record with the
// same PaymentID already exists; that collision is the idempotency guard.
type PaymentRecordRepository interface {
	Append(ctx context.Context, qx Tx, rec *model.PaymentRecord) error
	FindByPaymentID(ctx context.Context, qx Tx, paymentID string) (*model.PaymentRecord, error)
	ListByUser(ctx context.Context, qx Tx, userID string) ([]*model.PaymentRecord, error)
}
