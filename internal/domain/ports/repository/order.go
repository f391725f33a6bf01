package repository

import (
	"context"

	"membership-payments/internal/domain/model"
)

// OrderRepository stores short-lived payment intents.
type OrderRepository interface {
	Save(ctx context.Context, qx Tx, o *model.Order) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, qx Tx, id string, status model.OrderStatus) error
}
