package repository

import (
	"context"

	"membership-payments/internal/domain/model"
)

// MembershipRepository stores the single live membership row per user.
type MembershipRepository interface {
	Save(ctx context.Context, qx Tx, m *model.Membership) error
	FindByUser(ctx context.Context, qx Tx, userID string) (*model.Membership, error)
}
