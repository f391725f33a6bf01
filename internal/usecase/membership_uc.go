package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"membership-payments/internal/config"
	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/repository"
)

var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipStatus is the read view served to the client.
type MembershipStatus struct {
	IsActive      bool
	Tier          model.Tier
	ExpiresAt     time.Time
	DaysRemaining int
}

type MembershipUseCase interface {
	// Apply grants a verified payment: sets the tier and new expiry and is
	// the only code path allowed to mutate a Membership. Runs inside the
	// verifier's transaction via qx.
	Apply(ctx context.Context, qx repository.Tx, cp model.ConfirmedPayment) (*model.Membership, error)
	Status(ctx context.Context, userID string) (*MembershipStatus, error)
	History(ctx context.Context, userID string) ([]*model.PaymentRecord, error)
}

type membershipUC struct {
	memberships repository.MembershipRepository
	records     repository.PaymentRecordRepository
	policy      config.RenewalPolicy
	now         func() time.Time
	log         *zerolog.Logger
}

func NewMembershipUseCase(memberships repository.MembershipRepository, records repository.PaymentRecordRepository, policy config.RenewalPolicy, log *zerolog.Logger) *membershipUC {
	return &membershipUC{
		memberships: memberships,
		records:     records,
		policy:      policy,
		now:         time.Now,
		log:         log,
	}
}

func (u *membershipUC) Apply(ctx context.Context, qx repository.Tx, cp model.ConfirmedPayment) (*model.Membership, error) {
	now := u.now()

	m, err := u.memberships.FindByUser(ctx, qx, cp.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if m == nil {
		m = &model.Membership{UserID: cp.UserID}
	}

	base := now
	if u.policy == config.RenewalExtend && m.ActiveAt(now) {
		base = m.ExpiresAt
	}

	m.IsMember = true
	m.Tier = cp.Plan.Tier
	m.ExpiresAt = base.Add(cp.Plan.Duration)
	m.UpdatedAt = now

	if err := u.memberships.Save(ctx, qx, m); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", cp.UserID).Str("tier", string(m.Tier)).Time("expires_at", m.ExpiresAt).Msg("membership updated")
	return m, nil
}

func (u *membershipUC) Status(ctx context.Context, userID string) (*MembershipStatus, error) {
	now := u.now()
	m, err := u.memberships.FindByUser(ctx, nil, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if !m.ActiveAt(now) {
		return &MembershipStatus{IsActive: false, Tier: model.TierBasic}, nil
	}
	return &MembershipStatus{
		IsActive:      true,
		Tier:          m.Tier,
		ExpiresAt:     m.ExpiresAt,
		DaysRemaining: m.DaysRemaining(now),
	}, nil
}

func (u *membershipUC) History(ctx context.Context, userID string) ([]*model.PaymentRecord, error) {
	return u.records.ListByUser(ctx, nil, userID)
}
