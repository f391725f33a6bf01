package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/repository"
	"membership-payments/internal/infra/logging"
	"membership-payments/internal/infra/metrics"
)

var _ VerifyUseCase = (*verifyUC)(nil)

type VerifyUseCase interface {
	// Verify confirms a PaymentResult genuinely belongs to the order it
	// claims, applies the membership update exactly once, and returns the
	// fresh membership snapshot plus the history record. Duplicate delivery
	// of an already-verified result is a success no-op.
	Verify(ctx context.Context, userID string, res model.PaymentResult) (*model.Membership, *model.PaymentRecord, error)
}

// Locker serializes verification per user across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// ProcessedMarker is a fast-path duplicate answer in front of the database
// unique index. Purely advisory: the index is the guarantee.
type ProcessedMarker interface {
	Seen(ctx context.Context, paymentID string) bool
	Mark(ctx context.Context, paymentID string)
}

type verifyUC struct {
	orders      repository.OrderRepository
	records     repository.PaymentRecordRepository
	memberships repository.MembershipRepository
	membership  MembershipUseCase
	catalog     *model.Catalog
	tm          repository.TransactionManager
	locker      Locker          // optional
	marker      ProcessedMarker // optional
	secret      []byte
	production  bool
	now         func() time.Time
	log         *zerolog.Logger
}

func NewVerifyUseCase(
	orders repository.OrderRepository,
	records repository.PaymentRecordRepository,
	memberships repository.MembershipRepository,
	membership MembershipUseCase,
	catalog *model.Catalog,
	tm repository.TransactionManager,
	locker Locker,
	marker ProcessedMarker,
	secret string,
	production bool,
	log *zerolog.Logger,
) *verifyUC {
	return &verifyUC{
		orders:      orders,
		records:     records,
		memberships: memberships,
		membership:  membership,
		catalog:     catalog,
		tm:          tm,
		locker:      locker,
		marker:      marker,
		secret:      []byte(secret),
		production:  production,
		now:         time.Now,
		log:         log,
	}
}

func (u *verifyUC) Verify(ctx context.Context, userID string, res model.PaymentResult) (*model.Membership, *model.PaymentRecord, error) {
	ctx = logging.WithOrderID(ctx, res.OrderID)
	defer logging.TraceDuration(logging.With(ctx, u.log), "VerifyUC.Verify")()

	start := time.Now()
	m, rec, err := u.verify(ctx, userID, res)
	result := "ok"
	if err != nil {
		result = "fail"
		metrics.PaymentVerifyRequests.WithLabelValues(result, failReason(err)).Inc()
	} else {
		metrics.PaymentVerifyRequests.WithLabelValues(result, "").Inc()
	}
	metrics.PaymentVerifyDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return m, rec, err
}

func (u *verifyUC) verify(ctx context.Context, userID string, res model.PaymentResult) (*model.Membership, *model.PaymentRecord, error) {
	if res.PaymentID == "" || res.OrderID == "" {
		return nil, nil, domain.ErrSignatureMismatch
	}

	// Duplicate fast path before any locking.
	if u.marker != nil && u.marker.Seen(ctx, res.PaymentID) {
		return u.duplicate(ctx, res.PaymentID)
	}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, "verify:lock:"+userID, 10*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("verify lock: %w", err)
		}
		defer func() { _ = u.locker.Unlock(ctx, "verify:lock:"+userID, token) }()
	}

	if existing, err := u.records.FindByPaymentID(ctx, nil, res.PaymentID); err == nil && existing != nil {
		return u.settled(ctx, existing)
	}

	order, err := u.orders.FindByID(ctx, nil, res.OrderID)
	if err != nil || order == nil || order.UserID != userID {
		return nil, nil, domain.ErrUnknownOrder
	}

	plan, err := u.catalog.ByTier(order.Tier)
	if err != nil {
		return nil, nil, domain.ErrUnknownOrder
	}

	// The order must still match the plan it was priced from. A stale row
	// surviving a catalog change must not buy the current plan at the old
	// amount.
	if order.Amount != plan.Price || order.Currency != plan.Currency {
		u.log.Warn().
			Str("order_id", order.ID).
			Str("tier", string(order.Tier)).
			Int64("order_amount", order.Amount).
			Int64("plan_price", plan.Price).
			Msg("order diverged from configured plan")
		return nil, nil, domain.ErrPlanMismatch
	}

	if order.Simulated {
		// The simulated path bypasses signature recomputation but is locked
		// to non-production configuration.
		if u.production {
			return nil, nil, domain.ErrSimulationForbidden
		}
	} else {
		if !u.signatureValid(res) {
			u.recordRejected(ctx, userID, order, res)
			u.log.Warn().Str("order_id", res.OrderID).Str("payment_id", res.PaymentID).Msg("payment signature mismatch")
			return nil, nil, domain.ErrSignatureMismatch
		}
	}

	confirmed := model.ConfirmedPayment{
		PaymentID: res.PaymentID,
		OrderID:   order.ID,
		UserID:    userID,
		Plan:      plan,
		Amount:    order.Amount,
		Simulated: order.Simulated,
	}

	var (
		membership *model.Membership
		rec        *model.PaymentRecord
	)
	err = u.withTx(ctx, func(ctx context.Context, qx repository.Tx) error {
		rec = &model.PaymentRecord{
			ID:        ulid.Make().String(),
			PaymentID: confirmed.PaymentID,
			OrderID:   confirmed.OrderID,
			UserID:    userID,
			Tier:      plan.Tier,
			Amount:    confirmed.Amount,
			Currency:  order.Currency,
			Status:    model.PaymentRecordStatusSuccessful,
			CreatedAt: u.now(),
		}
		if err := u.records.Append(ctx, qx, rec); err != nil {
			return err
		}
		m, err := u.membership.Apply(ctx, qx, confirmed)
		if err != nil {
			return err
		}
		membership = m
		return u.orders.UpdateStatus(ctx, qx, order.ID, model.OrderStatusVerified)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			// Lost the race with an identical delivery: the winner's state
			// effect stands and this call reports the same success.
			return u.duplicate(ctx, res.PaymentID)
		}
		return nil, nil, err
	}

	if u.marker != nil {
		u.marker.Mark(ctx, res.PaymentID)
	}
	metrics.PaymentsTotal.WithLabelValues("successful").Inc()
	u.log.Info().Str("order_id", order.ID).Str("payment_id", res.PaymentID).Str("tier", string(plan.Tier)).Msg("payment verified")
	return membership, rec, nil
}

// signatureValid recomputes HMAC-SHA256 over orderId|paymentId and compares
// in constant time.
func (u *verifyUC) signatureValid(res model.PaymentResult) bool {
	if res.Signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, u.secret)
	mac.Write([]byte(res.OrderID + "|" + res.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(res.Signature))
}

// recordRejected appends a failed history entry for a rejected attempt.
// Best-effort: a duplicate of an earlier entry is fine.
func (u *verifyUC) recordRejected(ctx context.Context, userID string, order *model.Order, res model.PaymentResult) {
	rec := &model.PaymentRecord{
		ID:        ulid.Make().String(),
		PaymentID: res.PaymentID,
		OrderID:   order.ID,
		UserID:    userID,
		Tier:      order.Tier,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    model.PaymentRecordStatusFailed,
		CreatedAt: u.now(),
	}
	if err := u.records.Append(ctx, nil, rec); err != nil && !errors.Is(err, domain.ErrAlreadyProcessed) {
		u.log.Error().Err(err).Str("payment_id", res.PaymentID).Msg("failed to record rejected payment")
	}
	metrics.PaymentsTotal.WithLabelValues("failed").Inc()
}

// duplicate serves the idempotent success no-op for an already-recorded
// payment id.
func (u *verifyUC) duplicate(ctx context.Context, paymentID string) (*model.Membership, *model.PaymentRecord, error) {
	rec, err := u.records.FindByPaymentID(ctx, nil, paymentID)
	if err != nil {
		return nil, nil, err
	}
	return u.settled(ctx, rec)
}

func (u *verifyUC) settled(ctx context.Context, rec *model.PaymentRecord) (*model.Membership, *model.PaymentRecord, error) {
	// A re-delivered attempt that was rejected the first time stays rejected.
	if rec.Status != model.PaymentRecordStatusSuccessful {
		return nil, nil, domain.ErrSignatureMismatch
	}
	m, err := u.memberships.FindByUser(ctx, nil, rec.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	metrics.PaymentsTotal.WithLabelValues("duplicate").Inc()
	u.log.Debug().Str("payment_id", rec.PaymentID).Msg("duplicate payment delivery, serving recorded result")
	return m, rec, nil
}

func (u *verifyUC) withTx(ctx context.Context, fn func(ctx context.Context, qx repository.Tx) error) error {
	if u.tm == nil {
		return fn(ctx, nil)
	}
	return u.tm.WithTx(ctx, defaultTxOptions(), fn)
}

func failReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, domain.ErrUnknownOrder):
		return "unknown_order"
	case errors.Is(err, domain.ErrPlanMismatch):
		return "plan_mismatch"
	case errors.Is(err, domain.ErrSimulationForbidden):
		return "simulation_forbidden"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "bad_request"
	default:
		return "internal"
	}
}
