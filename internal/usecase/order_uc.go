package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/adapter"
	"membership-payments/internal/domain/ports/repository"
	"membership-payments/internal/infra/metrics"
)

var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// Create registers a payment intent for the chosen tier and returns the
	// order descriptor the checkout session needs.
	Create(ctx context.Context, userID string, tier model.Tier) (*model.Order, error)
	// Preflight reports whether the gateway holds usable credentials; backs
	// the get-key pre-flight endpoint.
	Preflight(ctx context.Context) bool
}

type orderUC struct {
	orders  repository.OrderRepository
	catalog *model.Catalog
	gateway adapter.CheckoutGateway
	log     *zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, catalog *model.Catalog, gateway adapter.CheckoutGateway, log *zerolog.Logger) *orderUC {
	return &orderUC{orders: orders, catalog: catalog, gateway: gateway, log: log}
}

func (u *orderUC) Create(ctx context.Context, userID string, tier model.Tier) (*model.Order, error) {
	plan, err := u.catalog.ByTier(tier)
	if err != nil {
		return nil, err
	}
	if !plan.Priced() {
		return nil, domain.ErrUnknownPlan
	}
	if !u.gateway.Configured() {
		return nil, domain.ErrGatewayUnconfigured
	}

	receipt := uuid.NewString()
	orderID, keyID, err := u.gateway.CreateOrder(ctx, plan.Price, plan.Currency, receipt)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Str("tier", string(tier)).Msg("order creation failed")
		return nil, err
	}

	o := &model.Order{
		ID:        orderID,
		UserID:    userID,
		Tier:      plan.Tier,
		Amount:    plan.Price,
		Currency:  plan.Currency,
		KeyID:     keyID,
		Simulated: u.gateway.Simulated(),
		Status:    model.OrderStatusCreated,
		CreatedAt: time.Now(),
	}
	if err := u.orders.Save(ctx, nil, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	metrics.PaymentsTotal.WithLabelValues("created").Inc()
	u.log.Info().Str("order_id", o.ID).Str("tier", string(o.Tier)).Int64("amount", o.Amount).Bool("simulated", o.Simulated).Msg("order created")
	return o, nil
}

func (u *orderUC) Preflight(ctx context.Context) bool { return u.gateway.Configured() }
