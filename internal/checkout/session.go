package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
)

// OutcomeKind tags the exactly-one terminal result of an opened session.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeGatewayFailure
	OutcomeCancelled
)

// Outcome is the single-shot result of a checkout session. Result is set for
// Success, Reason for GatewayFailure.
type Outcome struct {
	Kind   OutcomeKind
	Result model.PaymentResult
	Reason string
}

// Prefill is cosmetic buyer metadata shown in the dialog. Never authoritative.
type Prefill struct {
	Name  string
	Email string
}

// FailureDetail mirrors the structured error the gateway dialog emits on its
// payment.failed event.
type FailureDetail struct {
	Description string
	Reason      string
	Step        string
	Source      string
}

// DialogConfig is the contract with the third-party checkout surface: key
// material, the bound order, prefill, and the three terminal callbacks.
type DialogConfig struct {
	KeyID    string
	Amount   int64
	Currency string
	OrderID  string
	Prefill  Prefill

	OnComplete func(model.PaymentResult)
	OnFailure  func(FailureDetail)
	OnDismiss  func()
}

// Dialog is the external checkout UI. Open presents it; the implementation
// invokes exactly the callbacks it wants, in any order, possibly more than
// once. The driver collapses that into one Outcome.
type Dialog interface {
	Open(cfg DialogConfig) error
}

// Driver configures and opens the checkout dialog bound to one Order and
// produces exactly one Outcome. It performs no cryptographic work; the
// PaymentResult it yields is untrusted until verified server-side.
type Driver struct {
	dialog Dialog
	log    *zerolog.Logger
}

func NewDriver(dialog Dialog, log *zerolog.Logger) *Driver {
	return &Driver{dialog: dialog, log: log}
}

// Run opens a session for the order and blocks until its terminal outcome or
// ctx cancellation. A malformed order fails with ErrInvalidOrderConfig
// without opening anything.
func (d *Driver) Run(ctx context.Context, order *model.Order, prefill Prefill) (Outcome, error) {
	if !order.Openable() {
		return Outcome{}, domain.ErrInvalidOrderConfig
	}

	var once sync.Once
	resolved := make(chan Outcome, 1)
	settle := func(o Outcome) {
		once.Do(func() { resolved <- o })
	}

	cfg := DialogConfig{
		KeyID:    order.KeyID,
		Amount:   order.Amount,
		Currency: order.Currency,
		OrderID:  order.ID,
		Prefill:  prefill,
		OnComplete: func(res model.PaymentResult) {
			settle(Outcome{Kind: OutcomeSuccess, Result: res})
		},
		OnFailure: func(detail FailureDetail) {
			settle(Outcome{Kind: OutcomeGatewayFailure, Reason: failureReason(detail)})
		},
		OnDismiss: func() {
			settle(Outcome{Kind: OutcomeCancelled})
		},
	}

	if err := d.dialog.Open(cfg); err != nil {
		return Outcome{}, err
	}

	select {
	case o := <-resolved:
		d.log.Debug().Str("order_id", order.ID).Int("outcome", int(o.Kind)).Msg("checkout session settled")
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// failureReason assembles a human-readable reason from whatever structured
// detail the gateway exposed.
func failureReason(d FailureDetail) string {
	if d.Description != "" {
		return d.Description
	}
	if d.Reason != "" {
		return d.Reason
	}
	var parts []string
	if d.Step != "" {
		parts = append(parts, "failed at "+d.Step)
	}
	if d.Source != "" {
		parts = append(parts, "source "+d.Source)
	}
	if len(parts) == 0 {
		return "payment failed"
	}
	return strings.Join(parts, ", ")
}
