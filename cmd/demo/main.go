// Command demo walks the client-side half of the purchase flow without any
// external services: bridge loading with coalesced attempts, a checkout
// session settling through each of its three terminal callbacks, and the
// signature a real gateway would return for the successful one.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"membership-payments/internal/checkout"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/infra/adapters/payment"
)

const demoSecret = "demo_key_secret"

func main() {
	flaky := flag.Bool("flaky", false, "make the first bridge load attempt fail")
	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	ctx := context.Background()

	fmt.Println("--- bridge loading ---")
	bridge := &scriptedBridge{failFirst: *flaky}
	loader := checkout.NewLoader(bridge, 5*time.Second, &logger)
	runLoaderDemo(ctx, loader)

	fmt.Println("\n--- order creation (simulated gateway) ---")
	gw := payment.NewSimulatedGateway()
	orderID, keyID, err := gw.CreateOrder(ctx, 9900, "INR", "demo-receipt-1")
	if err != nil {
		log.Fatalf("create order: %v", err)
	}
	order := &model.Order{
		ID:       orderID,
		UserID:   "demo-user",
		Tier:     model.TierMonthlyPremium,
		Amount:   9900,
		Currency: "INR",
		KeyID:    keyID,
		Status:   model.OrderStatusCreated,
	}
	fmt.Printf("order %s for %d %s (key %s)\n", order.ID, order.Amount, order.Currency, order.KeyID)

	fmt.Println("\n--- checkout sessions ---")
	runSession(ctx, &logger, order, "completed", dialogComplete())
	runSession(ctx, &logger, order, "failed", dialogFail())
	runSession(ctx, &logger, order, "dismissed", dialogDismiss())

	os.Exit(0)
}

func runLoaderDemo(ctx context.Context, loader *checkout.Loader) {
	// Two racing callers must share one load attempt.
	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = loader.EnsureLoaded(ctx)
		}(i)
	}
	wg.Wait()
	fmt.Printf("concurrent callers: %v %v, load attempts: %d\n", results[0], results[1], loader.LoadAttempts())

	if !results[0] || !results[1] {
		fmt.Println("first attempt failed, retrying")
		ok := loader.EnsureLoaded(ctx)
		fmt.Printf("retry: %v, load attempts: %d\n", ok, loader.LoadAttempts())
	}
}

func runSession(ctx context.Context, logger *zerolog.Logger, order *model.Order, label string, dialog checkout.Dialog) {
	driver := checkout.NewDriver(dialog, logger)
	out, err := driver.Run(ctx, order, checkout.Prefill{Name: "Demo User", Email: "demo@example.com"})
	if err != nil {
		log.Fatalf("session %s: %v", label, err)
	}
	switch out.Kind {
	case checkout.OutcomeSuccess:
		fmt.Printf("%s: payment %s signature %s\n", label, out.Result.PaymentID, out.Result.Signature)
	case checkout.OutcomeGatewayFailure:
		fmt.Printf("%s: gateway failure: %s\n", label, out.Reason)
	case checkout.OutcomeCancelled:
		fmt.Printf("%s: cancelled by user\n", label)
	}
}

// scriptedBridge stands in for the remote checkout script.
type scriptedBridge struct {
	mu        sync.Mutex
	failFirst bool
	loads     int
}

func (b *scriptedBridge) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loads++
	time.Sleep(50 * time.Millisecond) // keep the race window open
	if b.failFirst && b.loads == 1 {
		return errors.New("script fetch refused")
	}
	return nil
}

func (b *scriptedBridge) Callable(ctx context.Context) bool { return true }

// callbackDialog drives the session callbacks from a script.
type callbackDialog struct {
	run func(cfg checkout.DialogConfig)
}

func (d *callbackDialog) Open(cfg checkout.DialogConfig) error {
	go d.run(cfg)
	return nil
}

func dialogComplete() checkout.Dialog {
	return &callbackDialog{run: func(cfg checkout.DialogConfig) {
		paymentID := "pay_demo_1"
		cfg.OnComplete(model.PaymentResult{
			PaymentID: paymentID,
			OrderID:   cfg.OrderID,
			Signature: sign(cfg.OrderID, paymentID),
		})
		cfg.OnDismiss() // late dismissal after completion must be ignored
	}}
}

func dialogFail() checkout.Dialog {
	return &callbackDialog{run: func(cfg checkout.DialogConfig) {
		cfg.OnFailure(checkout.FailureDetail{
			Description: "card declined by issuer",
			Step:        "payment_authorization",
			Source:      "bank",
		})
	}}
}

func dialogDismiss() checkout.Dialog {
	return &callbackDialog{run: func(cfg checkout.DialogConfig) {
		cfg.OnDismiss()
	}}
}

// sign produces the signature the server-side verifier expects.
func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(demoSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
