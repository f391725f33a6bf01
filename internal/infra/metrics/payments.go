package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		PaymentVerifyRequests,
		PaymentVerifyDuration,
		PaymentsTotal,
		BridgeLoads,
	)
}

var (
	// Count of verify calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): signature_mismatch|unknown_order|plan_mismatch|simulation_forbidden|bad_request|internal
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of the verifier grouped by result.
	PaymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of payment verification in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// Payments by terminal status (created/successful/failed/duplicate).
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status.",
		},
		[]string{"status"},
	)

	// Checkout bridge load attempts by result (ok|fail).
	BridgeLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_bridge_loads_total",
			Help: "Checkout bridge load attempts by result.",
		},
		[]string{"result"},
	)
)
