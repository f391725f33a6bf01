package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"membership-payments/internal/domain/model"
	"membership-payments/internal/infra/logging"
	"membership-payments/internal/usecase"
)

// Server exposes the purchase/verification flow over HTTP. The create/verify
// pairs exist per tier because the mobile client calls distinct routes for
// the monthly and yearly plans.
type Server struct {
	orderUC      usecase.OrderUseCase
	verifyUC     usecase.VerifyUseCase
	membershipUC usecase.MembershipUseCase
	testUC       usecase.TestUpgradeUseCase
	auth         *AuthManager
	production   bool
	log          *zerolog.Logger
}

func NewServer(
	orderUC usecase.OrderUseCase,
	verifyUC usecase.VerifyUseCase,
	membershipUC usecase.MembershipUseCase,
	testUC usecase.TestUpgradeUseCase,
	auth *AuthManager,
	production bool,
	log *zerolog.Logger,
) *Server {
	return &Server{
		orderUC:      orderUC,
		verifyUC:     verifyUC,
		membershipUC: membershipUC,
		testUC:       testUC,
		auth:         auth,
		production:   production,
		log:          log,
	}
}

// Router builds the chi router with all payment routes behind bearer auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/payments", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Post("/create-order", s.handleCreateOrder(model.TierYearlyPremium))
		r.Post("/create-monthly-order", s.handleCreateOrder(model.TierMonthlyPremium))
		r.Post("/verify", s.handleVerify)
		r.Post("/verify-monthly", s.handleVerify)
		r.Post("/test-upgrade", s.handleTestUpgrade)
		r.Get("/subscription-status", s.handleSubscriptionStatus)
		r.Get("/history", s.handleHistory)
		r.Get("/get-key", s.handleGetKey)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context())))
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
