package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retryable tells the client whether "try again" is honest advice or
	// whether this is a contact-support failure.
	Retryable bool `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the two user-visible failure classes:
// availability problems the user can retry, and integrity failures they
// cannot.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGatewayUnconfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "gateway_unconfigured", Message: "payments are temporarily unavailable, please try again later", Retryable: true})
	case errors.Is(err, domain.ErrOrderCreationFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "order_creation_failed", Message: err.Error(), Retryable: true})
	case errors.Is(err, domain.ErrUnknownPlan), errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidOrderConfig):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "invalid_request", Message: err.Error(), Retryable: false})
	case errors.Is(err, domain.ErrSignatureMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "verification_failed", Message: "payment could not be verified, please contact support", Retryable: false})
	case errors.Is(err, domain.ErrUnknownOrder):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "order_not_found", Message: "payment could not be verified, please contact support", Retryable: false})
	case errors.Is(err, domain.ErrPlanMismatch):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "plan_mismatch", Message: "payment could not be verified, please contact support", Retryable: false})
	case errors.Is(err, domain.ErrSimulationForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "simulation_forbidden", Message: "test payments are disabled", Retryable: false})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal", Message: "something went wrong", Retryable: true})
	}
}

type orderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	IsDummy  bool   `json:"isDummy,omitempty"`
}

func (s *Server) handleCreateOrder(tier model.Tier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := s.orderUC.Create(r.Context(), UserID(r.Context()), tier)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orderResponse{
			OrderID:  order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
			KeyID:    order.KeyID,
			IsDummy:  order.Simulated,
		})
	}
}

type verifyRequest struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	// IsDummyOrder is advisory; the stored order decides whether the
	// simulated acceptance path applies.
	IsDummyOrder bool `json:"isDummyOrder,omitempty"`
}

type userView struct {
	IsMember       bool   `json:"isMember"`
	MembershipType string `json:"membershipType"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
}

type verifyResponse struct {
	User userView `json:"user"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_json", Message: "invalid request body", Retryable: false})
		return
	}

	m, _, err := s.verifyUC.Verify(r.Context(), UserID(r.Context()), model.PaymentResult{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{User: membershipView(m)})
}

type testUpgradeRequest struct {
	PlanType string `json:"planType"`
}

type testUpgradeResponse struct {
	Success    bool   `json:"success"`
	ExpiryDate string `json:"expiryDate"`
}

func (s *Server) handleTestUpgrade(w http.ResponseWriter, r *http.Request) {
	if s.production {
		http.NotFound(w, r)
		return
	}
	var req testUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_json", Message: "invalid request body", Retryable: false})
		return
	}
	tier, err := model.ParseTier(req.PlanType)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := s.testUC.Upgrade(r.Context(), UserID(r.Context()), tier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, testUpgradeResponse{Success: true, ExpiryDate: m.ExpiresAt.Format(time.RFC3339)})
}

type statusResponse struct {
	IsActive       bool   `json:"isActive"`
	MembershipType string `json:"membershipType"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	DaysRemaining  int    `json:"daysRemaining"`
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.membershipUC.Status(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := statusResponse{
		IsActive:       st.IsActive,
		MembershipType: string(st.Tier),
		DaysRemaining:  st.DaysRemaining,
	}
	if st.IsActive {
		resp.ExpiryDate = st.ExpiresAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

type paymentRecordView struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Plan      string `json:"plan"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Payments []paymentRecordView `json:"payments"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.membershipUC.History(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := historyResponse{Payments: make([]paymentRecordView, 0, len(records))}
	for _, rec := range records {
		resp.Payments = append(resp.Payments, paymentRecordView{
			PaymentID: rec.PaymentID,
			OrderID:   rec.OrderID,
			Plan:      string(rec.Tier),
			Amount:    rec.Amount,
			Currency:  rec.Currency,
			Status:    string(rec.Status),
			Timestamp: rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type getKeyResponse struct {
	Configured bool `json:"configured"`
}

func (s *Server) handleGetKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, getKeyResponse{Configured: s.orderUC.Preflight(r.Context())})
}

func membershipView(m *model.Membership) userView {
	if m == nil {
		return userView{MembershipType: string(model.TierBasic)}
	}
	v := userView{
		IsMember:       m.IsMember,
		MembershipType: string(m.Tier),
	}
	if !m.ExpiresAt.IsZero() {
		v.ExpiryDate = m.ExpiresAt.Format(time.RFC3339)
	}
	return v
}
