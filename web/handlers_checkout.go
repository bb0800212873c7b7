package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/plan"
)

// ListPlans returns the purchasable tiers plus the gateway account id
// the client needs to open checkout.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	type planView struct {
		ID       string `json:"id"`
		Quota    int64  `json:"quota"`
		Price    int64  `json:"price"`
		Currency string `json:"currency"`
	}

	tiers := plan.Tiers()
	views := make([]planView, 0, len(tiers))
	for _, t := range tiers {
		views = append(views, planView{
			ID:       string(t.ID),
			Quota:    t.Quota,
			Price:    t.PriceMinor,
			Currency: t.Currency,
		})
	}

	writeData(w, http.StatusOK, map[string]any{
		"plans":     views,
		"accountId": h.checkoutAccountID(),
	})
}

func (h *Handler) checkoutAccountID() string {
	if h.gateway == nil {
		return ""
	}
	return h.gateway.AccountID()
}

// CreateOrder opens a payment order for the calling key's owner.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID string `json:"planId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}

	k := keyFrom(r.Context())
	o, err := h.checkout.CreateOrder(r.Context(), k.OwnerID, plan.ID(req.PlanID))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, CodeBadRequest, "unknown plan")
		case errors.Is(err, app.ErrFreePlan):
			writeError(w, http.StatusBadRequest, CodeBadRequest, "the free plan cannot be purchased")
		case errors.Is(err, app.ErrNotAnUpgrade):
			writeError(w, http.StatusConflict, CodeConflict, "plan does not increase the current quota")
		case errors.Is(err, app.ErrNoActiveKey):
			writeError(w, http.StatusConflict, CodeConflict, "no active API key to credit")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeData(w, http.StatusCreated, viewOrder(o))
}

// VerifyPayment reconciles a completed checkout. The signature travels
// in the body exactly as the gateway returned it to the client.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GatewayOrderID string `json:"gatewayOrderId"`
		PaymentID      string `json:"paymentId"`
		Signature      string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "gatewayOrderId, paymentId and signature are required")
		return
	}

	k := keyFrom(r.Context())
	o, err := h.checkout.VerifyPayment(r.Context(), k.OwnerID, req.GatewayOrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSignatureMismatch):
			writeError(w, http.StatusBadRequest, CodeBadRequest, "payment signature mismatch")
		case errors.Is(err, app.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, CodeNotFound, "no pending order for this payment")
		case errors.Is(err, app.ErrCreditFailed):
			// Paid but not credited; the operator resolves via manual
			// credit. The client should not retry.
			writeError(w, http.StatusInternalServerError, CodeInternal, "payment recorded, quota credit pending")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeData(w, http.StatusOK, viewOrder(o))
}
