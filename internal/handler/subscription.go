// This file implements the subscription lifecycle handlers.
//
// Routes handled:
//   - GET  /subscription/plans    -> Plans
//   - POST /subscription/purchase -> Purchase
//   - POST /subscription/cancel   -> Cancel
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/service"
)

// SubscriptionHandler handles subscription HTTP requests.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptions service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers subscription routes on the provided mux.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /subscription/plans", h.Plans)
	mux.HandleFunc("POST /subscription/purchase", h.Purchase)
	mux.HandleFunc("POST /subscription/cancel", h.Cancel)
}

// Plans lists the plan catalog.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subscriptions.Plans(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	payloads := make([]planPayload, 0, len(plans))
	for i := range plans {
		payloads = append(payloads, planToPayload(&plans[i]))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    payloads,
	})
}

type purchaseRequest struct {
	UserID         string `json:"user_id"`
	ChatToken      string `json:"chat_token"`
	SubscriptionID int32  `json:"subscription_id"`
	AutoRenew      *bool  `json:"auto_renew"`
	CardNumber     string `json:"card_number"`
	CVC            string `json:"cvc"`
	CardExpiryDate string `json:"card_expiry_date"`
}

// Purchase activates a plan for the session.
func (h *SubscriptionHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("subscription.purchase", "Invalid request body"))
		return
	}

	userID, verr := requireSession("subscription.purchase", req.UserID, req.ChatToken)
	if req.SubscriptionID == 0 {
		verr = domain.AddFieldError(verr, "subscription_id", "subscription_id is required")
	}
	if req.AutoRenew == nil {
		verr = domain.AddFieldError(verr, "auto_renew", "auto_renew is required")
	}
	if strings.TrimSpace(req.CardNumber) == "" {
		verr = domain.AddFieldError(verr, "card_number", "card_number is required")
	}
	if strings.TrimSpace(req.CVC) == "" {
		verr = domain.AddFieldError(verr, "cvc", "cvc is required")
	}
	if strings.TrimSpace(req.CardExpiryDate) == "" {
		verr = domain.AddFieldError(verr, "card_expiry_date", "card_expiry_date is required")
	}
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	result, err := h.subscriptions.Purchase(r.Context(), domain.PurchaseParams{
		UserID:    userID,
		ChatToken: req.ChatToken,
		PlanID:    req.SubscriptionID,
		AutoRenew: *req.AutoRenew,
		Card: domain.CardDetails{
			Number: req.CardNumber,
			CVC:    req.CVC,
			Expiry: req.CardExpiryDate,
		},
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription purchased successfully",
		"data": map[string]interface{}{
			"payment":  paymentToPayload(result.Payment),
			"plan":     planToPayload(result.Plan),
			"settings": settingsToPayload(result.Settings),
		},
	})
}

type cancelRequest struct {
	UserID    string `json:"user_id"`
	ChatToken string `json:"chat_token"`
}

// Cancel reverts the session to the unsubscribed default state.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("subscription.cancel", "Invalid request body"))
		return
	}

	userID, verr := requireSession("subscription.cancel", req.UserID, req.ChatToken)
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	if err := h.subscriptions.Cancel(r.Context(), userID, req.ChatToken); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription canceled successfully",
	})
}
