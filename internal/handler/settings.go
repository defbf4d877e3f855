// This file implements the entitlement settings handlers.
//
// Routes handled:
//   - POST /settings/get-settings          -> Get
//   - POST /settings/get-detailed-settings -> Detailed
//   - POST /settings/update-autorenew      -> UpdateAutoRenew
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/service"
)

// SettingsHandler handles entitlement settings HTTP requests.
type SettingsHandler struct {
	settings service.SettingsService
	logger   *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// RegisterRoutes registers settings routes on the provided mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /settings/get-settings", h.Get)
	mux.HandleFunc("POST /settings/get-detailed-settings", h.Detailed)
	mux.HandleFunc("POST /settings/update-autorenew", h.UpdateAutoRenew)
}

type settingsRequest struct {
	UserID    string `json:"user_id"`
	ChatToken string `json:"chat_token"`
}

// Get returns the current entitlement snapshot for the session.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("settings.get", "Invalid request body"))
		return
	}

	userID, verr := requireSession("settings.get", req.UserID, req.ChatToken)
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	settings, err := h.settings.Get(r.Context(), userID, req.ChatToken)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    settingsToPayload(settings),
	})
}

// Detailed returns the settings plus payments and message consumption.
func (h *SettingsHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("settings.detailed", "Invalid request body"))
		return
	}

	userID, verr := requireSession("settings.detailed", req.UserID, req.ChatToken)
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	detailed, err := h.settings.Detailed(r.Context(), userID, req.ChatToken)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	payments := make([]paymentPayload, 0, len(detailed.Payments))
	for i := range detailed.Payments {
		payments = append(payments, paymentToPayload(&detailed.Payments[i]))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"settings":           settingsToPayload(detailed.Settings),
			"payments":           payments,
			"consumed_messages":  detailed.ConsumedMessages,
			"remaining_messages": detailed.RemainingMessages,
		},
	})
}

type updateAutoRenewRequest struct {
	UserID    string `json:"user_id"`
	ChatToken string `json:"chat_token"`
	AutoRenew *bool  `json:"auto_renew"`
}

// UpdateAutoRenew flips the auto-renew flag for the session.
func (h *SettingsHandler) UpdateAutoRenew(w http.ResponseWriter, r *http.Request) {
	var req updateAutoRenewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("settings.autorenew", "Invalid request body"))
		return
	}

	userID, verr := requireSession("settings.autorenew", req.UserID, req.ChatToken)
	if req.AutoRenew == nil {
		verr = domain.AddFieldError(verr, "auto_renew", "auto_renew is required")
	}
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	if err := h.settings.SetAutoRenew(r.Context(), userID, req.ChatToken, *req.AutoRenew); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	state := "disabled"
	if *req.AutoRenew {
		state = "enabled"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Auto-renew %s successfully", state),
	})
}
