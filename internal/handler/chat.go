// This file implements the chat session handlers.
//
// Routes handled:
//   - GET  /chat/initialize-chat -> Initialize
//   - POST /chat/save-chat       -> Save
//   - POST /chat/get-chat        -> History
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/service"
	"github.com/google/uuid"
)

// ChatHandler handles chat session HTTP requests.
type ChatHandler struct {
	chatService service.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// RegisterRoutes registers chat routes on the provided mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /chat/initialize-chat", h.Initialize)
	mux.HandleFunc("POST /chat/save-chat", h.Save)
	mux.HandleFunc("POST /chat/get-chat", h.History)
}

// Initialize creates a fresh anonymous session.
func (h *ChatHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.InitSession(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Chat initialized successfully!",
		"data": map[string]interface{}{
			"user_id":    session.UserID,
			"chat_token": session.ChatToken,
			"settings":   settingsToPayload(session.Settings),
		},
	})
}

type saveChatRequest struct {
	UserID    string `json:"user_id"`
	ChatToken string `json:"chat_token"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Save persists a question/answer exchange, charging the free quota for
// unsubscribed users.
func (h *ChatHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("chat.save", "Invalid request body"))
		return
	}

	userID, verr := requireSession("chat.save", req.UserID, req.ChatToken)
	if strings.TrimSpace(req.Question) == "" {
		verr = domain.AddFieldError(verr, "question", "question is required")
	}
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	result, err := h.chatService.SaveMessage(r.Context(), domain.SaveMessageParams{
		UserID:    userID,
		ChatToken: req.ChatToken,
		Question:  req.Question,
		Answer:    req.Answer,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Chat saved successfully!",
		"data": map[string]interface{}{
			"user_id":         result.UserID,
			"answer":          result.Answer,
			"remaining_limit": result.RemainingLimit,
		},
	})
}

type getChatRequest struct {
	UserID    string `json:"user_id"`
	ChatToken string `json:"chat_token"`
}

// History returns the full transcript for the session.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	var req getChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("chat.history", "Invalid request body"))
		return
	}

	userID, verr := requireSession("chat.history", req.UserID, req.ChatToken)
	if verr != nil {
		ValidationErrorResponse(w, r, h.logger, verr)
		return
	}

	chats, err := h.chatService.History(r.Context(), userID, req.ChatToken)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Chat retrieved successfully!",
		"chats":   chats,
	})
}

// requireSession validates the (user_id, chat_token) credential pair
// present on every authenticated request body.
func requireSession(op, rawUserID, chatToken string) (uuid.UUID, *domain.ValidationError) {
	var verr *domain.ValidationError

	userID, err := uuid.Parse(strings.TrimSpace(rawUserID))
	if err != nil {
		verr = domain.NewValidationError(op, "user_id", "user_id must be a valid UUID")
	}
	if strings.TrimSpace(chatToken) == "" {
		verr = domain.AddFieldError(verr, "chat_token", "chat_token is required")
	}
	if verr != nil {
		verr.Op = op
		return uuid.Nil, verr
	}
	return userID, nil
}
