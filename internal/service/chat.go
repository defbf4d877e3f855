// Package service contains the business logic layer.
//
// Services orchestrate interactions between the repository, the
// responder, and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Transaction coordination
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/dstanfill/parley/internal/ai"
	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/metrics"
	"github.com/dstanfill/parley/internal/repository"
	"github.com/google/uuid"
)

const (
	// ChatTokenBytes is the number of random bytes for chat session
	// tokens. 16 bytes = 128 bits of entropy, hex-encoded to 32
	// characters. The token is an opaque bearer credential with no
	// signature or expiry.
	ChatTokenBytes = 16
)

// =============================================================================
// Interface Definition
// =============================================================================

// ChatService defines operations for anonymous chat sessions.
type ChatService interface {
	// InitSession creates a new anonymous user with a fresh chat token
	// and the default entitlement settings, in one transaction.
	InitSession(ctx context.Context) (*domain.SessionInit, error)

	// SaveMessage persists a question/answer exchange, enforcing the
	// free-message quota for unsubscribed users. The message insert and
	// the quota decrement commit or roll back together.
	// Returns domain.ENOTFOUND if the user has no settings row.
	// Returns domain.EPAYMENT when the free allowance is exhausted.
	SaveMessage(ctx context.Context, params domain.SaveMessageParams) (*domain.SaveMessageResult, error)

	// History returns the full transcript for a (user, token) pair in
	// insertion order, expanded into user/bot entries.
	History(ctx context.Context, userID uuid.UUID, chatToken string) ([]domain.HistoryEntry, error)
}

// =============================================================================
// Implementation
// =============================================================================

type chatService struct {
	db        *sql.DB
	queries   *repository.Queries
	responder ai.Responder
	logger    *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(db *sql.DB, queries *repository.Queries, responder ai.Responder, logger *slog.Logger) ChatService {
	return &chatService{
		db:        db,
		queries:   queries,
		responder: responder,
		logger:    logger,
	}
}

// InitSession creates the user row and its paired settings row together.
func (s *chatService) InitSession(ctx context.Context) (*domain.SessionInit, error) {
	const op = "ChatService.InitSession"

	token, err := generateChatToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to generate chat token")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	user, err := qtx.CreateUser(ctx, token)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create user")
	}

	settings, err := qtx.CreateSettings(ctx, user.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create settings")
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to commit transaction")
	}

	metrics.SessionsCreated.Inc()
	s.logger.Info("chat session initialized", "user_id", user.ID)

	return &domain.SessionInit{
		UserID:    user.ID,
		ChatToken: user.ChatToken,
		Settings:  repoSettingToDomain(settings),
	}, nil
}

// SaveMessage persists one exchange and charges the quota.
//
// Flow:
// 1. Produce the answer via the responder when the caller supplied none
// 2. Lock the user's settings row for the transaction
// 3. Reject with QuotaExceeded if unsubscribed and the counter is spent
// 4. Insert the chat message
// 5. Conditionally decrement the counter when unsubscribed
// 6. Commit; any failure rolls back both the message and the decrement
func (s *chatService) SaveMessage(ctx context.Context, params domain.SaveMessageParams) (*domain.SaveMessageResult, error) {
	const op = "ChatService.SaveMessage"

	if strings.TrimSpace(params.Question) == "" {
		return nil, domain.Invalid(op, "Question is required")
	}

	// The responder is called before the transaction opens so a slow
	// producer never holds the settings row lock.
	answer := params.Answer
	if strings.TrimSpace(answer) == "" {
		generated, err := s.responder.Respond(ctx, params.Question)
		if err != nil {
			return nil, domain.Internal(err, op, "Failed to produce answer")
		}
		answer = generated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	settings, err := qtx.GetSettingsByUserForUpdate(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A user must always have settings; absence is corruption
			return nil, domain.NotFound(op, "settings", params.UserID.String())
		}
		return nil, domain.Internal(err, op, "Failed to load settings")
	}

	subscribed := settings.SubscriptionID.Valid
	if !subscribed && settings.FreeMessages <= 0 {
		metrics.QuotaExceededTotal.Inc()
		return nil, domain.QuotaExceeded(op)
	}

	if _, err := qtx.CreateChatMessage(ctx, repository.CreateChatMessageParams{
		UserID:    params.UserID,
		ChatToken: params.ChatToken,
		Question:  params.Question,
		Answer:    answer,
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to save message")
	}

	remaining := settings.FreeMessages
	if !subscribed {
		remaining, err = qtx.DecrementFreeMessages(ctx, params.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Counter hit zero between check and decrement; the row
				// lock makes this unreachable, but fail closed anyway
				return nil, domain.QuotaExceeded(op)
			}
			return nil, domain.Internal(err, op, "Failed to decrement free messages")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to commit transaction")
	}

	metrics.MessagesSaved.WithLabelValues(boolLabel(subscribed)).Inc()
	s.logger.Debug("message saved", "user_id", params.UserID, "subscribed", subscribed, "remaining", remaining)

	return &domain.SaveMessageResult{
		UserID:         params.UserID,
		Answer:         answer,
		RemainingLimit: remaining,
	}, nil
}

// History is a pure read; no side effects.
func (s *chatService) History(ctx context.Context, userID uuid.UUID, chatToken string) ([]domain.HistoryEntry, error) {
	const op = "ChatService.History"

	rows, err := s.queries.ListChatMessages(ctx, repository.ListChatMessagesParams{
		UserID:    userID,
		ChatToken: chatToken,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load chat history")
	}

	msgs := make([]domain.ChatMessage, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, domain.ChatMessage{
			ID:        row.ID,
			UserID:    row.UserID,
			ChatToken: row.ChatToken,
			Question:  row.Question,
			Answer:    row.Answer,
			CreatedAt: row.CreatedAt,
		})
	}

	return domain.InterleaveHistory(msgs), nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// generateChatToken creates a cryptographically secure session token:
// 16 random bytes hex-encoded to 32 characters.
func generateChatToken() (string, error) {
	bytes := make([]byte, ChatTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
