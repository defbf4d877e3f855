package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/metrics"
	"github.com/dstanfill/parley/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SettingsService exposes the server-authoritative entitlement state.
type SettingsService interface {
	// Get returns the settings row for a (user, token) pair.
	// Returns domain.ENOTFOUND when absent.
	Get(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.Settings, error)

	// Detailed returns the settings plus payment history and derived
	// message consumption. Pure read.
	Detailed(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.DetailedSettings, error)

	// SetAutoRenew updates the auto-renew flag on the payment records
	// and the settings row in one transaction. Returns domain.ENOTFOUND
	// only when BOTH updates touched zero rows; a one-sided update is
	// accepted as success and logged for review.
	SetAutoRenew(ctx context.Context, userID uuid.UUID, chatToken string, autoRenew bool) error
}

// =============================================================================
// Implementation
// =============================================================================

type settingsService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) SettingsService {
	return &settingsService{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// Get returns the entitlement snapshot. The token join doubles as the
// exact-match credential check.
func (s *settingsService) Get(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.Settings, error) {
	const op = "SettingsService.Get"

	row, err := s.queries.GetSettingsByUserAndToken(ctx, repository.GetSettingsByUserAndTokenParams{
		UserID:    userID,
		ChatToken: chatToken,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "settings", userID.String())
		}
		return nil, domain.Internal(err, op, "Failed to load settings")
	}

	return repoSettingToDomain(row), nil
}

// Detailed combines the settings snapshot with payment history and the
// consumed/remaining message arithmetic.
func (s *settingsService) Detailed(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.DetailedSettings, error) {
	const op = "SettingsService.Detailed"

	settings, err := s.Get(ctx, userID, chatToken)
	if err != nil {
		return nil, err
	}

	paymentRows, err := s.queries.ListPaymentsByUserAndToken(ctx, repository.ListPaymentsByUserAndTokenParams{
		UserID:    userID,
		ChatToken: chatToken,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load payments")
	}

	payments := make([]domain.Payment, 0, len(paymentRows))
	for _, row := range paymentRows {
		payments = append(payments, *repoPaymentToDomain(row))
	}

	consumed, err := s.queries.CountChatMessages(ctx, repository.CountChatMessagesParams{
		UserID:    userID,
		ChatToken: chatToken,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count messages")
	}

	return &domain.DetailedSettings{
		Settings:          settings,
		Payments:          payments,
		ConsumedMessages:  consumed,
		RemainingMessages: domain.RemainingMessages(settings.FreeMessages, consumed),
	}, nil
}

// SetAutoRenew flips the persisted flag on both tables.
//
// The inherited contract: not-found is reported only when neither table
// had a matching row. A count mismatch (payments updated but settings
// not, or vice versa) commits as success; it is logged at Warn because
// it usually means the two tables have drifted.
func (s *settingsService) SetAutoRenew(ctx context.Context, userID uuid.UUID, chatToken string, autoRenew bool) error {
	const op = "SettingsService.SetAutoRenew"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Internal(err, op, "Failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	paymentRows, err := qtx.UpdatePaymentsAutoRenew(ctx, repository.UpdatePaymentsAutoRenewParams{
		UserID:    userID,
		ChatToken: chatToken,
		AutoRenew: autoRenew,
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to update payment auto-renew")
	}

	settingsRows, err := qtx.UpdateSettingsAutoRenew(ctx, repository.UpdateSettingsAutoRenewParams{
		UserID:    userID,
		AutoRenew: autoRenew,
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to update settings auto-renew")
	}

	if paymentRows == 0 && settingsRows == 0 {
		return domain.NotFound(op, "subscription", userID.String())
	}

	if err := tx.Commit(); err != nil {
		return domain.Internal(err, op, "Failed to commit transaction")
	}

	if (paymentRows == 0) != (settingsRows == 0) {
		s.logger.Warn("auto-renew update touched only one table",
			"user_id", userID,
			"payment_rows", paymentRows,
			"settings_rows", settingsRows,
		)
	}

	metrics.AutoRenewToggled.WithLabelValues(boolLabel(autoRenew)).Inc()
	s.logger.Info("auto-renew updated", "user_id", userID, "auto_renew", autoRenew)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func repoSettingToDomain(row repository.Setting) *domain.Settings {
	return &domain.Settings{
		UserID:            row.UserID,
		SubscriptionID:    domain.NullInt32Ptr(row.SubscriptionID),
		FreeMessages:      row.FreeMessages,
		SubscriptionStart: domain.NullTimePtr(row.SubscriptionStart),
		SubscriptionEnd:   domain.NullTimePtr(row.SubscriptionEnd),
		DaysLeft:          domain.NullInt32Ptr(row.DaysLeft),
		AutoRenew:         row.AutoRenew,
		UpdatedAt:         row.UpdatedAt,
	}
}
