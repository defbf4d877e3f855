package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/dstanfill/parley/internal/metrics"
	"github.com/dstanfill/parley/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SubscriptionService defines the paid-plan lifecycle operations.
type SubscriptionService interface {
	// Plans returns the immutable plan catalog.
	Plans(ctx context.Context) ([]domain.Plan, error)

	// Purchase activates a plan for the user. The payment insert, user
	// update, plan lookup, entitlement computation, and settings upsert
	// are one transaction; any failure rolls back everything including
	// the payment row.
	// Returns domain.ENOTFOUND if the (user, token) pair is unknown.
	// Returns domain.EINVALID for an unknown plan id or malformed catalog data.
	Purchase(ctx context.Context, params domain.PurchaseParams) (*domain.PurchaseResult, error)

	// Cancel reverts the user to the unsubscribed default state: payment
	// rows purged, settings reset, user subscription fields cleared, all
	// in one transaction. This is a hard reset with no archival record.
	Cancel(ctx context.Context, userID uuid.UUID, chatToken string) error
}

// =============================================================================
// Implementation
// =============================================================================

type subscriptionService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// Plans returns the seeded plan catalog.
func (s *subscriptionService) Plans(ctx context.Context) ([]domain.Plan, error) {
	const op = "SubscriptionService.Plans"

	rows, err := s.queries.ListSubscriptionPlans(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load subscription plans")
	}

	plans := make([]domain.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, *repoPlanToDomain(row))
	}
	return plans, nil
}

// Purchase runs the six-step subscription activation.
//
// Flow (single transaction):
// 1. Verify the (user, token) pair
// 2. Load the plan; an unknown id is rejected before anything is written,
//    so the plan foreign keys on payments and users never fire for bad input
// 3. Insert the payment row (card tokenized, never stored raw)
// 4. Mark the user subscribed with the chosen plan
// 5. Compute the entitlement (quota, period bounds, days-left snapshot)
// 6. Upsert the settings row keyed on user id
func (s *subscriptionService) Purchase(ctx context.Context, params domain.PurchaseParams) (*domain.PurchaseResult, error) {
	const op = "SubscriptionService.Purchase"

	if err := params.Card.Validate(); err != nil {
		return nil, err
	}

	cardToken, err := newCardToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to tokenize card")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	if _, err := qtx.GetUserByIDAndToken(ctx, repository.GetUserByIDAndTokenParams{
		ID:        params.UserID,
		ChatToken: params.ChatToken,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", params.UserID.String())
		}
		return nil, domain.Internal(err, op, "Failed to load user")
	}

	planRow, err := qtx.GetSubscriptionPlan(ctx, params.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.PlanNotFound(op, params.PlanID)
		}
		return nil, domain.Internal(err, op, "Failed to load subscription plan")
	}
	plan := repoPlanToDomain(planRow)

	payment, err := qtx.CreatePayment(ctx, repository.CreatePaymentParams{
		UserID:         params.UserID,
		SubscriptionID: params.PlanID,
		ChatToken:      params.ChatToken,
		AutoRenew:      params.AutoRenew,
		CardLast4:      params.Card.Last4(),
		CardToken:      cardToken,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to record payment")
	}

	if err := qtx.SetUserSubscription(ctx, repository.SetUserSubscriptionParams{
		ID:             params.UserID,
		SubscriptionID: sql.NullInt32{Int32: params.PlanID, Valid: true},
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to update user subscription")
	}

	entitlement, err := plan.EntitlementAt(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	settings, err := qtx.UpsertSettings(ctx, repository.UpsertSettingsParams{
		UserID:            params.UserID,
		SubscriptionID:    sql.NullInt32{Int32: entitlement.PlanID, Valid: true},
		FreeMessages:      entitlement.FreeMessages,
		SubscriptionStart: sql.NullTime{Time: entitlement.Start, Valid: true},
		SubscriptionEnd:   sql.NullTime{Time: entitlement.End, Valid: true},
		DaysLeft:          sql.NullInt32{Int32: entitlement.DaysLeft, Valid: true},
		AutoRenew:         params.AutoRenew,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to upsert settings")
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to commit transaction")
	}

	metrics.SubscriptionsPurchased.WithLabelValues(plan.Type, string(plan.BillingCycle)).Inc()
	s.logger.Info("subscription purchased",
		"user_id", params.UserID,
		"plan_id", plan.ID,
		"plan", plan.Type,
		"cycle", plan.BillingCycle,
	)

	return &domain.PurchaseResult{
		Payment:  repoPaymentToDomain(payment),
		Plan:     plan,
		Settings: repoSettingToDomain(settings),
	}, nil
}

// Cancel purges the payment records and restores the unsubscribed defaults.
func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID, chatToken string) error {
	const op = "SubscriptionService.Cancel"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Internal(err, op, "Failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	if _, err := qtx.DeletePaymentsByUserAndToken(ctx, repository.DeletePaymentsByUserAndTokenParams{
		UserID:    userID,
		ChatToken: chatToken,
	}); err != nil {
		return domain.Internal(err, op, "Failed to delete payments")
	}

	if _, err := qtx.ResetSettings(ctx, repository.ResetSettingsParams{
		UserID:       userID,
		FreeMessages: domain.DefaultFreeMessages,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "settings", userID.String())
		}
		return domain.Internal(err, op, "Failed to reset settings")
	}

	if err := qtx.ClearUserSubscription(ctx, userID); err != nil {
		return domain.Internal(err, op, "Failed to clear user subscription")
	}

	if err := tx.Commit(); err != nil {
		return domain.Internal(err, op, "Failed to commit transaction")
	}

	metrics.SubscriptionsCanceled.Inc()
	s.logger.Info("subscription canceled", "user_id", userID)

	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// newCardToken mints the opaque token stored in place of raw card data.
// In a gateway-backed deployment this would be the processor's reference.
func newCardToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "tok_" + hex.EncodeToString(bytes), nil
}

func repoPlanToDomain(row repository.SubscriptionPlan) *domain.Plan {
	return &domain.Plan{
		ID:           row.ID,
		Type:         row.PlanType,
		BillingCycle: domain.BillingCycle(row.BillingCycle),
		Price:        row.Price,
		MaxMessages:  row.MaxMessages,
		CreatedAt:    row.CreatedAt,
	}
}

func repoPaymentToDomain(row repository.Payment) *domain.Payment {
	return &domain.Payment{
		ID:             row.ID,
		UserID:         row.UserID,
		SubscriptionID: row.SubscriptionID,
		ChatToken:      row.ChatToken,
		AutoRenew:      row.AutoRenew,
		CardLast4:      row.CardLast4,
		CardToken:      row.CardToken,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
