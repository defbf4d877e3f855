package handler

import (
	"time"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// settingsPayload is the JSON shape of the entitlement snapshot.
type settingsPayload struct {
	UserID            uuid.UUID `json:"user_id"`
	SubscriptionID    *int32    `json:"subscription_id"`
	FreeMessages      int32     `json:"free_messages"`
	SubscriptionStart *string   `json:"subscription_start"`
	SubscriptionEnd   *string   `json:"subscription_end"`
	DaysLeft          *int32    `json:"days_left"`
	AutoRenew         bool      `json:"auto_renew"`
}

func settingsToPayload(s *domain.Settings) settingsPayload {
	return settingsPayload{
		UserID:            s.UserID,
		SubscriptionID:    s.SubscriptionID,
		FreeMessages:      s.FreeMessages,
		SubscriptionStart: formatDate(s.SubscriptionStart),
		SubscriptionEnd:   formatDate(s.SubscriptionEnd),
		DaysLeft:          s.DaysLeft,
		AutoRenew:         s.AutoRenew,
	}
}

// paymentPayload is the JSON shape of a payment record. Only the card
// token and last four digits are ever exposed.
type paymentPayload struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	SubscriptionID int32     `json:"subscription_id"`
	ChatToken      string    `json:"chat_token"`
	AutoRenew      bool      `json:"auto_renew"`
	CardLast4      string    `json:"card_last4"`
	CardToken      string    `json:"card_token"`
	CreatedAt      time.Time `json:"created_at"`
}

func paymentToPayload(p *domain.Payment) paymentPayload {
	return paymentPayload{
		ID:             p.ID,
		UserID:         p.UserID,
		SubscriptionID: p.SubscriptionID,
		ChatToken:      p.ChatToken,
		AutoRenew:      p.AutoRenew,
		CardLast4:      p.CardLast4,
		CardToken:      p.CardToken,
		CreatedAt:      p.CreatedAt,
	}
}

// planPayload is the JSON shape of a catalog entry.
type planPayload struct {
	ID           int32  `json:"id"`
	PlanType     string `json:"plan_type"`
	DisplayName  string `json:"display_name"`
	BillingCycle string `json:"billing_cycle"`
	Price        string `json:"price"`
	MaxMessages  string `json:"max_messages"`
}

func planToPayload(p *domain.Plan) planPayload {
	return planPayload{
		ID:           p.ID,
		PlanType:     p.Type,
		DisplayName:  p.DisplayName(),
		BillingCycle: string(p.BillingCycle),
		Price:        p.Price,
		MaxMessages:  p.MaxMessages,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateFormat)
	return &s
}
