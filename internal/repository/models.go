package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	ChatToken      string
	Subscribed     bool
	SubscriptionID sql.NullInt32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Setting struct {
	UserID            uuid.UUID
	SubscriptionID    sql.NullInt32
	FreeMessages      int32
	SubscriptionStart sql.NullTime
	SubscriptionEnd   sql.NullTime
	DaysLeft          sql.NullInt32
	AutoRenew         bool
	UpdatedAt         time.Time
}

type SubscriptionPlan struct {
	ID           int32
	PlanType     string
	BillingCycle string
	Price        string
	MaxMessages  string
	CreatedAt    time.Time
}

type Payment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	SubscriptionID int32
	ChatToken      string
	AutoRenew      bool
	CardLast4      string
	CardToken      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ChatMessage struct {
	ID        int64
	UserID    uuid.UUID
	ChatToken string
	Question  string
	Answer    string
	CreatedAt time.Time
}
