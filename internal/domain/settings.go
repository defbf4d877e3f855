package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultFreeMessages is the free-message allowance granted to a new
// session and restored on cancellation.
const DefaultFreeMessages = 3

// Settings is the per-user entitlement snapshot: remaining free messages
// while unsubscribed, and the active plan with its period bounds once
// subscribed. Exactly one row exists per user; purchase upserts it and
// cancellation resets it to the unsubscribed defaults.
type Settings struct {
	UserID            uuid.UUID
	SubscriptionID    *int32
	FreeMessages      int32
	SubscriptionStart *time.Time
	SubscriptionEnd   *time.Time
	DaysLeft          *int32
	AutoRenew         bool
	UpdatedAt         time.Time
}

// Subscribed reports whether the user holds an active plan. The
// free-message counter is meaningful only when this is false.
func (s *Settings) Subscribed() bool {
	return s.SubscriptionID != nil
}

// RemainingMessages computes how many plan messages are left given the
// subscribed message limit and the total messages the user has ever sent.
// The first DefaultFreeMessages sends were free and do not count against
// the plan. A zero limit is the unlimited sentinel and always reports
// zero remaining (the counter is not tracked for unlimited plans).
func RemainingMessages(limit int32, consumed int64) int64 {
	if limit == 0 {
		return 0
	}
	adjusted := consumed - DefaultFreeMessages
	if adjusted < 0 {
		adjusted = 0
	}
	return int64(limit) - adjusted
}

// DetailedSettings is the full entitlement view: the settings snapshot
// plus payment history and derived message consumption.
type DetailedSettings struct {
	Settings          *Settings
	Payments          []Payment
	ConsumedMessages  int64
	RemainingMessages int64
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullInt32Ptr safely extracts an int32 pointer from sql.NullInt32.
func NullInt32Ptr(ni sql.NullInt32) *int32 {
	if ni.Valid {
		return &ni.Int32
	}
	return nil
}

// NullTimePtr safely extracts a time pointer from sql.NullTime.
func NullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// ToNullInt32 converts an int32 pointer to sql.NullInt32.
func ToNullInt32(n *int32) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{Valid: false}
	}
	return sql.NullInt32{Int32: *n, Valid: true}
}

// ToNullTime converts a time pointer to sql.NullTime.
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
