package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createSettings = `-- name: CreateSettings :one
INSERT INTO settings (user_id)
VALUES ($1)
RETURNING user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at
`

func (q *Queries) CreateSettings(ctx context.Context, userID uuid.UUID) (Setting, error) {
	row := q.db.QueryRowContext(ctx, createSettings, userID)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const getSettingsByUser = `-- name: GetSettingsByUser :one
SELECT user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at
FROM settings
WHERE user_id = $1
`

func (q *Queries) GetSettingsByUser(ctx context.Context, userID uuid.UUID) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSettingsByUser, userID)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const getSettingsByUserForUpdate = `-- name: GetSettingsByUserForUpdate :one
SELECT user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at
FROM settings
WHERE user_id = $1
FOR UPDATE
`

// GetSettingsByUserForUpdate locks the user's settings row for the
// duration of the enclosing transaction. Quota checks and entitlement
// transitions go through this so concurrent activity on the same user
// serializes on the row lock.
func (q *Queries) GetSettingsByUserForUpdate(ctx context.Context, userID uuid.UUID) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSettingsByUserForUpdate, userID)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const getSettingsByUserAndToken = `-- name: GetSettingsByUserAndToken :one
SELECT s.user_id, s.subscription_id, s.free_messages, s.subscription_start, s.subscription_end, s.days_left, s.auto_renew, s.updated_at
FROM settings s
JOIN users u ON s.user_id = u.id
WHERE s.user_id = $1 AND u.chat_token = $2
`

type GetSettingsByUserAndTokenParams struct {
	UserID    uuid.UUID
	ChatToken string
}

func (q *Queries) GetSettingsByUserAndToken(ctx context.Context, arg GetSettingsByUserAndTokenParams) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSettingsByUserAndToken, arg.UserID, arg.ChatToken)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const decrementFreeMessages = `-- name: DecrementFreeMessages :one
UPDATE settings
SET free_messages = free_messages - 1,
    updated_at = NOW()
WHERE user_id = $1 AND free_messages > 0
RETURNING free_messages
`

// DecrementFreeMessages spends one free message. The guard on the
// current counter makes the decrement conditional at the database, so two
// concurrent messages can never both spend the last slot.
func (q *Queries) DecrementFreeMessages(ctx context.Context, userID uuid.UUID) (int32, error) {
	row := q.db.QueryRowContext(ctx, decrementFreeMessages, userID)
	var free_messages int32
	err := row.Scan(&free_messages)
	return free_messages, err
}

const upsertSettings = `-- name: UpsertSettings :one
INSERT INTO settings (user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (user_id) DO UPDATE
SET subscription_id = EXCLUDED.subscription_id,
    free_messages = EXCLUDED.free_messages,
    subscription_start = EXCLUDED.subscription_start,
    subscription_end = EXCLUDED.subscription_end,
    days_left = EXCLUDED.days_left,
    auto_renew = EXCLUDED.auto_renew,
    updated_at = NOW()
RETURNING user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at
`

type UpsertSettingsParams struct {
	UserID            uuid.UUID
	SubscriptionID    sql.NullInt32
	FreeMessages      int32
	SubscriptionStart sql.NullTime
	SubscriptionEnd   sql.NullTime
	DaysLeft          sql.NullInt32
	AutoRenew         bool
}

func (q *Queries) UpsertSettings(ctx context.Context, arg UpsertSettingsParams) (Setting, error) {
	row := q.db.QueryRowContext(ctx, upsertSettings,
		arg.UserID,
		arg.SubscriptionID,
		arg.FreeMessages,
		arg.SubscriptionStart,
		arg.SubscriptionEnd,
		arg.DaysLeft,
		arg.AutoRenew,
	)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const resetSettings = `-- name: ResetSettings :one
UPDATE settings
SET subscription_id = NULL,
    free_messages = $2,
    subscription_start = NULL,
    subscription_end = NULL,
    days_left = NULL,
    auto_renew = FALSE,
    updated_at = NOW()
WHERE user_id = $1
RETURNING user_id, subscription_id, free_messages, subscription_start, subscription_end, days_left, auto_renew, updated_at
`

type ResetSettingsParams struct {
	UserID       uuid.UUID
	FreeMessages int32
}

func (q *Queries) ResetSettings(ctx context.Context, arg ResetSettingsParams) (Setting, error) {
	row := q.db.QueryRowContext(ctx, resetSettings, arg.UserID, arg.FreeMessages)
	var i Setting
	err := row.Scan(
		&i.UserID,
		&i.SubscriptionID,
		&i.FreeMessages,
		&i.SubscriptionStart,
		&i.SubscriptionEnd,
		&i.DaysLeft,
		&i.AutoRenew,
		&i.UpdatedAt,
	)
	return i, err
}

const updateSettingsAutoRenew = `-- name: UpdateSettingsAutoRenew :execrows
UPDATE settings
SET auto_renew = $2,
    updated_at = NOW()
WHERE user_id = $1
`

type UpdateSettingsAutoRenewParams struct {
	UserID    uuid.UUID
	AutoRenew bool
}

func (q *Queries) UpdateSettingsAutoRenew(ctx context.Context, arg UpdateSettingsAutoRenewParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateSettingsAutoRenew, arg.UserID, arg.AutoRenew)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
