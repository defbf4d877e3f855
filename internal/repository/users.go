package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (chat_token)
VALUES ($1)
RETURNING id, chat_token, subscribed, subscription_id, created_at, updated_at
`

func (q *Queries) CreateUser(ctx context.Context, chatToken string) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, chatToken)
	var i User
	err := row.Scan(
		&i.ID,
		&i.ChatToken,
		&i.Subscribed,
		&i.SubscriptionID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, chat_token, subscribed, subscription_id, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.ChatToken,
		&i.Subscribed,
		&i.SubscriptionID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByIDAndToken = `-- name: GetUserByIDAndToken :one
SELECT id, chat_token, subscribed, subscription_id, created_at, updated_at
FROM users
WHERE id = $1 AND chat_token = $2
`

type GetUserByIDAndTokenParams struct {
	ID        uuid.UUID
	ChatToken string
}

func (q *Queries) GetUserByIDAndToken(ctx context.Context, arg GetUserByIDAndTokenParams) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByIDAndToken, arg.ID, arg.ChatToken)
	var i User
	err := row.Scan(
		&i.ID,
		&i.ChatToken,
		&i.Subscribed,
		&i.SubscriptionID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setUserSubscription = `-- name: SetUserSubscription :exec
UPDATE users
SET subscribed = TRUE,
    subscription_id = $2,
    updated_at = NOW()
WHERE id = $1
`

type SetUserSubscriptionParams struct {
	ID             uuid.UUID
	SubscriptionID sql.NullInt32
}

func (q *Queries) SetUserSubscription(ctx context.Context, arg SetUserSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, setUserSubscription, arg.ID, arg.SubscriptionID)
	return err
}

const clearUserSubscription = `-- name: ClearUserSubscription :exec
UPDATE users
SET subscribed = FALSE,
    subscription_id = NULL,
    updated_at = NOW()
WHERE id = $1
`

func (q *Queries) ClearUserSubscription(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, clearUserSubscription, id)
	return err
}
