package repository

import (
	"context"

	"github.com/google/uuid"
)

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (user_id, subscription_id, chat_token, auto_renew, card_last4, card_token)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, subscription_id, chat_token, auto_renew, card_last4, card_token, created_at, updated_at
`

type CreatePaymentParams struct {
	UserID         uuid.UUID
	SubscriptionID int32
	ChatToken      string
	AutoRenew      bool
	CardLast4      string
	CardToken      string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, createPayment,
		arg.UserID,
		arg.SubscriptionID,
		arg.ChatToken,
		arg.AutoRenew,
		arg.CardLast4,
		arg.CardToken,
	)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SubscriptionID,
		&i.ChatToken,
		&i.AutoRenew,
		&i.CardLast4,
		&i.CardToken,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPaymentsByUserAndToken = `-- name: ListPaymentsByUserAndToken :many
SELECT id, user_id, subscription_id, chat_token, auto_renew, card_last4, card_token, created_at, updated_at
FROM payments
WHERE user_id = $1 AND chat_token = $2
ORDER BY created_at DESC
`

type ListPaymentsByUserAndTokenParams struct {
	UserID    uuid.UUID
	ChatToken string
}

func (q *Queries) ListPaymentsByUserAndToken(ctx context.Context, arg ListPaymentsByUserAndTokenParams) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPaymentsByUserAndToken, arg.UserID, arg.ChatToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.SubscriptionID,
			&i.ChatToken,
			&i.AutoRenew,
			&i.CardLast4,
			&i.CardToken,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePaymentsAutoRenew = `-- name: UpdatePaymentsAutoRenew :execrows
UPDATE payments
SET auto_renew = $3,
    updated_at = NOW()
WHERE user_id = $1 AND chat_token = $2
`

type UpdatePaymentsAutoRenewParams struct {
	UserID    uuid.UUID
	ChatToken string
	AutoRenew bool
}

func (q *Queries) UpdatePaymentsAutoRenew(ctx context.Context, arg UpdatePaymentsAutoRenewParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePaymentsAutoRenew, arg.UserID, arg.ChatToken, arg.AutoRenew)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePaymentsByUserAndToken = `-- name: DeletePaymentsByUserAndToken :execrows
DELETE FROM payments
WHERE user_id = $1 AND chat_token = $2
`

type DeletePaymentsByUserAndTokenParams struct {
	UserID    uuid.UUID
	ChatToken string
}

func (q *Queries) DeletePaymentsByUserAndToken(ctx context.Context, arg DeletePaymentsByUserAndTokenParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePaymentsByUserAndToken, arg.UserID, arg.ChatToken)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
