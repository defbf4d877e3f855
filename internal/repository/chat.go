package repository

import (
	"context"

	"github.com/google/uuid"
)

const createChatMessage = `-- name: CreateChatMessage :one
INSERT INTO chat_messages (user_id, chat_token, question, answer)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, chat_token, question, answer, created_at
`

type CreateChatMessageParams struct {
	UserID    uuid.UUID
	ChatToken string
	Question  string
	Answer    string
}

func (q *Queries) CreateChatMessage(ctx context.Context, arg CreateChatMessageParams) (ChatMessage, error) {
	row := q.db.QueryRowContext(ctx, createChatMessage,
		arg.UserID,
		arg.ChatToken,
		arg.Question,
		arg.Answer,
	)
	var i ChatMessage
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ChatToken,
		&i.Question,
		&i.Answer,
		&i.CreatedAt,
	)
	return i, err
}

const listChatMessages = `-- name: ListChatMessages :many
SELECT id, user_id, chat_token, question, answer, created_at
FROM chat_messages
WHERE user_id = $1 AND chat_token = $2
ORDER BY id ASC
`

type ListChatMessagesParams struct {
	UserID    uuid.UUID
	ChatToken string
}

func (q *Queries) ListChatMessages(ctx context.Context, arg ListChatMessagesParams) ([]ChatMessage, error) {
	rows, err := q.db.QueryContext(ctx, listChatMessages, arg.UserID, arg.ChatToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChatMessage
	for rows.Next() {
		var i ChatMessage
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ChatToken,
			&i.Question,
			&i.Answer,
			&i.CreatedAt,
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

const countChatMessages = `-- name: CountChatMessages :one
SELECT COUNT(*)
FROM chat_messages
WHERE user_id = $1 AND chat_token = $2
`

type CountChatMessagesParams struct {
	UserID    uuid.UUID
	ChatToken string
}

func (q *Queries) CountChatMessages(ctx context.Context, arg CountChatMessagesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countChatMessages, arg.UserID, arg.ChatToken)
	var count int64
	err := row.Scan(&count)
	return count, err
}
