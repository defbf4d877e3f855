package repository

import "context"

const listSubscriptionPlans = `-- name: ListSubscriptionPlans :many
SELECT id, plan_type, billing_cycle, price, max_messages, created_at
FROM subscription_plans
ORDER BY id
`

func (q *Queries) ListSubscriptionPlans(ctx context.Context) ([]SubscriptionPlan, error) {
	rows, err := q.db.QueryContext(ctx, listSubscriptionPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubscriptionPlan
	for rows.Next() {
		var i SubscriptionPlan
		if err := rows.Scan(
			&i.ID,
			&i.PlanType,
			&i.BillingCycle,
			&i.Price,
			&i.MaxMessages,
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

const getSubscriptionPlan = `-- name: GetSubscriptionPlan :one
SELECT id, plan_type, billing_cycle, price, max_messages, created_at
FROM subscription_plans
WHERE id = $1
`

func (q *Queries) GetSubscriptionPlan(ctx context.Context, id int32) (SubscriptionPlan, error) {
	row := q.db.QueryRowContext(ctx, getSubscriptionPlan, id)
	var i SubscriptionPlan
	err := row.Scan(
		&i.ID,
		&i.PlanType,
		&i.BillingCycle,
		&i.Price,
		&i.MaxMessages,
		&i.CreatedAt,
	)
	return i, err
}
