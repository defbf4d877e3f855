// Package domain contains core business types and the entitlement
// arithmetic that governs free quotas and paid subscriptions.
package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BillingCycle is how often a subscription plan renews.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// UnlimitedQuota is the catalog sentinel for plans with no message cap.
// Internally an unlimited plan is stored as a zero message counter; the
// counter is never consulted while a subscription is active.
const UnlimitedQuota = "unlimited"

// Plan is an immutable subscription catalog entry.
type Plan struct {
	ID           int32
	Type         string
	BillingCycle BillingCycle
	Price        string
	MaxMessages  string
	CreatedAt    time.Time
}

var titleCaser = cases.Title(language.English)

// DisplayName returns a human-readable plan name, e.g. "Premium Monthly".
func (p *Plan) DisplayName() string {
	return titleCaser.String(p.Type + " " + string(p.BillingCycle))
}

// Unlimited reports whether the plan carries the unlimited sentinel.
func (p *Plan) Unlimited() bool {
	return strings.EqualFold(p.MaxMessages, UnlimitedQuota)
}

// MessageQuota resolves the plan's message allowance: 0 for unlimited
// plans, otherwise the parsed integer quota. Returns an error when the
// catalog value is neither the sentinel nor a parseable integer.
func (p *Plan) MessageQuota() (int32, error) {
	if p.Unlimited() {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(p.MaxMessages), 10, 32)
	if err != nil || n < 0 {
		return 0, InvalidPlan("plan.quota", "invalid max_messages value in subscription plan")
	}
	return int32(n), nil
}

// Entitlement is the state written to a user's settings row when a plan
// is purchased. DaysLeft is a snapshot taken at purchase time and is not
// refreshed afterwards.
type Entitlement struct {
	PlanID       int32
	FreeMessages int32
	Start        time.Time
	End          time.Time
	DaysLeft     int32
}

// EntitlementAt computes the settings transition for purchasing the plan
// at the given instant. Period bounds are date-only: monthly plans run 30
// days, yearly plans one calendar year. An unrecognized billing cycle is
// rejected rather than producing a zero-length period.
func (p *Plan) EntitlementAt(now time.Time) (*Entitlement, error) {
	quota, err := p.MessageQuota()
	if err != nil {
		return nil, err
	}

	var end time.Time
	switch BillingCycle(strings.ToLower(string(p.BillingCycle))) {
	case BillingCycleMonthly:
		end = now.AddDate(0, 0, 30)
	case BillingCycleYearly:
		end = now.AddDate(1, 0, 0)
	default:
		return nil, InvalidPlan("plan.entitlement", "unrecognized billing cycle in subscription plan")
	}

	return &Entitlement{
		PlanID:       p.ID,
		FreeMessages: quota,
		Start:        truncateToDate(now),
		End:          truncateToDate(end),
		DaysLeft:     daysLeft(now, end),
	}, nil
}

// daysLeft is ceil(end - now) in days.
func daysLeft(now, end time.Time) int32 {
	return int32(math.Ceil(end.Sub(now).Hours() / 24))
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
