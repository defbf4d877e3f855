package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment records a subscription purchase for a (user, token) pair.
//
// Card data is never stored raw: only the last four digits and an opaque
// card token minted at purchase time are kept. Payment rows are deleted
// wholesale on cancellation; there is no archival history.
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

// CardDetails carries the raw card fields from the purchase request.
// They exist only in memory for the duration of the purchase.
type CardDetails struct {
	Number string
	CVC    string
	Expiry string // MM/YY
}

var nonDigits = regexp.MustCompile(`\D`)

// Last4 returns the final four digits of the card number.
func (c CardDetails) Last4() string {
	digits := nonDigits.ReplaceAllString(c.Number, "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Validate performs minimal sanity checks on the card fields. This is not
// a Luhn check or gateway validation; the system has no payment gateway.
func (c CardDetails) Validate() error {
	digits := nonDigits.ReplaceAllString(c.Number, "")
	if len(digits) < 12 || len(digits) > 19 {
		return Invalid("card.validate", "card number must be 12-19 digits")
	}
	if n := len(strings.TrimSpace(c.CVC)); n < 3 || n > 4 {
		return Invalid("card.validate", "cvc must be 3 or 4 digits")
	}
	if strings.TrimSpace(c.Expiry) == "" {
		return Invalid("card.validate", "card expiry is required")
	}
	return nil
}

// PurchaseParams contains the inputs for a subscription purchase.
type PurchaseParams struct {
	UserID    uuid.UUID
	ChatToken string
	PlanID    int32
	AutoRenew bool
	Card      CardDetails
}

// PurchaseResult is returned on a successful purchase: the payment
// record, the plan bought, and the fresh entitlement snapshot. The
// settings returned here are server-authoritative; clients should not
// cache their own copy.
type PurchaseResult struct {
	Payment  *Payment
	Plan     *Plan
	Settings *Settings
}
