// This file defines the User domain type for anonymous chat sessions.
//
// Users are created implicitly when a chat session is initialized. The
// chat token is an opaque bearer credential: it is generated once, handed
// to the client, and matched exactly on every subsequent call. There is
// no signature or expiry on the token; that is a documented limitation of
// the product, not an oversight in this package.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity anchor for a chat session.
type User struct {
	ID             uuid.UUID
	ChatToken      string // Opaque bearer credential, 32 hex characters
	Subscribed     bool
	SubscriptionID *int32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionInit is the result of initializing a new chat session.
type SessionInit struct {
	UserID    uuid.UUID
	ChatToken string
	Settings  *Settings
}

// SaveMessageParams contains the inputs for persisting a question/answer
// exchange. Answer may be empty, in which case the responder produces the
// stubbed reply.
type SaveMessageParams struct {
	UserID    uuid.UUID
	ChatToken string
	Question  string
	Answer    string
}

// SaveMessageResult reports the outcome of a message save: the remaining
// free allowance for unsubscribed users, or the unchanged counter for
// subscribed ones.
type SaveMessageResult struct {
	UserID         uuid.UUID
	Answer         string
	RemainingLimit int32
}
