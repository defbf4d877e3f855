// Package ai defines the interface for the answer-producing collaborator.
//
// The chat core treats the responder as an opaque synchronous text
// producer. Only the mock provider ships today; a real provider would
// implement the same interface.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Responder produces the answer text for a user's question.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}

// Error values for responder operations.
var (
	// EEmptyQuestion indicates the question was blank.
	EEmptyQuestion = errors.New("question is empty")

	// EUnavailable indicates the responder is temporarily unavailable.
	EUnavailable = errors.New("responder temporarily unavailable")
)

// WrapError wraps an error with context about the responder operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
