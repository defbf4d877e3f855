package mock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dstanfill/parley/internal/ai"
)

// Provider is a mock responder for testing and development.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	RespondResponse string
	RespondError    error

	// Call tracking for testing
	RespondCalls int
}

// New creates a new mock responder.
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// Respond returns the configured response, or a canned echo of the
// question when none is configured.
func (p *Provider) Respond(ctx context.Context, question string) (string, error) {
	p.RespondCalls++

	if err := ctx.Err(); err != nil {
		return "", ai.WrapError("respond", err)
	}

	if strings.TrimSpace(question) == "" {
		return "", ai.WrapError("respond", ai.EEmptyQuestion)
	}

	if p.RespondError != nil {
		return "", p.RespondError
	}

	if p.RespondResponse != "" {
		return p.RespondResponse, nil
	}

	p.logger.Debug("mock responder called", "question_len", len(question))

	return fmt.Sprintf("This is a mock reply to: %s", question), nil
}
