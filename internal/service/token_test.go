package service

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Chat Token Generation Tests
// =============================================================================

func TestGenerateChatToken_Format(t *testing.T) {
	token, err := generateChatToken()
	require.NoError(t, err)

	// 16 random bytes hex-encoded to 32 characters
	assert.Len(t, token, 32)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err, "token should be valid hex")
}

func TestGenerateChatToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateChatToken()
		require.NoError(t, err)
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestNewCardToken_Format(t *testing.T) {
	token, err := newCardToken()
	require.NoError(t, err)

	assert.Len(t, token, 4+32)
	assert.Equal(t, "tok_", token[:4])

	_, err = hex.DecodeString(token[4:])
	assert.NoError(t, err)
}

func TestBoolLabel(t *testing.T) {
	if boolLabel(true) != "true" || boolLabel(false) != "false" {
		t.Error("boolLabel should render lowercase true/false")
	}
}
