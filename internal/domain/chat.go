package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted question/answer exchange. Rows are
// append-only and ordered by their sequence id.
type ChatMessage struct {
	ID        int64
	UserID    uuid.UUID
	ChatToken string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// HistoryEntry is a single line of the transcript as the client renders
// it: the user's question followed by the bot's answer.
type HistoryEntry struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	HistoryEntryUser = "user"
	HistoryEntryBot  = "bot"
)

// InterleaveHistory expands stored exchanges into the transcript format,
// preserving insertion order: question then answer for each message.
func InterleaveHistory(msgs []ChatMessage) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(msgs)*2)
	for _, m := range msgs {
		entries = append(entries,
			HistoryEntry{Type: HistoryEntryUser, Text: m.Question},
			HistoryEntry{Type: HistoryEntryBot, Text: m.Answer},
		)
	}
	return entries
}
