package core

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

// Chat roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single entry in the assistant conversation.
type ChatMessage struct {
	ID      string   `json:"id"`
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	// Timestamp is in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// RelatedData is reserved for rich rendering (charts, table snippets).
	RelatedData any `json:"relatedData,omitempty"`
}

// Time returns the message timestamp as a time.Time.
func (m ChatMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}
