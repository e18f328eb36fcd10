package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role tags a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SystemTip opens every transcript.
const SystemTip = "Tip: The internal docs have exact function signatures. Use the Repo Docs tab to find implementation details."

// FallbackMessage replaces the assistant reply when an exchange fails.
const FallbackMessage = "I'm having trouble connecting right now. Please try again in a moment."

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only message list kept in memory.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
}

// NewTranscript returns a transcript seeded with SystemTip.
func NewTranscript() *Transcript {
	t := &Transcript{now: time.Now}
	t.Append(RoleSystem, SystemTip)
	return t
}

// Append adds a message and returns it.
func (t *Transcript) Append(role Role, content string) Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: t.now(),
	}
	t.messages = append(t.messages, m)
	return m
}

// Messages returns a copy of every message in order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.messages...)
}

// Last returns the newest message.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
