package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
)

// MaxMessageLength caps the content of a single direct message.
const MaxMessageLength = 4000

// Message is a direct message between two users. Messages are immutable once
// created; the conversation they belong to is the unordered {From, To} pair.
type Message struct {
	ID        uuid.UUID
	From      string
	To        string
	Content   string
	CreatedAt time.Time
}

// MessageParams holds the input for creating a new message.
type MessageParams struct {
	From    string
	To      string
	Content string
}

// NewMessage is a factory function to create a valid new message.
// The sender/recipient comparison is case-insensitive so that "Alice"
// cannot message "alice" as a loophole around the self-message rule.
func NewMessage(params MessageParams) (*Message, error) {
	if params.From == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if strings.EqualFold(params.From, params.To) {
		return nil, apperrors.ErrSelfMessage
	}

	content := params.Content
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return nil, apperrors.ErrMessageTooLong
	}

	return &Message{
		ID:        uuid.New(),
		From:      params.From,
		To:        params.To,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsParticipant reports whether the given user is the sender or recipient.
func (m *Message) IsParticipant(username string) bool {
	return m.From == username || m.To == username
}

// Conversation returns the canonical key of the conversation this message
// belongs to.
func (m *Message) Conversation() ConversationKey {
	return NewConversationKey(m.From, m.To)
}
