package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/dm-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

// SendMessageParams defines the input for sending a direct message.
type SendMessageParams struct {
	Sender    string
	Recipient string
	Content   string
}

// HistoryParams defines the input for reading a conversation's history.
type HistoryParams struct {
	Viewer string
	Other  string
}

// ReactParams defines the input for reacting to a message.
type ReactParams struct {
	Actor     string
	MessageID uuid.UUID
	Content   string
}

// ConversationService defines the core operations for exchanging messages.
type ConversationService interface {
	SendMessage(ctx context.Context, params SendMessageParams) (*domain.Message, error)
	History(ctx context.Context, params HistoryParams) ([]*domain.Message, error)
}

// ReactionService defines the core operations for message reactions.
type ReactionService interface {
	React(ctx context.Context, params ReactParams) (*domain.Reaction, error)
	ReactionsFor(ctx context.Context, viewer string, messageID uuid.UUID) ([]*domain.Reaction, error)
}

// EventPublisher is the port services use to hand a freshly built event to
// the fan-out machinery. Publishing never fails toward the caller; delivery
// problems are absorbed by the bus.
type EventPublisher interface {
	Publish(event domain.Event)
}
