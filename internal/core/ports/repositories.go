package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/dm-backend/internal/core/domain"
)

// UserRepository is the secondary port for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// MessageRepository is the secondary port for message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)

	// ListByConversation returns the messages of a conversation ordered by
	// CreatedAt descending, ties broken by insertion order (stable).
	ListByConversation(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error)
}

// ReactionRepository is the secondary port for reaction persistence.
type ReactionRepository interface {
	// Upsert atomically creates the reaction for (messageID, username) or, if
	// one already exists, replaces its content in place. The stored record's
	// ID is preserved across replacements. Implementations must guarantee
	// that two concurrent upserts for the same pair can never leave two
	// records behind.
	Upsert(ctx context.Context, messageID uuid.UUID, username, content string) (*domain.Reaction, error)

	ListByMessageID(ctx context.Context, messageID uuid.UUID) ([]*domain.Reaction, error)
}
