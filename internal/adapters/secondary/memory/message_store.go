package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// MessageStore is an in-memory ports.MessageRepository. Messages are indexed
// by ID and by canonical conversation key.
type MessageStore struct {
	mu            sync.RWMutex
	byID          map[uuid.UUID]*domain.Message
	conversations map[domain.ConversationKey][]*domain.Message
}

var _ ports.MessageRepository = (*MessageStore)(nil)

// NewMessageStore creates an empty message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		byID:          make(map[uuid.UUID]*domain.Message),
		conversations: make(map[domain.ConversationKey][]*domain.Message),
	}
}

func (s *MessageStore) Create(_ context.Context, message *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *message
	s.byID[stored.ID] = &stored

	key := stored.Conversation()
	s.conversations[key] = append(s.conversations[key], &stored)

	out := stored
	return &out, nil
}

func (s *MessageStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}

	out := *message
	return &out, nil
}

// ListByConversation returns the conversation's messages newest first. For
// equal timestamps the later insertion wins, so a message just written is
// always the head of its conversation.
func (s *MessageStore) ListByConversation(_ context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	s.mu.RLock()
	stored := s.conversations[key]
	messages := make([]*domain.Message, len(stored))
	for i, m := range stored {
		out := *m
		messages[len(stored)-1-i] = &out
	}
	s.mu.RUnlock()

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}
