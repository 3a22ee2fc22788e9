package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// ConversationService implements the business logic for exchanging direct
// messages. It validates and persists a send request, then hands the
// resulting event to the publisher; it holds no state of its own.
type ConversationService struct {
	userRepo    ports.UserRepository
	messageRepo ports.MessageRepository
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

var _ ports.ConversationService = (*ConversationService)(nil)

// NewConversationService creates a new conversation service.
func NewConversationService(
	userRepo ports.UserRepository,
	messageRepo ports.MessageRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ports.ConversationService {
	return &ConversationService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
		logger:      logger.With("service", "conversation"),
	}
}

// SendMessage validates and persists a new direct message, then publishes a
// message-created event for live subscribers.
func (s *ConversationService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	if params.Sender == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	// 1. Recipient must exist before anything is persisted.
	if _, err := s.userRepo.GetByUsername(ctx, params.Recipient); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	// 2. Build the domain entity; validation (self-message, blank content)
	// lives in the factory.
	message, err := domain.NewMessage(domain.MessageParams{
		From:    params.Sender,
		To:      params.Recipient,
		Content: params.Content,
	})
	if err != nil {
		return nil, err
	}

	// 3. Persist.
	created, err := s.messageRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}

	// 4. Fan out. Publish never fails toward us; dead subscribers are the
	// bus's problem.
	s.publisher.Publish(domain.NewMessageCreatedEvent(created))

	s.logger.Info("message sent",
		"message_id", created.ID,
		"from", created.From,
		"to", created.To,
	)

	return created, nil
}

// History returns the conversation between the viewer and the other user,
// most recent message first. This is a plain finite read; it does not
// register a subscription.
func (s *ConversationService) History(ctx context.Context, params ports.HistoryParams) ([]*domain.Message, error) {
	if params.Viewer == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if strings.TrimSpace(params.Other) == "" {
		return nil, apperrors.ErrUsernameRequired
	}

	other, err := s.userRepo.GetByUsername(ctx, params.Other)
	if err != nil {
		return nil, err
	}

	key := domain.NewConversationKey(params.Viewer, other.Username)
	return s.messageRepo.ListByConversation(ctx, key)
}
