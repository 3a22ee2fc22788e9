package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// ReactionService implements the business logic for emoji reactions. The
// one-reaction-per-(message, user) invariant is enforced structurally by the
// repository's atomic upsert, not by read-then-write in this layer.
type ReactionService struct {
	reactionRepo ports.ReactionRepository
	messageRepo  ports.MessageRepository
	reactions    domain.ReactionSet
	publisher    ports.EventPublisher
	logger       *slog.Logger
}

var _ ports.ReactionService = (*ReactionService)(nil)

// NewReactionService creates a new reaction service. The reaction alphabet
// is injected so validation and configuration share a single source.
func NewReactionService(
	reactionRepo ports.ReactionRepository,
	messageRepo ports.MessageRepository,
	reactions domain.ReactionSet,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ports.ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		messageRepo:  messageRepo,
		reactions:    reactions,
		publisher:    publisher,
		logger:       logger.With("service", "reaction"),
	}
}

// React attaches the actor's reaction to a message, replacing any previous
// reaction by the same actor on the same message, and publishes a
// reaction-changed event.
func (s *ReactionService) React(ctx context.Context, params ports.ReactParams) (*domain.Reaction, error) {
	if params.Actor == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	// 1. The content must come from the configured alphabet.
	if !s.reactions.Contains(params.Content) {
		return nil, apperrors.ErrInvalidReaction
	}

	// 2. The target message must exist and the actor must be a participant.
	message, err := s.messageRepo.GetByID(ctx, params.MessageID)
	if err != nil {
		return nil, err
	}
	if !message.IsParticipant(params.Actor) {
		return nil, apperrors.ErrForbidden
	}

	// 3. Atomic create-or-replace keyed by (message, actor).
	reaction, err := s.reactionRepo.Upsert(ctx, message.ID, params.Actor, params.Content)
	if err != nil {
		return nil, err
	}

	// 4. Fan out with the owning message's participants attached, so
	// delivery-time visibility checks stay pure.
	s.publisher.Publish(domain.NewReactionChangedEvent(reaction, message))

	s.logger.Info("reaction recorded",
		"message_id", message.ID,
		"username", reaction.Username,
		"content", reaction.Content,
	)

	return reaction, nil
}

// ReactionsFor returns the current reactions on a message. Only participants
// of the message may read them.
func (s *ReactionService) ReactionsFor(ctx context.Context, viewer string, messageID uuid.UUID) ([]*domain.Reaction, error) {
	if viewer == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !message.IsParticipant(viewer) {
		return nil, apperrors.ErrForbidden
	}

	return s.reactionRepo.ListByMessageID(ctx, messageID)
}
