package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/mocks"
	"github.com/lorrc/dm-backend/internal/core/ports"
	"github.com/lorrc/dm-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReactionService_React(t *testing.T) {
	ctx := context.Background()
	messageID := uuid.New()

	message := &domain.Message{
		ID:        messageID,
		From:      "alice",
		To:        "bob",
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("success publishes event with participants attached", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		stored := &domain.Reaction{
			ID:        uuid.New(),
			MessageID: messageID,
			Username:  "bob",
			Content:   "👍",
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}

		mockMessageRepo.On("GetByID", ctx, messageID).Return(message, nil)
		mockReactionRepo.On("Upsert", ctx, messageID, "bob", "👍").Return(stored, nil)
		mockPublisher.On("Publish", mock.MatchedBy(func(e domain.Event) bool {
			re, ok := e.Payload.(*domain.ReactionEvent)
			return ok &&
				e.Type == domain.EventReactionChanged &&
				re.MessageFrom == "alice" &&
				re.MessageTo == "bob" &&
				re.Reaction == stored
		})).Return()

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "bob",
			MessageID: messageID,
			Content:   "👍",
		})

		require.NoError(t, err)
		assert.Equal(t, stored, reaction)

		mockReactionRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("unauthenticated actor", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "",
			MessageID: messageID,
			Content:   "👍",
		})

		assert.Nil(t, reaction)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("rejects content outside the alphabet", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "bob",
			MessageID: messageID,
			Content:   "🔥",
		})

		assert.Nil(t, reaction)
		assert.ErrorIs(t, err, apperrors.ErrInvalidReaction)
		mockMessageRepo.AssertNotCalled(t, "GetByID")
		mockReactionRepo.AssertNotCalled(t, "Upsert")
	})

	t.Run("message not found", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		mockMessageRepo.On("GetByID", ctx, messageID).Return(nil, apperrors.ErrMessageNotFound)

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "bob",
			MessageID: messageID,
			Content:   "👍",
		})

		assert.Nil(t, reaction)
		assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
		mockReactionRepo.AssertNotCalled(t, "Upsert")
	})

	t.Run("non participant is forbidden", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		mockMessageRepo.On("GetByID", ctx, messageID).Return(message, nil)

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "carol",
			MessageID: messageID,
			Content:   "👍",
		})

		assert.Nil(t, reaction)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockReactionRepo.AssertNotCalled(t, "Upsert")
		mockPublisher.AssertNotCalled(t, "Publish")
	})

	t.Run("custom alphabet is honored", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.NewReactionSet("🔥"), mockPublisher, testLogger())

		stored := &domain.Reaction{
			ID:        uuid.New(),
			MessageID: messageID,
			Username:  "alice",
			Content:   "🔥",
		}

		mockMessageRepo.On("GetByID", ctx, messageID).Return(message, nil)
		mockReactionRepo.On("Upsert", ctx, messageID, "alice", "🔥").Return(stored, nil)
		mockPublisher.On("Publish", mock.Anything).Return()

		reaction, err := svc.React(ctx, ports.ReactParams{
			Actor:     "alice",
			MessageID: messageID,
			Content:   "🔥",
		})

		require.NoError(t, err)
		assert.Equal(t, "🔥", reaction.Content)
	})
}

func TestReactionService_ReactionsFor(t *testing.T) {
	ctx := context.Background()
	messageID := uuid.New()

	message := &domain.Message{
		ID:      messageID,
		From:    "alice",
		To:      "bob",
		Content: "hello",
	}

	t.Run("participant can list reactions", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		expected := []*domain.Reaction{
			{ID: uuid.New(), MessageID: messageID, Username: "bob", Content: "👍"},
		}

		mockMessageRepo.On("GetByID", ctx, messageID).Return(message, nil)
		mockReactionRepo.On("ListByMessageID", ctx, messageID).Return(expected, nil)

		reactions, err := svc.ReactionsFor(ctx, "alice", messageID)

		require.NoError(t, err)
		assert.Equal(t, expected, reactions)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		mockMessageRepo.On("GetByID", ctx, messageID).Return(message, nil)

		reactions, err := svc.ReactionsFor(ctx, "carol", messageID)

		assert.Nil(t, reactions)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockReactionRepo.AssertNotCalled(t, "ListByMessageID")
	})

	t.Run("unauthenticated viewer", func(t *testing.T) {
		mockReactionRepo := mocks.NewMockReactionRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewReactionService(
			mockReactionRepo, mockMessageRepo, domain.DefaultReactionSet(), mockPublisher, testLogger())

		reactions, err := svc.ReactionsFor(ctx, "", messageID)

		assert.Nil(t, reactions)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}
