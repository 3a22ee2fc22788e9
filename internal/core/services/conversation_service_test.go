package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConversationService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("success publishes a message created event", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		created := &domain.Message{
			ID:        uuid.New(),
			From:      "alice",
			To:        "bob",
			Content:   "hello bob",
			CreatedAt: time.Now().UTC(),
		}

		mockUserRepo.On("GetByUsername", ctx, "bob").
			Return(&domain.User{Username: "bob"}, nil)
		mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Return(created, nil)
		mockPublisher.On("Publish", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventMessageCreated
		})).Return()

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "alice",
			Recipient: "bob",
			Content:   "hello bob",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice", message.From)
		assert.Equal(t, "bob", message.To)
		assert.Equal(t, "hello bob", message.Content)

		mockUserRepo.AssertExpectations(t)
		mockMessageRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("unauthenticated when sender empty", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "",
			Recipient: "bob",
			Content:   "hi",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		mockMessageRepo.AssertNotCalled(t, "Create")
	})

	t.Run("unknown recipient", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		mockUserRepo.On("GetByUsername", ctx, "ghost").
			Return(nil, apperrors.ErrUserNotFound)

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "alice",
			Recipient: "ghost",
			Content:   "anyone there?",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		mockMessageRepo.AssertNotCalled(t, "Create")
		mockPublisher.AssertNotCalled(t, "Publish")
	})

	t.Run("rejects message to self", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		mockUserRepo.On("GetByUsername", ctx, "alice").
			Return(&domain.User{Username: "alice"}, nil)

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "alice",
			Recipient: "alice",
			Content:   "talking to myself",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrSelfMessage)
		mockMessageRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects blank content", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		mockUserRepo.On("GetByUsername", ctx, "bob").
			Return(&domain.User{Username: "bob"}, nil)

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "alice",
			Recipient: "bob",
			Content:   "   ",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrMessageEmpty)
	})

	t.Run("no event published when persistence fails", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		mockUserRepo.On("GetByUsername", ctx, "bob").
			Return(&domain.User{Username: "bob"}, nil)
		mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Return(nil, errors.New("connection lost"))

		message, err := svc.SendMessage(ctx, ports.SendMessageParams{
			Sender:    "alice",
			Recipient: "bob",
			Content:   "hello",
		})

		assert.Nil(t, message)
		assert.Error(t, err)
		mockPublisher.AssertNotCalled(t, "Publish")
	})
}

func TestConversationService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("returns messages newest first", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		now := time.Now().UTC()
		expected := []*domain.Message{
			{ID: uuid.New(), From: "bob", To: "alice", Content: "newer", CreatedAt: now},
			{ID: uuid.New(), From: "alice", To: "bob", Content: "older", CreatedAt: now.Add(-time.Minute)},
		}

		mockUserRepo.On("GetByUsername", ctx, "bob").
			Return(&domain.User{Username: "bob"}, nil)
		mockMessageRepo.On("ListByConversation", ctx, domain.NewConversationKey("alice", "bob")).
			Return(expected, nil)

		messages, err := svc.History(ctx, ports.HistoryParams{Viewer: "alice", Other: "bob"})

		require.NoError(t, err)
		assert.Equal(t, expected, messages)
	})

	t.Run("unauthenticated viewer", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		messages, err := svc.History(ctx, ports.HistoryParams{Viewer: "", Other: "bob"})

		assert.Nil(t, messages)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("blank other user", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		messages, err := svc.History(ctx, ports.HistoryParams{Viewer: "alice", Other: "  "})

		assert.Nil(t, messages)
		assert.ErrorIs(t, err, apperrors.ErrUsernameRequired)
	})

	t.Run("unknown other user", func(t *testing.T) {
		mockUserRepo := mocks.NewMockUserRepository()
		mockMessageRepo := mocks.NewMockMessageRepository()
		mockPublisher := mocks.NewMockEventPublisher()

		svc := services.NewConversationService(mockUserRepo, mockMessageRepo, mockPublisher, testLogger())

		mockUserRepo.On("GetByUsername", ctx, "ghost").
			Return(nil, apperrors.ErrUserNotFound)

		messages, err := svc.History(ctx, ports.HistoryParams{Viewer: "alice", Other: "ghost"})

		assert.Nil(t, messages)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		mockMessageRepo.AssertNotCalled(t, "ListByConversation")
	})
}
