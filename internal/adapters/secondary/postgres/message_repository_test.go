package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMessage(t *testing.T, from, to, content string, at time.Time) *domain.Message {
	t.Helper()

	repo := NewMessageRepository(testPool)
	message, err := repo.Create(context.Background(), &domain.Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Content:   content,
		CreatedAt: at,
	})
	require.NoError(t, err)
	return message
}

func TestMessageRepository_CreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)

	alice := createTestUser(t, uniqueUsername("alice")).Username
	bob := createTestUser(t, uniqueUsername("bob")).Username

	t.Run("round trip", func(t *testing.T) {
		created := createTestMessage(t, alice, bob, "hello", time.Now().UTC())

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, alice, fetched.From)
		assert.Equal(t, bob, fetched.To)
		assert.Equal(t, "hello", fetched.Content)
	})

	t.Run("unknown id", func(t *testing.T) {
		message, err := repo.GetByID(ctx, uuid.New())

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	})
}

func TestMessageRepository_ListByConversation(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)

	t.Run("newest first across both directions", func(t *testing.T) {
		alice := createTestUser(t, uniqueUsername("alice")).Username
		bob := createTestUser(t, uniqueUsername("bob")).Username
		now := time.Now().UTC()

		createTestMessage(t, alice, bob, "oldest", now.Add(-2*time.Minute))
		createTestMessage(t, bob, alice, "middle", now.Add(-time.Minute))
		createTestMessage(t, alice, bob, "newest", now)

		messages, err := repo.ListByConversation(ctx, domain.NewConversationKey(bob, alice))
		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, "newest", messages[0].Content)
		assert.Equal(t, "middle", messages[1].Content)
		assert.Equal(t, "oldest", messages[2].Content)
	})

	t.Run("equal timestamps resolve to later insertion", func(t *testing.T) {
		alice := createTestUser(t, uniqueUsername("alice")).Username
		bob := createTestUser(t, uniqueUsername("bob")).Username
		at := time.Now().UTC()

		for i := 0; i < 5; i++ {
			createTestMessage(t, alice, bob, fmt.Sprintf("m%d", i), at)
		}

		messages, err := repo.ListByConversation(ctx, domain.NewConversationKey(alice, bob))
		require.NoError(t, err)
		require.Len(t, messages, 5)
		assert.Equal(t, "m4", messages[0].Content)
		assert.Equal(t, "m0", messages[4].Content)
	})

	t.Run("excludes other conversations", func(t *testing.T) {
		alice := createTestUser(t, uniqueUsername("alice")).Username
		bob := createTestUser(t, uniqueUsername("bob")).Username
		carol := createTestUser(t, uniqueUsername("carol")).Username

		createTestMessage(t, alice, bob, "for bob", time.Now().UTC())
		createTestMessage(t, alice, carol, "for carol", time.Now().UTC())

		messages, err := repo.ListByConversation(ctx, domain.NewConversationKey(alice, bob))
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "for bob", messages[0].Content)
	})

	t.Run("empty conversation", func(t *testing.T) {
		alice := createTestUser(t, uniqueUsername("alice")).Username
		bob := createTestUser(t, uniqueUsername("bob")).Username

		messages, err := repo.ListByConversation(ctx, domain.NewConversationKey(alice, bob))
		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}
