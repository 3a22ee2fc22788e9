package domain_test

import (
	"strings"
	"testing"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "alice",
			To:      "bob",
			Content: "hello bob",
		})

		require.NoError(t, err)
		assert.NotEqual(t, "", message.ID.String())
		assert.Equal(t, "alice", message.From)
		assert.Equal(t, "bob", message.To)
		assert.Equal(t, "hello bob", message.Content)
		assert.False(t, message.CreatedAt.IsZero())
	})

	t.Run("unauthenticated when sender empty", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "",
			To:      "bob",
			Content: "hello",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("rejects message to self", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "alice",
			To:      "alice",
			Content: "note to self",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrSelfMessage)
	})

	t.Run("self check is case insensitive", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "Alice",
			To:      "alice",
			Content: "sneaky",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrSelfMessage)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "alice",
			To:      "bob",
			Content: "   \t\n",
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrMessageEmpty)
	})

	t.Run("rejects content over limit", func(t *testing.T) {
		message, err := domain.NewMessage(domain.MessageParams{
			From:    "alice",
			To:      "bob",
			Content: strings.Repeat("x", domain.MaxMessageLength+1),
		})

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)
	})
}

func TestMessage_IsParticipant(t *testing.T) {
	message, err := domain.NewMessage(domain.MessageParams{
		From:    "alice",
		To:      "bob",
		Content: "hi",
	})
	require.NoError(t, err)

	assert.True(t, message.IsParticipant("alice"))
	assert.True(t, message.IsParticipant("bob"))
	assert.False(t, message.IsParticipant("carol"))
	assert.False(t, message.IsParticipant(""))
}

func TestMessage_Conversation(t *testing.T) {
	message, err := domain.NewMessage(domain.MessageParams{
		From:    "bob",
		To:      "alice",
		Content: "hi",
	})
	require.NoError(t, err)

	key := message.Conversation()
	assert.Equal(t, domain.NewConversationKey("alice", "bob"), key)
}
