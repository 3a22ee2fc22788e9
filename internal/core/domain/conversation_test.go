package domain_test

import (
	"testing"

	"github.com/lorrc/dm-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewConversationKey(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		ab := domain.NewConversationKey("alice", "bob")
		ba := domain.NewConversationKey("bob", "alice")

		assert.Equal(t, ab, ba)
		assert.Equal(t, "alice", ab.A)
		assert.Equal(t, "bob", ab.B)
	})

	t.Run("string form", func(t *testing.T) {
		key := domain.NewConversationKey("zoe", "adam")
		assert.Equal(t, "adam:zoe", key.String())
	})
}

func TestConversationKey_Includes(t *testing.T) {
	key := domain.NewConversationKey("alice", "bob")

	assert.True(t, key.Includes("alice"))
	assert.True(t, key.Includes("bob"))
	assert.False(t, key.Includes("carol"))
}

func TestConversationKey_Other(t *testing.T) {
	key := domain.NewConversationKey("alice", "bob")

	assert.Equal(t, "bob", key.Other("alice"))
	assert.Equal(t, "alice", key.Other("bob"))
	assert.Equal(t, "", key.Other("carol"))
}
