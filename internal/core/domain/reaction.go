package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is a single emoji attached by a user to a message. At most one
// reaction exists per (MessageID, Username) pair; reacting again replaces the
// content of the existing record and keeps its ID.
type Reaction struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	Username  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReactionSet is the immutable alphabet of emoji a reaction may carry.
// It is built once at startup and injected wherever reactions are validated,
// so the allowed symbols live in exactly one place.
type ReactionSet struct {
	symbols []string
	index   map[string]struct{}
}

// NewReactionSet builds a reaction alphabet from the given symbols.
func NewReactionSet(symbols ...string) ReactionSet {
	index := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		index[s] = struct{}{}
	}
	return ReactionSet{symbols: symbols, index: index}
}

// DefaultReactionSet returns the standard seven-emoji alphabet.
func DefaultReactionSet() ReactionSet {
	return NewReactionSet("❤️", "😆", "😯", "😢", "😡", "👍", "👎")
}

// Contains reports whether content is part of the alphabet.
func (s ReactionSet) Contains(content string) bool {
	_, ok := s.index[content]
	return ok
}

// Symbols returns a copy of the allowed symbols in declaration order.
func (s ReactionSet) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Len returns the number of symbols in the alphabet.
func (s ReactionSet) Len() int {
	return len(s.symbols)
}
