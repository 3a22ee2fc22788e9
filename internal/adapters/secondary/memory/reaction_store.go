package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/dm-backend/internal/core/domain"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// reactionKey is the uniqueness constraint behind the one-reaction-per-pair
// invariant.
type reactionKey struct {
	messageID uuid.UUID
	username  string
}

// ReactionStore is an in-memory ports.ReactionRepository. The keyed map plus
// the store mutex make Upsert a single atomic conditional insert-or-update:
// two concurrent upserts for the same pair serialize on the lock and the map
// can never hold two records for one key.
type ReactionStore struct {
	mu        sync.RWMutex
	reactions map[reactionKey]*domain.Reaction
	seq       map[reactionKey]int
	nextSeq   int
}

var _ ports.ReactionRepository = (*ReactionStore)(nil)

// NewReactionStore creates an empty reaction store.
func NewReactionStore() *ReactionStore {
	return &ReactionStore{
		reactions: make(map[reactionKey]*domain.Reaction),
		seq:       make(map[reactionKey]int),
	}
}

func (s *ReactionStore) Upsert(_ context.Context, messageID uuid.UUID, username, content string) (*domain.Reaction, error) {
	key := reactionKey{messageID: messageID, username: username}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.reactions[key]; ok {
		existing.Content = content
		existing.UpdatedAt = now

		out := *existing
		return &out, nil
	}

	reaction := &domain.Reaction{
		ID:        uuid.New(),
		MessageID: messageID,
		Username:  username,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reactions[key] = reaction
	s.seq[key] = s.nextSeq
	s.nextSeq++

	out := *reaction
	return &out, nil
}

func (s *ReactionStore) ListByMessageID(_ context.Context, messageID uuid.UUID) ([]*domain.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		reaction *domain.Reaction
		seq      int
	}

	var entries []entry
	for key, reaction := range s.reactions {
		if key.messageID == messageID {
			out := *reaction
			entries = append(entries, entry{reaction: &out, seq: s.seq[key]})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	reactions := make([]*domain.Reaction, len(entries))
	for i, e := range entries {
		reactions[i] = e.reaction
	}
	return reactions, nil
}
