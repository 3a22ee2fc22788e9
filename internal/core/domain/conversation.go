package domain

// ConversationKey is the canonical identity of a two-party conversation.
// The two usernames are stored in lexicographic order, so the key built from
// (a, b) equals the key built from (b, a).
type ConversationKey struct {
	A string
	B string
}

// NewConversationKey returns the order-independent key for a user pair.
func NewConversationKey(a, b string) ConversationKey {
	if b < a {
		a, b = b, a
	}
	return ConversationKey{A: a, B: b}
}

// Includes reports whether the given user is one of the two participants.
func (k ConversationKey) Includes(username string) bool {
	return k.A == username || k.B == username
}

// Other returns the participant that is not the given user. It returns an
// empty string when the user is not part of the conversation.
func (k ConversationKey) Other(username string) string {
	switch username {
	case k.A:
		return k.B
	case k.B:
		return k.A
	}
	return ""
}

func (k ConversationKey) String() string {
	return k.A + ":" + k.B
}
