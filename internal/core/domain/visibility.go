package domain

// Visibility predicates decide, per viewer, which events a live subscriber is
// entitled to receive. They are pure functions over explicit data; the bus
// stays generic and never looks inside payloads itself.

// CanSeeMessage reports whether viewer is a participant of the message.
func CanSeeMessage(viewer string, m *Message) bool {
	if m == nil {
		return false
	}
	return m.From == viewer || m.To == viewer
}

// CanSeeReaction reports whether viewer is a participant of the message the
// reaction targets.
func CanSeeReaction(viewer string, re *ReactionEvent) bool {
	if re == nil {
		return false
	}
	return re.MessageFrom == viewer || re.MessageTo == viewer
}

// VisibleTo returns the subscription filter for a viewer: it accepts exactly
// the events whose underlying conversation includes the viewer. Events with
// an unknown payload shape are rejected.
func VisibleTo(viewer string) func(Event) bool {
	return func(e Event) bool {
		switch p := e.Payload.(type) {
		case *Message:
			return CanSeeMessage(viewer, p)
		case *ReactionEvent:
			return CanSeeReaction(viewer, p)
		}
		return false
	}
}
