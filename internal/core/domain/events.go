package domain

// Topic names an event category on the bus. There is one topic per event
// kind, matching the two Event types below.
type Topic string

const (
	TopicMessageCreated  Topic = "message:created"
	TopicReactionChanged Topic = "reaction:changed"
)

// EventType defines the type of real-time event as seen by clients.
type EventType string

const (
	EventMessageCreated  EventType = "NEW_MESSAGE"
	EventReactionChanged EventType = "NEW_REACTION"
)

// Event is the ephemeral payload fanned out to live subscribers. Events are
// constructed right after a successful mutation, handed to the bus, and
// discarded after delivery; they are never persisted or queued for offline
// users.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// ReactionEvent is the payload of a reaction-changed event. The owning
// message's participant pair is carried denormalized so visibility checks
// need no storage read at delivery time.
type ReactionEvent struct {
	Reaction    *Reaction `json:"reaction"`
	MessageFrom string    `json:"messageFrom"`
	MessageTo   string    `json:"messageTo"`
}

// NewMessageCreatedEvent wraps a freshly persisted message for fan-out.
func NewMessageCreatedEvent(m *Message) Event {
	return Event{Type: EventMessageCreated, Payload: m}
}

// NewReactionChangedEvent wraps an upserted reaction for fan-out, capturing
// the participants of the message it targets.
func NewReactionChangedEvent(r *Reaction, owner *Message) Event {
	return Event{
		Type: EventReactionChanged,
		Payload: &ReactionEvent{
			Reaction:    r,
			MessageFrom: owner.From,
			MessageTo:   owner.To,
		},
	}
}

// Topic returns the bus topic an event belongs on.
func (e Event) Topic() Topic {
	if e.Type == EventReactionChanged {
		return TopicReactionChanged
	}
	return TopicMessageCreated
}
