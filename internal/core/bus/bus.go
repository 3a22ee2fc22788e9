// Package bus implements the in-process event broadcaster behind real-time
// message delivery. Publishers and subscribers are fully decoupled: a publish
// snapshots the subscriber registry under a read lock and delivers outside of
// it, so a slow consumer can never stall registrations or other publishes.
package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// DefaultBufferSize is the per-subscriber queue depth used when no explicit
// size is configured.
const DefaultBufferSize = 256

// FilterFunc decides whether a published event is delivered to a particular
// subscriber. It must be pure: no I/O, no locking.
type FilterFunc func(domain.Event) bool

// Subscription is a live registration on a topic. Events arrive on the
// channel returned by Events until Unsubscribe is called, at which point the
// channel is closed.
type Subscription struct {
	// Topic this subscription is registered on.
	Topic domain.Topic

	// Viewer is the identity the subscription's filter was built for.
	Viewer string

	filter FilterFunc
	ch     chan domain.Event

	// mu orders deliveries against close; closed marks the channel as gone.
	mu     sync.Mutex
	closed bool

	dropped atomic.Uint64
}

// Events returns the subscription's receive channel. The channel preserves
// publish order (FIFO per subscription) and is closed on Unsubscribe.
func (s *Subscription) Events() <-chan domain.Event {
	return s.ch
}

// Dropped returns how many events were discarded because the subscriber's
// queue was full. A non-zero value means the consumer fell behind and the
// stream has a gap.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// deliver enqueues the event for this subscriber. When the queue is full the
// oldest buffered event is discarded to make room (drop-oldest policy); the
// subscriber can detect the gap via Dropped. Delivery after close is a no-op.
func (s *Subscription) deliver(event domain.Event) (delivered, overflowed bool) {
	if s.filter != nil && !s.filter(event) {
		return false, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, false
	}

	select {
	case s.ch <- event:
		return true, false
	default:
	}

	// Queue full: evict the oldest event, then enqueue the new one. The
	// consumer may race us for the eviction read, in which case the second
	// send finds room anyway.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- event:
	default:
	}
	s.dropped.Add(1)
	return true, true
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Bus fans published events out to every registered subscriber of the
// event's topic whose filter accepts them. It is safe for any number of
// concurrent publishers and subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[domain.Topic]map[*Subscription]struct{}
	buffer int
	logger *slog.Logger
}

var _ ports.EventPublisher = (*Bus)(nil)

// New creates a bus whose subscribers buffer up to bufferSize events each.
// A bufferSize <= 0 selects DefaultBufferSize.
func New(logger *slog.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:   make(map[domain.Topic]map[*Subscription]struct{}),
		buffer: bufferSize,
		logger: logger.With("component", "event_bus"),
	}
}

// Subscribe registers a new subscriber on the topic. The filter is evaluated
// once per published event with the subscriber's captured viewer identity;
// events it rejects are silently skipped for this subscriber only.
// Subscribing without a resolved viewer fails with ErrUnauthenticated.
func (b *Bus) Subscribe(topic domain.Topic, viewer string, filter FilterFunc) (*Subscription, error) {
	if viewer == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	sub := &Subscription{
		Topic:  topic,
		Viewer: viewer,
		filter: filter,
		ch:     make(chan domain.Event, b.buffer),
	}

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug("subscriber registered",
		"topic", string(topic),
		"viewer", viewer,
	)
	return sub, nil
}

// Unsubscribe deregisters the subscription and closes its channel. It is
// idempotent; a publish that already snapshotted the subscriber may attempt
// one final delivery, which is discarded.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	if topicSubs, ok := b.subs[sub.Topic]; ok {
		delete(topicSubs, sub)
		if len(topicSubs) == 0 {
			delete(b.subs, sub.Topic)
		}
	}
	b.mu.Unlock()

	sub.close()

	b.logger.Debug("subscriber removed",
		"topic", string(sub.Topic),
		"viewer", sub.Viewer,
	)
}

// Publish delivers the event to every current subscriber of the event's
// topic whose filter accepts it. It never blocks on a slow consumer beyond
// the bounded per-subscriber queue and never reports delivery failures to
// the caller.
func (b *Bus) Publish(event domain.Event) {
	topic := event.Topic()

	b.mu.RLock()
	topicSubs := b.subs[topic]
	snapshot := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if _, overflowed := sub.deliver(event); overflowed {
			b.logger.Warn("subscriber queue full, dropped oldest event",
				"topic", string(topic),
				"viewer", sub.Viewer,
				"dropped_total", sub.Dropped(),
			)
		}
	}
}

// SubscriberCount returns the number of live subscriptions on a topic.
func (b *Bus) SubscriberCount(topic domain.Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close removes every subscription and closes their channels. Publishing to
// a closed bus is harmless; there is simply nobody left to deliver to.
func (b *Bus) Close() {
	b.mu.Lock()
	var all []*Subscription
	for _, topicSubs := range b.subs {
		for sub := range topicSubs {
			all = append(all, sub)
		}
	}
	b.subs = make(map[domain.Topic]map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range all {
		sub.close()
	}
}
