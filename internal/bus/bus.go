// Package bus provides the in-process publish/subscribe broker that
// distributes session events to live subscriptions.
package bus

import (
	"log/slog"
	"sync"

	"github.com/rallypoint/rallypoint/internal/metrics"
	"github.com/rallypoint/rallypoint/internal/model"
)

// Topic is a coarse event-kind name on the broker.
type Topic string

// Broker topics.
const (
	TopicBeaconLocation Topic = "beacon.location_changed"
	TopicUserLocation   Topic = "user.location_changed"
	TopicBeaconJoined   Topic = "beacon.joined"
)

// subscriberBufferSize bounds each subscriber's pending events. When the
// buffer is full new events for that subscriber are dropped so a slow
// consumer never blocks publication to others.
const subscriberBufferSize = 16

// Event is a single published payload with its topic.
type Event struct {
	Topic   Topic
	Payload any
}

// BeaconLocationPayload carries only the beacon's new shared location.
type BeaconLocationPayload struct {
	BeaconID string         `json:"beacon_id"`
	Location model.Location `json:"location"`
}

// UserLocationPayload carries a member's updated record.
type UserLocationPayload struct {
	BeaconID string      `json:"beacon_id"`
	User     *model.User `json:"user"`
}

// BeaconJoinedPayload carries the user who joined.
type BeaconJoinedPayload struct {
	BeaconID string      `json:"beacon_id"`
	User     *model.User `json:"user"`
}

// Bus is a process-wide broker. It is constructed once at startup and
// injected; delivery is fire-and-forget with no persistence or replay.
type Bus struct {
	mu      sync.RWMutex
	subs    map[Topic]map[*Subscription]struct{}
	closed  bool
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Bus.
func New(logger *slog.Logger, recorder metrics.Recorder) *Bus {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Bus{
		subs:    make(map[Topic]map[*Subscription]struct{}),
		logger:  logger.With("component", "bus"),
		metrics: recorder,
	}
}

// Publish delivers the payload to every subscriber currently registered
// on the topic. Subscribers whose buffer is full miss the event.
func (b *Bus) Publish(topic Topic, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	b.metrics.IncEventPublished(string(topic))

	for sub := range b.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			b.metrics.IncEventDropped(string(topic))
			b.logger.Warn("subscriber buffer full, event dropped",
				"topic", string(topic),
			)
		}
	}
}

// Subscribe returns a live stream of every future event published to any
// of the given topics, in publish order, until cancelled.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	sub := &Subscription{
		bus:    b,
		topics: topics,
		ch:     make(chan Event, subscriberBufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.ch)
		sub.cancelled = true
		return sub
	}

	for _, topic := range topics {
		if b.subs[topic] == nil {
			b.subs[topic] = make(map[*Subscription]struct{})
		}
		b.subs[topic][sub] = struct{}{}
	}

	b.metrics.IncSubscriptionOpened()
	return sub
}

// Close cancels all subscriptions and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	seen := make(map[*Subscription]struct{})
	for _, subs := range b.subs {
		for sub := range subs {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			sub.cancelled = true
			close(sub.ch)
			b.metrics.IncSubscriptionClosed()
		}
	}
	b.subs = make(map[Topic]map[*Subscription]struct{})
}

// Subscription is a live, cancellable event stream.
// The cancelled flag is guarded by the bus mutex.
type Subscription struct {
	bus       *Bus
	topics    []Topic
	ch        chan Event
	cancelled bool
}

// C returns the event channel. It is closed on cancellation.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Cancel deregisters the stream from every topic it was subscribed to.
// No further events are delivered. Idempotent.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.cancelled {
		return
	}
	s.cancelled = true

	for _, topic := range s.topics {
		delete(s.bus.subs[topic], s)
		if len(s.bus.subs[topic]) == 0 {
			delete(s.bus.subs, topic)
		}
	}

	close(s.ch)
	s.bus.metrics.IncSubscriptionClosed()
}
