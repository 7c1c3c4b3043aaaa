package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	BeaconsCreated       uint64
	BeaconsJoined        uint64
	LandmarksCreated     uint64
	EventsPublished      uint64
	EventsDropped        uint64
	SubscriptionsOpened  uint64
	SubscriptionsClosed  uint64
	ShortcodeCacheHits   uint64
	ShortcodeCacheMisses uint64
	NearbyQueryCount     uint64
	NearbyQueryTotalNs   int64
}

// InMemoryRecorder stores metrics in memory for tests and the metrics endpoint.
type InMemoryRecorder struct {
	beaconsCreated       uint64
	beaconsJoined        uint64
	landmarksCreated     uint64
	eventsPublished      uint64
	eventsDropped        uint64
	subscriptionsOpened  uint64
	subscriptionsClosed  uint64
	shortcodeCacheHits   uint64
	shortcodeCacheMisses uint64
	nearbyQueryCount     uint64
	nearbyQueryTotalNs   int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		BeaconsCreated:       atomic.LoadUint64(&m.beaconsCreated),
		BeaconsJoined:        atomic.LoadUint64(&m.beaconsJoined),
		LandmarksCreated:     atomic.LoadUint64(&m.landmarksCreated),
		EventsPublished:      atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:        atomic.LoadUint64(&m.eventsDropped),
		SubscriptionsOpened:  atomic.LoadUint64(&m.subscriptionsOpened),
		SubscriptionsClosed:  atomic.LoadUint64(&m.subscriptionsClosed),
		ShortcodeCacheHits:   atomic.LoadUint64(&m.shortcodeCacheHits),
		ShortcodeCacheMisses: atomic.LoadUint64(&m.shortcodeCacheMisses),
		NearbyQueryCount:     atomic.LoadUint64(&m.nearbyQueryCount),
		NearbyQueryTotalNs:   atomic.LoadInt64(&m.nearbyQueryTotalNs),
	}
}

// IncBeaconCreated increments the beacon created counter.
func (m *InMemoryRecorder) IncBeaconCreated() {
	atomic.AddUint64(&m.beaconsCreated, 1)
}

// IncBeaconJoined increments the beacon joined counter.
func (m *InMemoryRecorder) IncBeaconJoined() {
	atomic.AddUint64(&m.beaconsJoined, 1)
}

// IncLandmarkCreated increments the landmark created counter.
func (m *InMemoryRecorder) IncLandmarkCreated() {
	atomic.AddUint64(&m.landmarksCreated, 1)
}

// IncEventPublished increments the published event counter.
func (m *InMemoryRecorder) IncEventPublished(topic string) {
	atomic.AddUint64(&m.eventsPublished, 1)
}

// IncEventDropped increments the dropped event counter.
func (m *InMemoryRecorder) IncEventDropped(topic string) {
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncSubscriptionOpened increments the opened subscription counter.
func (m *InMemoryRecorder) IncSubscriptionOpened() {
	atomic.AddUint64(&m.subscriptionsOpened, 1)
}

// IncSubscriptionClosed increments the closed subscription counter.
func (m *InMemoryRecorder) IncSubscriptionClosed() {
	atomic.AddUint64(&m.subscriptionsClosed, 1)
}

// IncShortcodeCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncShortcodeCacheHit() {
	atomic.AddUint64(&m.shortcodeCacheHits, 1)
}

// IncShortcodeCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncShortcodeCacheMiss() {
	atomic.AddUint64(&m.shortcodeCacheMisses, 1)
}

// ObserveNearbyQueryDuration records a discovery query duration.
func (m *InMemoryRecorder) ObserveNearbyQueryDuration(duration time.Duration) {
	atomic.AddUint64(&m.nearbyQueryCount, 1)
	atomic.AddInt64(&m.nearbyQueryTotalNs, duration.Nanoseconds())
}
