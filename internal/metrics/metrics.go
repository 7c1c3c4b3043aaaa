// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session metrics
	IncBeaconCreated()
	IncBeaconJoined()
	IncLandmarkCreated()

	// Broadcast metrics
	IncEventPublished(topic string)
	IncEventDropped(topic string)
	IncSubscriptionOpened()
	IncSubscriptionClosed()

	// Shortcode cache metrics
	IncShortcodeCacheHit()
	IncShortcodeCacheMiss()

	// Discovery metrics
	ObserveNearbyQueryDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
