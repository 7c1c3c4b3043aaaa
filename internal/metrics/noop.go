package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncBeaconCreated is a no-op.
func (n *NoopRecorder) IncBeaconCreated() {}

// IncBeaconJoined is a no-op.
func (n *NoopRecorder) IncBeaconJoined() {}

// IncLandmarkCreated is a no-op.
func (n *NoopRecorder) IncLandmarkCreated() {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(topic string) {}

// IncEventDropped is a no-op.
func (n *NoopRecorder) IncEventDropped(topic string) {}

// IncSubscriptionOpened is a no-op.
func (n *NoopRecorder) IncSubscriptionOpened() {}

// IncSubscriptionClosed is a no-op.
func (n *NoopRecorder) IncSubscriptionClosed() {}

// IncShortcodeCacheHit is a no-op.
func (n *NoopRecorder) IncShortcodeCacheHit() {}

// IncShortcodeCacheMiss is a no-op.
func (n *NoopRecorder) IncShortcodeCacheMiss() {}

// ObserveNearbyQueryDuration is a no-op.
func (n *NoopRecorder) ObserveNearbyQueryDuration(duration time.Duration) {}
