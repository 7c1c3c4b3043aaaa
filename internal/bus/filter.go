package bus

// Predicate decides whether an event is delivered to one subscriber.
// Predicates are plain data, composed with a raw subscription, so filter
// logic can be tested against synthetic event streams.
type Predicate func(Event) bool

// FilteredSubscription narrows a raw subscription with a per-event
// predicate. Events failing the predicate are silently dropped.
type FilteredSubscription struct {
	sub *Subscription
	ch  chan Event
}

// Filter wraps sub so that only events matching pred reach the consumer.
// Cancelling the filtered stream cancels the underlying subscription.
func Filter(sub *Subscription, pred Predicate) *FilteredSubscription {
	f := &FilteredSubscription{
		sub: sub,
		ch:  make(chan Event, subscriberBufferSize),
	}

	go func() {
		defer close(f.ch)
		for ev := range sub.C() {
			if !pred(ev) {
				continue
			}
			// Same drop policy as the broker: never block on a consumer
			// that has stopped reading.
			select {
			case f.ch <- ev:
			default:
			}
		}
	}()

	return f
}

// C returns the filtered event channel. It is closed on cancellation.
func (f *FilteredSubscription) C() <-chan Event {
	return f.ch
}

// Cancel stops delivery and deregisters the underlying subscription.
func (f *FilteredSubscription) Cancel() {
	f.sub.Cancel()
}

// MatchBeaconLocation matches beacon location changes for one beacon.
func MatchBeaconLocation(beaconID string) Predicate {
	return func(ev Event) bool {
		payload, ok := ev.Payload.(BeaconLocationPayload)
		return ok && payload.BeaconID == beaconID
	}
}

// MatchUserLocation matches member location changes for one beacon,
// suppressing the viewer's own updates.
func MatchUserLocation(beaconID, viewerID string) Predicate {
	return func(ev Event) bool {
		payload, ok := ev.Payload.(UserLocationPayload)
		if !ok || payload.BeaconID != beaconID {
			return false
		}
		return payload.User == nil || payload.User.ID != viewerID
	}
}

// MatchBeaconJoined matches join events for one beacon.
func MatchBeaconJoined(beaconID string) Predicate {
	return func(ev Event) bool {
		payload, ok := ev.Payload.(BeaconJoinedPayload)
		return ok && payload.BeaconID == beaconID
	}
}
