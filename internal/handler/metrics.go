package handler

import (
	"fmt"
	"net/http"

	"github.com/rallypoint/rallypoint/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "rallypoint_beacons_created_total %d\n", snap.BeaconsCreated)
	writeMetric(w, "rallypoint_beacons_joined_total %d\n", snap.BeaconsJoined)
	writeMetric(w, "rallypoint_landmarks_created_total %d\n", snap.LandmarksCreated)

	writeMetric(w, "rallypoint_events_total{status=\"published\"} %d\n", snap.EventsPublished)
	writeMetric(w, "rallypoint_events_total{status=\"dropped\"} %d\n", snap.EventsDropped)
	writeMetric(w, "rallypoint_subscriptions_opened_total %d\n", snap.SubscriptionsOpened)
	writeMetric(w, "rallypoint_subscriptions_closed_total %d\n", snap.SubscriptionsClosed)

	writeMetric(w, "rallypoint_shortcode_cache_hits_total %d\n", snap.ShortcodeCacheHits)
	writeMetric(w, "rallypoint_shortcode_cache_misses_total %d\n", snap.ShortcodeCacheMisses)

	writeMetric(w, "rallypoint_nearby_query_duration_seconds_count %d\n", snap.NearbyQueryCount)
	writeMetric(w, "rallypoint_nearby_query_duration_seconds_sum %.6f\n", float64(snap.NearbyQueryTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
