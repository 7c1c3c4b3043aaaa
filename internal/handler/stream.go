package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/bus"
	"github.com/rallypoint/rallypoint/internal/handler/dto"
	"github.com/rallypoint/rallypoint/internal/model"
	"github.com/rallypoint/rallypoint/internal/service"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 30 * time.Second

// StreamHandler serves live beacon events over Server-Sent Events.
// Membership is checked once at connection time; a member whose access
// is later revoked keeps the stream until it disconnects.
type StreamHandler struct {
	svc    *service.BeaconService
	broker *bus.Bus
	logger *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(svc *service.BeaconService, broker *bus.Bus, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		svc:    svc,
		broker: broker,
		logger: logger,
	}
}

// BeaconLocation handles GET /api/v1/beacons/{id}/events/location.
// Streams reference point moves for one beacon to a member.
func (h *StreamHandler) BeaconLocation(w http.ResponseWriter, r *http.Request) {
	beacon, ok := h.authorizeStream(w, r)
	if !ok {
		return
	}

	sub := h.broker.Subscribe(bus.TopicBeaconLocation)
	filtered := bus.Filter(sub, bus.MatchBeaconLocation(beacon.ID))

	h.serveStream(w, r, filtered, "location", func(ev bus.Event) any {
		payload := ev.Payload.(bus.BeaconLocationPayload)
		return dto.BeaconLocationEvent{
			BeaconID: payload.BeaconID,
			Location: dto.FromLocation(payload.Location),
		}
	})
}

// MemberLocations handles GET /api/v1/beacons/{id}/events/members.
// Streams other members' position updates; the viewer's own updates are
// filtered out.
func (h *StreamHandler) MemberLocations(w http.ResponseWriter, r *http.Request) {
	beacon, ok := h.authorizeStream(w, r)
	if !ok {
		return
	}

	viewerID := auth.UserIDFromContext(r.Context())
	sub := h.broker.Subscribe(bus.TopicUserLocation)
	filtered := bus.Filter(sub, bus.MatchUserLocation(beacon.ID, viewerID))

	h.serveStream(w, r, filtered, "member_location", func(ev bus.Event) any {
		payload := ev.Payload.(bus.UserLocationPayload)
		return dto.MemberLocationEvent{
			BeaconID: payload.BeaconID,
			User:     dto.ToUserResponse(payload.User),
		}
	})
}

// Joins handles GET /api/v1/beacons/{id}/events/joins.
// Streams join announcements for one beacon.
func (h *StreamHandler) Joins(w http.ResponseWriter, r *http.Request) {
	beacon, ok := h.authorizeStream(w, r)
	if !ok {
		return
	}

	sub := h.broker.Subscribe(bus.TopicBeaconJoined)
	filtered := bus.Filter(sub, bus.MatchBeaconJoined(beacon.ID))

	h.serveStream(w, r, filtered, "joined", func(ev bus.Event) any {
		payload := ev.Payload.(bus.BeaconJoinedPayload)
		return dto.BeaconJoinedEvent{
			BeaconID: payload.BeaconID,
			User:     dto.ToUserResponse(payload.User),
		}
	})
}

// authorizeStream resolves the beacon and verifies the caller may watch
// it. On failure it writes the error response and returns ok=false.
func (h *StreamHandler) authorizeStream(w http.ResponseWriter, r *http.Request) (*model.Beacon, bool) {
	id := chi.URLParam(r, "id")
	beacon, err := h.svc.GetBeacon(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return nil, false
	}
	return beacon, true
}

// serveStream pumps filtered events to the client as SSE frames until
// the client disconnects.
func (h *StreamHandler) serveStream(w http.ResponseWriter, r *http.Request, filtered *bus.FilteredSubscription, eventName string, convert func(bus.Event) any) {
	defer filtered.Cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			// SSE comment line, ignored by clients.
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-filtered.C():
			if !open {
				return
			}
			data, err := json.Marshal(convert(ev))
			if err != nil {
				h.logger.Error("failed to encode stream event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
			flusher.Flush()
		}
	}
}
