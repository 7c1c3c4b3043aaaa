package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/handler/dto"
	"github.com/rallypoint/rallypoint/internal/service"
)

// BeaconHandler handles HTTP requests for beacon sessions.
type BeaconHandler struct {
	svc    *service.BeaconService
	logger *slog.Logger
}

// NewBeaconHandler creates a new BeaconHandler.
func NewBeaconHandler(svc *service.BeaconService, logger *slog.Logger) *BeaconHandler {
	return &BeaconHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/beacons.
func (h *BeaconHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBeaconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateBeaconInput{
		Start:     req.Start.ToLocation(),
		ExpiresAt: req.ExpiresAt,
	}

	beacon, err := h.svc.CreateBeacon(r.Context(), auth.UserFromContext(r.Context()), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBeaconResponse(beacon))
}

// Join handles POST /api/v1/beacons/join.
func (h *BeaconHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinBeaconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	beacon, err := h.svc.JoinBeacon(r.Context(), auth.UserFromContext(r.Context()), req.Shortcode)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBeaconResponse(beacon))
}

// Get handles GET /api/v1/beacons/{id}.
func (h *BeaconHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Beacon ID is required")
		return
	}

	beacon, err := h.svc.GetBeacon(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBeaconResponse(beacon))
}

// Nearby handles GET /api/v1/beacons/nearby?lat=..&lon=..
// Discovery is open to unauthenticated callers.
func (h *BeaconHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(query.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lon query parameters are required")
		return
	}

	beacons, err := h.svc.FindNearbyBeacons(r.Context(), dto.LocationDTO{Lat: lat, Lon: lon}.ToLocation())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBeaconListResponse(beacons))
}

// UpdateLocation handles PUT /api/v1/beacons/{id}/location.
func (h *BeaconHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	beacon, err := h.svc.UpdateBeaconLocation(r.Context(), auth.UserFromContext(r.Context()), id, req.Location.ToLocation())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBeaconResponse(beacon))
}

// UpdateMemberLocation handles PUT /api/v1/beacons/{id}/members/me/location.
func (h *BeaconHandler) UpdateMemberLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateUserLocation(r.Context(), auth.UserFromContext(r.Context()), id, req.Location.ToLocation())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// ChangeLeader handles PUT /api/v1/beacons/{id}/leader.
func (h *BeaconHandler) ChangeLeader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ChangeLeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	beacon, err := h.svc.ChangeLeader(r.Context(), auth.UserFromContext(r.Context()), id, req.NewLeaderID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBeaconResponse(beacon))
}
