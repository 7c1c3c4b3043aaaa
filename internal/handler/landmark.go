package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/handler/dto"
	"github.com/rallypoint/rallypoint/internal/service"
)

// LandmarkHandler handles HTTP requests for beacon landmarks.
type LandmarkHandler struct {
	svc    *service.BeaconService
	logger *slog.Logger
}

// NewLandmarkHandler creates a new LandmarkHandler.
func NewLandmarkHandler(svc *service.BeaconService, logger *slog.Logger) *LandmarkHandler {
	return &LandmarkHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/beacons/{id}/landmarks.
func (h *LandmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	beaconID := chi.URLParam(r, "id")

	var req dto.CreateLandmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateLandmarkInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location.ToLocation(),
	}

	landmark, err := h.svc.CreateLandmark(r.Context(), auth.UserFromContext(r.Context()), beaconID, input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToLandmarkResponse(landmark))
}

// List handles GET /api/v1/beacons/{id}/landmarks.
func (h *LandmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	beaconID := chi.URLParam(r, "id")

	landmarks, err := h.svc.ListLandmarks(r.Context(), auth.UserFromContext(r.Context()), beaconID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLandmarkListResponse(landmarks))
}
