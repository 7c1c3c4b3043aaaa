package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/handler/dto"
	"github.com/rallypoint/rallypoint/internal/service"
)

// AccountHandler handles HTTP requests for registration and login.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/users.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.RegisterInput{Name: req.Name}
	if req.Email != "" || req.Password != "" {
		input.Credentials = &service.Credentials{
			Email:    req.Email,
			Password: req.Password,
		}
	}

	user, err := h.svc.Register(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"registered", user.Registered(),
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/v1/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.LoginInput{UserID: req.UserID}
	if req.Email != "" || req.Password != "" {
		input.Credentials = &service.Credentials{
			Email:    req.Email,
			Password: req.Password,
		}
	}

	token, err := h.svc.Login(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

// Me handles GET /api/v1/users/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "A valid bearer token is required")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
