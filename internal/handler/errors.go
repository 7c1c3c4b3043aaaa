package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rallypoint/rallypoint/internal/handler/dto"
	"github.com/rallypoint/rallypoint/internal/service"
)

// handleServiceError maps service errors to HTTP responses.
// Specific sentinels get their own codes; anything else falls back to
// its category (validation 400, authentication 401, authorization 403).
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrShortcodeNotFound):
		writeError(w, http.StatusBadRequest, "SHORTCODE_NOT_FOUND", "No active beacon matches that shortcode")
	case errors.Is(err, service.ErrAlreadyJoined):
		writeError(w, http.StatusBadRequest, "ALREADY_JOINED", "Caller is already a member of this beacon")
	case errors.Is(err, service.ErrBeaconNotFound):
		writeError(w, http.StatusBadRequest, "BEACON_NOT_FOUND", "Beacon does not exist")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, "USER_NOT_FOUND", "User does not exist")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email is already registered")
	case errors.Is(err, service.ErrLoginArguments):
		writeError(w, http.StatusBadRequest, "INVALID_LOGIN", "Supply either a user id or credentials, not both")
	case errors.Is(err, service.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, "PASSWORD_REQUIRED", "Registered users must log in with credentials")
	case errors.Is(err, service.ErrExpiresInPast):
		writeError(w, http.StatusBadRequest, "EXPIRES_IN_PAST", "Expiry must be in the future")
	case errors.Is(err, service.ErrNotLeader):
		writeError(w, http.StatusForbidden, "NOT_LEADER", "Only the beacon leader may do this")
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "NOT_MEMBER", "Only beacon members may do this")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrAuthentication):
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid credentials")
	case errors.Is(err, service.ErrAuthorization):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Caller is not allowed to do this")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
