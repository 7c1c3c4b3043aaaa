package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/cache"
	"github.com/rallypoint/rallypoint/internal/model"
)

// UserLoader resolves a user id to a full user record.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionCache stores verified token claims keyed by token hash.
type SessionCache interface {
	GetSession(ctx context.Context, tokenHash string) (*cache.CachedSession, error)
	SetSession(ctx context.Context, tokenHash string, session *cache.CachedSession, tokenExpiry time.Time) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger      *slog.Logger
	Users       UserLoader
	Cache       SessionCache // optional
	TokenSecret []byte
}

// Auth returns a middleware that resolves the caller from a bearer
// token. A missing or invalid token leaves the request anonymous
// rather than rejecting it; operations that need an identity enforce
// that themselves.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := resolveToken(r.Context(), cfg, token)
			if !ok {
				cfg.Logger.Warn("invalid bearer token",
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			user, err := cfg.Users.GetUserByID(r.Context(), userID)
			if err != nil {
				cfg.Logger.Warn("token subject not found",
					slog.String("user_id", userID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
		})
	}
}

// resolveToken verifies the token, using the session cache to skip
// signature checks for recently seen tokens.
func resolveToken(ctx context.Context, cfg AuthConfig, token string) (userID string, ok bool) {
	tokenHash := auth.QuickHash(token)

	if cfg.Cache != nil {
		if cached, _ := cfg.Cache.GetSession(ctx, tokenHash); cached != nil {
			return cached.UserID, true
		}
	}

	claims, err := auth.VerifyToken(token, cfg.TokenSecret)
	if err != nil {
		return "", false
	}

	if cfg.Cache != nil {
		session := &cache.CachedSession{
			UserID:    claims.Subject,
			Anonymous: claims.Anonymous,
			Email:     claims.Email,
		}
		if err := cfg.Cache.SetSession(ctx, tokenHash, session, claims.ExpiresAt.Time); err != nil {
			cfg.Logger.Warn("failed to cache session", "error", err)
		}
	}

	return claims.Subject, true
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
