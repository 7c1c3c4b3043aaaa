package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rallypoint/rallypoint/internal/auth"
	"github.com/rallypoint/rallypoint/internal/model"
	"github.com/rallypoint/rallypoint/internal/repository"
)

// AccountService handles registration and login.
type AccountService struct {
	store       UserStore
	tokenSecret []byte
	logger      *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store UserStore, tokenSecret []byte, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:       store,
		tokenSecret: tokenSecret,
		logger:      logger.With("component", "service.account"),
	}
}

// Credentials is an email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// RegisterInput defines input for creating a user.
// Credentials are optional; a credential-less user is anonymous-capable
// and can never later authenticate by password.
type RegisterInput struct {
	Name        string
	Credentials *Credentials
}

// Register creates a new user, hashing the password before storage.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}

	user := &model.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		BeaconIDs: []string{},
		CreatedAt: time.Now().UTC(),
	}

	if input.Credentials != nil {
		if input.Credentials.Email == "" || input.Credentials.Password == "" {
			return nil, fmt.Errorf("%w: credentials require both email and password", ErrValidation)
		}

		if _, err := s.store.GetUserByEmail(ctx, input.Credentials.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}

		hash, err := auth.HashPassword(input.Credentials.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Email = input.Credentials.Email
		user.PasswordHash = hash
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Concurrent registration may win the unique constraint race.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"registered", user.Registered(),
	)

	return user, nil
}

// LoginInput defines input for issuing a token.
// Exactly one of UserID or Credentials must be supplied.
type LoginInput struct {
	UserID      string
	Credentials *Credentials
}

// Login authenticates a user and issues a signed bearer token.
// Id-only login is reserved for anonymous-capable users; it never
// bypasses password verification for registered users.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (string, error) {
	hasID := input.UserID != ""
	hasCredentials := input.Credentials != nil

	if hasID == hasCredentials {
		return "", ErrLoginArguments
	}

	if hasID {
		user, err := s.store.GetUserByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return "", ErrUserNotFound
			}
			return "", fmt.Errorf("failed to load user: %w", err)
		}
		if user.Registered() {
			return "", ErrPasswordRequired
		}

		token, err := auth.IssueToken(user.ID, true, "", s.tokenSecret)
		if err != nil {
			return "", fmt.Errorf("failed to issue token: %w", err)
		}
		return token, nil
	}

	user, err := s.store.GetUserByEmail(ctx, input.Credentials.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// No detail beyond "invalid credentials".
			return "", ErrAuthentication
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	match, err := auth.VerifyPassword(input.Credentials.Password, user.PasswordHash)
	if err != nil || !match {
		return "", ErrAuthentication
	}

	token, err := auth.IssueToken(user.ID, false, user.Email, s.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return token, nil
}
