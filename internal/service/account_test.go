package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rallypoint/rallypoint/internal/auth"
)

var testTokenSecret = []byte("test-token-secret")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAccountService(store *fakeStore) *AccountService {
	return NewAccountService(store, testTokenSecret, discardLogger())
}

func TestAccountService_Register_Anonymous(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	user, err := svc.Register(context.Background(), RegisterInput{Name: "drifter"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == "" {
		t.Error("expected generated user id")
	}
	if user.Registered() {
		t.Error("credential-less user should not be registered")
	}
	if user.Email != "" {
		t.Errorf("unexpected email %q", user.Email)
	}
}

func TestAccountService_Register_WithCredentials(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:        "ada",
		Credentials: &Credentials{Email: "a@b.com", Password: "right"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !user.Registered() {
		t.Error("expected registered user")
	}
	if user.PasswordHash == "right" {
		t.Error("password must be hashed before storage")
	}

	match, err := auth.VerifyPassword("right", user.PasswordHash)
	if err != nil || !match {
		t.Errorf("stored hash should verify the original password: match=%v err=%v", match, err)
	}
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	creds := &Credentials{Email: "a@b.com", Password: "pw"}
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "first", Credentials: creds}); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{Name: "second", Credentials: creds})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAccountService_Register_MissingName(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	if _, err := svc.Register(context.Background(), RegisterInput{}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAccountService_Login_ArgumentExclusivity(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"neither", LoginInput{}},
		{"both", LoginInput{UserID: "u1", Credentials: &Credentials{Email: "a@b.com", Password: "pw"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := svc.Login(context.Background(), tt.input); !errors.Is(err, ErrLoginArguments) {
				t.Errorf("expected ErrLoginArguments, got %v", err)
			}
		})
	}
}

func TestAccountService_Login_ByID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newAccountService(store)

	user, err := svc.Register(context.Background(), RegisterInput{Name: "drifter"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(context.Background(), LoginInput{UserID: user.ID})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.VerifyToken(token, testTokenSecret)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if !claims.Anonymous {
		t.Error("id-only login should issue an anonymous token")
	}
	if claims.Email != "" {
		t.Errorf("anonymous token must not carry email, got %q", claims.Email)
	}
}

func TestAccountService_Login_ByIDRejectsRegisteredUser(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:        "ada",
		Credentials: &Credentials{Email: "a@b.com", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Id-only login must never bypass password verification.
	if _, err := svc.Login(context.Background(), LoginInput{UserID: user.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name:        "ada",
		Credentials: &Credentials{Email: "a@b.com", Password: "right"},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(context.Background(), LoginInput{
		Credentials: &Credentials{Email: "a@b.com", Password: "wrong"},
	})
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
	if token != "" {
		t.Error("no token may be issued on credential mismatch")
	}
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	_, err := svc.Login(context.Background(), LoginInput{
		Credentials: &Credentials{Email: "nobody@b.com", Password: "pw"},
	})
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestAccountService_Login_WithCredentials(t *testing.T) {
	t.Parallel()

	svc := newAccountService(newFakeStore())

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:        "ada",
		Credentials: &Credentials{Email: "a@b.com", Password: "right"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(context.Background(), LoginInput{
		Credentials: &Credentials{Email: "a@b.com", Password: "right"},
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.VerifyToken(token, testTokenSecret)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Anonymous {
		t.Error("credential login should not be anonymous")
	}
	if claims.Email != "a@b.com" {
		t.Errorf("email claim = %q, want a@b.com", claims.Email)
	}
}
