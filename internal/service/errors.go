// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every operation failure wraps exactly one of these so
// transport layers can map them with errors.Is.
var (
	// ErrValidation covers malformed input, unknown referenced entities,
	// duplicate registration, and shortcode misses. Safe to report verbatim.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication covers credential mismatches. Reported without
	// detail beyond "invalid credentials".
	ErrAuthentication = errors.New("invalid credentials")
	// ErrAuthorization covers callers lacking a required role.
	ErrAuthorization = errors.New("not authorized")
)

// Operation errors.
var (
	ErrNameRequired      = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmailTaken        = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrLoginArguments    = fmt.Errorf("%w: exactly one of id or credentials must be supplied", ErrValidation)
	ErrPasswordRequired  = fmt.Errorf("%w: registered users must log in with credentials", ErrValidation)
	ErrShortcodeNotFound = fmt.Errorf("%w: no active beacon matches the shortcode", ErrValidation)
	ErrAlreadyJoined     = fmt.Errorf("%w: already a member of this beacon", ErrValidation)
	ErrBeaconNotFound    = fmt.Errorf("%w: beacon not found", ErrValidation)
	ErrUserNotFound      = fmt.Errorf("%w: user not found", ErrValidation)
	ErrNotBeaconMember   = fmt.Errorf("%w: caller is not a member of this beacon", ErrValidation)
	ErrExpiresInPast     = fmt.Errorf("%w: expires_at must be in the future", ErrValidation)

	ErrCallerRequired = fmt.Errorf("%w: authentication required", ErrAuthorization)
	ErrNotMember      = fmt.Errorf("%w: caller is not a member of this beacon", ErrAuthorization)
	ErrNotLeader      = fmt.Errorf("%w: caller is not the beacon leader", ErrAuthorization)
)
