package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/rallypoint/rallypoint/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, beacon_ids, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		pq.Array(user.BeaconIDs),
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := userSelect + ` WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := userSelect + ` WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// UpdateUserLocation persists the user's last reported position and
// returns the updated record.
func (r *Repository) UpdateUserLocation(ctx context.Context, id string, loc model.Location, at time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET last_lat = $2, last_lon = $3, last_seen_at = $4
		WHERE id = $1
		RETURNING id, name, email, password_hash, last_lat, last_lon, last_seen_at, beacon_ids, created_at
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id, loc.Lat, loc.Lon, at))
}

// AppendUserBeacon adds a beacon to the user's membership set.
// The single-statement update keeps the read-modify-write atomic and
// duplicate-free at the store boundary.
func (r *Repository) AppendUserBeacon(ctx context.Context, userID, beaconID string) error {
	query := `
		UPDATE users
		SET beacon_ids = array_append(beacon_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(beacon_ids))
	`

	if _, err := r.pool.Exec(ctx, query, userID, beaconID); err != nil {
		return fmt.Errorf("failed to append beacon to user: %w", err)
	}
	return nil
}

const userSelect = `
	SELECT id, name, email, password_hash, last_lat, last_lon, last_seen_at, beacon_ids, created_at
	FROM users
`

// scanUser scans a single user row.
func (r *Repository) scanUser(row pgx.Row) (*model.User, error) {
	var (
		user       model.User
		email      *string
		hash       *string
		lastLat    *float64
		lastLon    *float64
		lastSeenAt *time.Time
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&email,
		&hash,
		&lastLat,
		&lastLon,
		&lastSeenAt,
		pq.Array(&user.BeaconIDs),
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if email != nil {
		user.Email = *email
	}
	if hash != nil {
		user.PasswordHash = *hash
	}
	if lastLat != nil && lastLon != nil && lastSeenAt != nil {
		user.LastLocation = &model.UserLocation{
			Location:   model.Location{Lat: *lastLat, Lon: *lastLon},
			ReportedAt: *lastSeenAt,
		}
	}

	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "unique"))
}
