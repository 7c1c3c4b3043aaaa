package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/rallypoint/rallypoint/internal/model"
)

// Common errors for beacon repository operations.
var (
	ErrBeaconNotFound  = errors.New("beacon not found")
	ErrShortcodeExists = errors.New("shortcode already exists")
	ErrAlreadyFollower = errors.New("user is already a follower")
)

// CreateBeacon inserts a new beacon into the database.
func (r *Repository) CreateBeacon(ctx context.Context, beacon *model.Beacon) error {
	query := `
		INSERT INTO beacons (id, shortcode, leader_id, follower_ids, lat, lon, landmark_ids, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		beacon.ID,
		beacon.Shortcode,
		beacon.LeaderID,
		pq.Array(beacon.FollowerIDs),
		beacon.Location.Lat,
		beacon.Location.Lon,
		pq.Array(beacon.LandmarkIDs),
		beacon.ExpiresAt,
		beacon.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrShortcodeExists
		}
		return fmt.Errorf("failed to create beacon: %w", err)
	}

	return nil
}

// GetBeaconByID retrieves a beacon by its ID, active or not.
func (r *Repository) GetBeaconByID(ctx context.Context, id string) (*model.Beacon, error) {
	query := beaconSelect + ` WHERE id = $1`
	return r.scanBeacon(r.pool.QueryRow(ctx, query, id))
}

// GetActiveBeaconByShortcode retrieves an unexpired beacon by shortcode.
// Expired beacons are invisible here so their shortcodes can be reused.
func (r *Repository) GetActiveBeaconByShortcode(ctx context.Context, shortcode string) (*model.Beacon, error) {
	query := beaconSelect + ` WHERE shortcode = $1 AND expires_at > now()`
	return r.scanBeacon(r.pool.QueryRow(ctx, query, shortcode))
}

// ActiveShortcodeExists reports whether an unexpired beacon uses the shortcode.
func (r *Repository) ActiveShortcodeExists(ctx context.Context, shortcode string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM beacons WHERE shortcode = $1 AND expires_at > now()
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, shortcode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check shortcode: %w", err)
	}
	return exists, nil
}

// AddFollower appends a user to the beacon's follower set.
// The guard clauses keep the leader out of the set and reject rejoins in
// a single atomic statement.
func (r *Repository) AddFollower(ctx context.Context, beaconID, userID string) error {
	query := `
		UPDATE beacons
		SET follower_ids = array_append(follower_ids, $2)
		WHERE id = $1 AND leader_id <> $2 AND NOT ($2 = ANY(follower_ids))
	`

	tag, err := r.pool.Exec(ctx, query, beaconID, userID)
	if err != nil {
		return fmt.Errorf("failed to add follower: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFollower
	}
	return nil
}

// UpdateBeaconLocation persists the beacon's shared reference point and
// returns the updated record.
func (r *Repository) UpdateBeaconLocation(ctx context.Context, beaconID string, loc model.Location) (*model.Beacon, error) {
	query := `
		UPDATE beacons
		SET lat = $2, lon = $3
		WHERE id = $1
		RETURNING id, shortcode, leader_id, follower_ids, lat, lon, landmark_ids, expires_at, created_at
	`
	return r.scanBeacon(r.pool.QueryRow(ctx, query, beaconID, loc.Lat, loc.Lon))
}

// UpdateBeaconLeader reassigns leadership. The follower set is left
// untouched; see the service layer for why.
func (r *Repository) UpdateBeaconLeader(ctx context.Context, beaconID, newLeaderID string) (*model.Beacon, error) {
	query := `
		UPDATE beacons
		SET leader_id = $2
		WHERE id = $1
		RETURNING id, shortcode, leader_id, follower_ids, lat, lon, landmark_ids, expires_at, created_at
	`
	return r.scanBeacon(r.pool.QueryRow(ctx, query, beaconID, newLeaderID))
}

// AppendBeaconLandmark appends a landmark id to the beacon's ordered sequence.
func (r *Repository) AppendBeaconLandmark(ctx context.Context, beaconID, landmarkID string) error {
	query := `
		UPDATE beacons
		SET landmark_ids = array_append(landmark_ids, $2)
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, beaconID, landmarkID); err != nil {
		return fmt.Errorf("failed to append landmark: %w", err)
	}
	return nil
}

// ListActiveBeacons returns all unexpired beacons.
// Proximity filtering happens in the service layer.
func (r *Repository) ListActiveBeacons(ctx context.Context) ([]*model.Beacon, error) {
	query := beaconSelect + ` WHERE expires_at > now() ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active beacons: %w", err)
	}
	defer rows.Close()

	var beacons []*model.Beacon
	for rows.Next() {
		beacon, err := r.scanBeacon(rows)
		if err != nil {
			return nil, err
		}
		beacons = append(beacons, beacon)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate beacons: %w", err)
	}

	return beacons, nil
}

const beaconSelect = `
	SELECT id, shortcode, leader_id, follower_ids, lat, lon, landmark_ids, expires_at, created_at
	FROM beacons
`

// scanBeacon scans a single beacon row.
func (r *Repository) scanBeacon(row pgx.Row) (*model.Beacon, error) {
	var beacon model.Beacon

	err := row.Scan(
		&beacon.ID,
		&beacon.Shortcode,
		&beacon.LeaderID,
		pq.Array(&beacon.FollowerIDs),
		&beacon.Location.Lat,
		&beacon.Location.Lon,
		pq.Array(&beacon.LandmarkIDs),
		&beacon.ExpiresAt,
		&beacon.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBeaconNotFound
		}
		return nil, fmt.Errorf("failed to scan beacon: %w", err)
	}

	return &beacon, nil
}
