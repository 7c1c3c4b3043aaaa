package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rallypoint/rallypoint/internal/model"
)

// ErrLandmarkNotFound indicates the landmark does not exist.
var ErrLandmarkNotFound = errors.New("landmark not found")

// CreateLandmark inserts a new landmark into the database.
func (r *Repository) CreateLandmark(ctx context.Context, landmark *model.Landmark) error {
	query := `
		INSERT INTO landmarks (id, beacon_id, created_by, name, description, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		landmark.ID,
		landmark.BeaconID,
		landmark.CreatedBy,
		landmark.Name,
		landmark.Description,
		landmark.Location.Lat,
		landmark.Location.Lon,
		landmark.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create landmark: %w", err)
	}

	return nil
}

// GetLandmarkByID retrieves a landmark by its ID.
func (r *Repository) GetLandmarkByID(ctx context.Context, id string) (*model.Landmark, error) {
	query := landmarkSelect + ` WHERE id = $1`

	landmark, err := scanLandmark(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLandmarkNotFound
		}
		return nil, err
	}
	return landmark, nil
}

// ListLandmarksByBeacon returns a beacon's landmarks in creation order.
func (r *Repository) ListLandmarksByBeacon(ctx context.Context, beaconID string) ([]*model.Landmark, error) {
	query := landmarkSelect + ` WHERE beacon_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, beaconID)
	if err != nil {
		return nil, fmt.Errorf("failed to list landmarks: %w", err)
	}
	defer rows.Close()

	var landmarks []*model.Landmark
	for rows.Next() {
		landmark, err := scanLandmark(rows)
		if err != nil {
			return nil, err
		}
		landmarks = append(landmarks, landmark)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate landmarks: %w", err)
	}

	return landmarks, nil
}

const landmarkSelect = `
	SELECT id, beacon_id, created_by, name, description, lat, lon, created_at
	FROM landmarks
`

// scanLandmark scans a single landmark row.
func scanLandmark(row pgx.Row) (*model.Landmark, error) {
	var landmark model.Landmark

	err := row.Scan(
		&landmark.ID,
		&landmark.BeaconID,
		&landmark.CreatedBy,
		&landmark.Name,
		&landmark.Description,
		&landmark.Location.Lat,
		&landmark.Location.Lon,
		&landmark.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan landmark: %w", err)
	}

	return &landmark, nil
}
