package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rallypoint/rallypoint/internal/model"
)

// CreateLandmarkInput defines input for attaching a landmark to a beacon.
type CreateLandmarkInput struct {
	Name        string
	Description string
	Location    model.Location
}

// CreateLandmark attaches a point of interest to a session.
// Only current members (leader or follower) may create landmarks;
// non-membership is reported as a validation failure, matching the
// treatment of unknown beacons.
func (s *BeaconService) CreateLandmark(ctx context.Context, caller *model.User, beaconID string, input CreateLandmarkInput) (*model.Landmark, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: landmark name is required", ErrValidation)
	}

	beacon, err := s.getBeacon(ctx, beaconID)
	if err != nil {
		return nil, err
	}
	if !beacon.IsMember(caller.ID) {
		return nil, ErrNotBeaconMember
	}

	landmark := &model.Landmark{
		ID:          ulid.Make().String(),
		BeaconID:    beacon.ID,
		CreatedBy:   caller.ID,
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateLandmark(ctx, landmark); err != nil {
		return nil, err
	}
	if err := s.store.AppendBeaconLandmark(ctx, beacon.ID, landmark.ID); err != nil {
		return nil, err
	}

	s.metrics.IncLandmarkCreated()
	s.logger.Info("landmark created",
		"landmark_id", landmark.ID,
		"beacon_id", beacon.ID,
		"created_by", caller.ID,
	)

	return landmark, nil
}

// ListLandmarks returns a beacon's landmarks to one of its members.
func (s *BeaconService) ListLandmarks(ctx context.Context, caller *model.User, beaconID string) ([]*model.Landmark, error) {
	beacon, err := s.GetBeacon(ctx, caller, beaconID)
	if err != nil {
		return nil, err
	}
	return s.store.ListLandmarksByBeacon(ctx, beacon.ID)
}
