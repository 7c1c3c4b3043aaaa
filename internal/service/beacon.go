package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rallypoint/rallypoint/internal/bus"
	"github.com/rallypoint/rallypoint/internal/geo"
	"github.com/rallypoint/rallypoint/internal/metrics"
	"github.com/rallypoint/rallypoint/internal/model"
	"github.com/rallypoint/rallypoint/internal/repository"
)

const (
	shortcodeLength = 6
	// No 0/O, 1/I/L: shortcodes are typed by hand.
	shortcodeAlphabet   = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	maxShortcodeRetries = 5
)

// BeaconService handles beacon session mutations and discovery.
type BeaconService struct {
	store     Store
	cache     ShortcodeCache
	bus       *bus.Bus
	logger    *slog.Logger
	metrics   metrics.Recorder
	beaconTTL time.Duration
}

// NewBeaconService creates a new BeaconService.
// cache may be nil; beaconTTL is the default session lifetime when the
// caller does not supply an expiry.
func NewBeaconService(store Store, cache ShortcodeCache, b *bus.Bus, beaconTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *BeaconService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BeaconService{
		store:     store,
		cache:     cache,
		bus:       b,
		logger:    logger.With("component", "service.beacon"),
		metrics:   recorder,
		beaconTTL: beaconTTL,
	}
}

// CreateBeaconInput defines input for creating a beacon.
type CreateBeaconInput struct {
	Start     model.Location
	ExpiresAt *time.Time
}

// CreateBeacon starts a new session with the caller as leader.
// Creation is not broadcast.
func (s *BeaconService) CreateBeacon(ctx context.Context, caller *model.User, input CreateBeaconInput) (*model.Beacon, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.beaconTTL)
	if input.ExpiresAt != nil {
		if input.ExpiresAt.Before(now) {
			return nil, ErrExpiresInPast
		}
		expiresAt = input.ExpiresAt.UTC()
	}

	// Shortcode uniqueness is advisory: the generation check races with
	// concurrent creators, so insert conflicts retry with a fresh code.
	var beacon *model.Beacon
	for attempt := 0; attempt < maxShortcodeRetries; attempt++ {
		code, err := s.generateShortcode(ctx)
		if err != nil {
			return nil, err
		}

		beacon = &model.Beacon{
			ID:          ulid.Make().String(),
			Shortcode:   code,
			LeaderID:    caller.ID,
			FollowerIDs: []string{},
			Location:    input.Start,
			LandmarkIDs: []string{},
			ExpiresAt:   expiresAt,
			CreatedAt:   now,
		}

		err = s.store.CreateBeacon(ctx, beacon)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrShortcodeExists) {
			beacon = nil
			continue
		}
		return nil, fmt.Errorf("failed to create beacon: %w", err)
	}
	if beacon == nil {
		return nil, errors.New("failed to create beacon after shortcode retries")
	}

	if err := s.store.AppendUserBeacon(ctx, caller.ID, beacon.ID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetShortcode(ctx, beacon.Shortcode, beacon.ID, beacon.ExpiresAt); err != nil {
			s.logger.Warn("failed to cache shortcode", "error", err)
		}
	}

	s.metrics.IncBeaconCreated()
	s.logger.Info("beacon created",
		"beacon_id", beacon.ID,
		"shortcode", beacon.Shortcode,
		"leader_id", caller.ID,
	)

	return beacon, nil
}

// JoinBeacon adds the caller to the session matching the shortcode and
// announces the join to live subscribers before returning.
func (s *BeaconService) JoinBeacon(ctx context.Context, caller *model.User, shortcode string) (*model.Beacon, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}
	if shortcode == "" {
		return nil, ErrShortcodeNotFound
	}

	beacon, err := s.resolveShortcode(ctx, shortcode)
	if err != nil {
		return nil, err
	}

	if beacon.IsMember(caller.ID) {
		return nil, ErrAlreadyJoined
	}

	if err := s.store.AddFollower(ctx, beacon.ID, caller.ID); err != nil {
		// A concurrent join may have added the caller first.
		if errors.Is(err, repository.ErrAlreadyFollower) {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}
	beacon.FollowerIDs = append(beacon.FollowerIDs, caller.ID)

	if err := s.store.AppendUserBeacon(ctx, caller.ID, beacon.ID); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.TopicBeaconJoined, bus.BeaconJoinedPayload{
		BeaconID: beacon.ID,
		User:     caller,
	})

	s.metrics.IncBeaconJoined()
	s.logger.Info("beacon joined",
		"beacon_id", beacon.ID,
		"user_id", caller.ID,
	)

	return beacon, nil
}

// UpdateBeaconLocation moves the session's shared reference point.
// Leader only. The event goes out before the write so subscribers see
// the change as soon as the mutation is accepted.
func (s *BeaconService) UpdateBeaconLocation(ctx context.Context, caller *model.User, beaconID string, loc model.Location) (*model.Beacon, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}

	beacon, err := s.getBeacon(ctx, beaconID)
	if err != nil {
		return nil, err
	}
	if !beacon.IsLeader(caller.ID) {
		return nil, ErrNotLeader
	}

	s.bus.Publish(bus.TopicBeaconLocation, bus.BeaconLocationPayload{
		BeaconID: beacon.ID,
		Location: loc,
	})

	updated, err := s.store.UpdateBeaconLocation(ctx, beacon.ID, loc)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateUserLocation persists the caller's position and broadcasts it to
// the beacon's subscribers. The beacon scopes the broadcast only; the
// caller need not be a member.
func (s *BeaconService) UpdateUserLocation(ctx context.Context, caller *model.User, beaconID string, loc model.Location) (*model.User, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}

	beacon, err := s.getBeacon(ctx, beaconID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUserLocation(ctx, caller.ID, loc, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.bus.Publish(bus.TopicUserLocation, bus.UserLocationPayload{
		BeaconID: beacon.ID,
		User:     updated,
	})

	return updated, nil
}

// ChangeLeader reassigns session leadership. Leader only.
//
// The outgoing leader is not demoted into the follower set and an
// incoming leader already in it is not removed. Leadership is treated as
// orthogonal to membership here; membership checks tolerate the overlap.
func (s *BeaconService) ChangeLeader(ctx context.Context, caller *model.User, beaconID, newLeaderID string) (*model.Beacon, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}
	if newLeaderID == "" {
		return nil, fmt.Errorf("%w: new leader id is required", ErrValidation)
	}

	beacon, err := s.getBeacon(ctx, beaconID)
	if err != nil {
		return nil, err
	}
	if !beacon.IsLeader(caller.ID) {
		return nil, ErrNotLeader
	}

	if _, err := s.store.GetUserByID(ctx, newLeaderID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updated, err := s.store.UpdateBeaconLeader(ctx, beacon.ID, newLeaderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("beacon leadership changed",
		"beacon_id", beacon.ID,
		"old_leader_id", caller.ID,
		"new_leader_id", newLeaderID,
	)

	return updated, nil
}

// FindNearbyBeacons returns all active beacons within the fixed
// discovery radius of the query point. No authentication required.
func (s *BeaconService) FindNearbyBeacons(ctx context.Context, loc model.Location) ([]*model.Beacon, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveNearbyQueryDuration(time.Since(start))
	}()

	active, err := s.store.ListActiveBeacons(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*model.Beacon, 0, len(active))
	for _, beacon := range active {
		if geo.WithinRadius(loc, beacon.Location, geo.DiscoveryRadiusMeters) {
			nearby = append(nearby, beacon)
		}
	}

	return nearby, nil
}

// GetBeacon returns the beacon to one of its members.
func (s *BeaconService) GetBeacon(ctx context.Context, caller *model.User, beaconID string) (*model.Beacon, error) {
	if caller == nil {
		return nil, ErrCallerRequired
	}

	beacon, err := s.getBeacon(ctx, beaconID)
	if err != nil {
		return nil, err
	}
	if !beacon.IsMember(caller.ID) {
		return nil, ErrNotMember
	}

	return beacon, nil
}

// getBeacon loads a beacon, mapping a store miss to a validation error.
func (s *BeaconService) getBeacon(ctx context.Context, beaconID string) (*model.Beacon, error) {
	if beaconID == "" {
		return nil, ErrBeaconNotFound
	}

	beacon, err := s.store.GetBeaconByID(ctx, beaconID)
	if err != nil {
		if errors.Is(err, repository.ErrBeaconNotFound) {
			return nil, ErrBeaconNotFound
		}
		return nil, err
	}
	return beacon, nil
}

// resolveShortcode finds the active beacon for a shortcode, cache first.
func (s *BeaconService) resolveShortcode(ctx context.Context, shortcode string) (*model.Beacon, error) {
	if s.cache != nil {
		if beaconID, err := s.cache.GetShortcode(ctx, shortcode); err == nil {
			s.metrics.IncShortcodeCacheHit()
			beacon, err := s.store.GetBeaconByID(ctx, beaconID)
			if err == nil && beacon.IsActive() {
				return beacon, nil
			}
			// Stale mapping: fall through to the store lookup.
			_ = s.cache.DeleteShortcode(ctx, shortcode)
		} else {
			s.metrics.IncShortcodeCacheMiss()
			if negative, _ := s.cache.IsNegativelyCached(ctx, shortcode); negative {
				return nil, ErrShortcodeNotFound
			}
		}
	}

	beacon, err := s.store.GetActiveBeaconByShortcode(ctx, shortcode)
	if err != nil {
		if errors.Is(err, repository.ErrBeaconNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, shortcode)
			}
			return nil, ErrShortcodeNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetShortcode(ctx, beacon.Shortcode, beacon.ID, beacon.ExpiresAt); err != nil {
			s.logger.Warn("failed to cache shortcode", "error", err)
		}
	}

	return beacon, nil
}

// generateShortcode generates a shortcode unique among active beacons,
// with collision retry. Uniqueness is best effort unless the store
// enforces a constraint.
func (s *BeaconService) generateShortcode(ctx context.Context) (string, error) {
	for i := 0; i < maxShortcodeRetries; i++ {
		code := randomShortcode()
		exists, err := s.store.ActiveShortcodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check shortcode: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique shortcode after retries")
}

// randomShortcode generates a random shortcode using crypto/rand.
func randomShortcode() string {
	b := make([]byte, shortcodeLength)
	for i := range b {
		idx, err := cryptoRandInt(len(shortcodeAlphabet))
		if err != nil {
			// Fallback (should never happen in practice)
			idx = 0
		}
		b[i] = shortcodeAlphabet[idx]
	}
	return string(b)
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
