package service

import (
	"context"
	"time"

	"github.com/rallypoint/rallypoint/internal/model"
	"github.com/rallypoint/rallypoint/internal/repository"
)

// fakeStore is an in-memory Store for unit tests.
type fakeStore struct {
	users     map[string]*model.User
	beacons   map[string]*model.Beacon
	landmarks map[string]*model.Landmark

	shortcodeChecks int
	// collisionsRemaining forces the first N generation checks to collide.
	collisionsRemaining int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*model.User),
		beacons:   make(map[string]*model.Beacon),
		landmarks: make(map[string]*model.Landmark),
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.Email != "" {
		for _, u := range f.users {
			if u.Email == user.Email {
				return repository.ErrEmailExists
			}
		}
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateUserLocation(ctx context.Context, id string, loc model.Location, at time.Time) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.LastLocation = &model.UserLocation{Location: loc, ReportedAt: at}
	return cloneUser(user), nil
}

func (f *fakeStore) AppendUserBeacon(ctx context.Context, userID, beaconID string) error {
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if !user.HasBeacon(beaconID) {
		user.BeaconIDs = append(user.BeaconIDs, beaconID)
	}
	return nil
}

func (f *fakeStore) CreateBeacon(ctx context.Context, beacon *model.Beacon) error {
	for _, b := range f.beacons {
		if b.Shortcode == beacon.Shortcode && b.IsActive() {
			return repository.ErrShortcodeExists
		}
	}
	f.beacons[beacon.ID] = cloneBeacon(beacon)
	return nil
}

func (f *fakeStore) GetBeaconByID(ctx context.Context, id string) (*model.Beacon, error) {
	beacon, ok := f.beacons[id]
	if !ok {
		return nil, repository.ErrBeaconNotFound
	}
	return cloneBeacon(beacon), nil
}

func (f *fakeStore) GetActiveBeaconByShortcode(ctx context.Context, shortcode string) (*model.Beacon, error) {
	for _, beacon := range f.beacons {
		if beacon.Shortcode == shortcode && beacon.IsActive() {
			return cloneBeacon(beacon), nil
		}
	}
	return nil, repository.ErrBeaconNotFound
}

func (f *fakeStore) ActiveShortcodeExists(ctx context.Context, shortcode string) (bool, error) {
	f.shortcodeChecks++
	if f.collisionsRemaining > 0 {
		f.collisionsRemaining--
		return true, nil
	}
	for _, beacon := range f.beacons {
		if beacon.Shortcode == shortcode && beacon.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AddFollower(ctx context.Context, beaconID, userID string) error {
	beacon, ok := f.beacons[beaconID]
	if !ok {
		return repository.ErrBeaconNotFound
	}
	if beacon.IsLeader(userID) || beacon.IsFollower(userID) {
		return repository.ErrAlreadyFollower
	}
	beacon.FollowerIDs = append(beacon.FollowerIDs, userID)
	return nil
}

func (f *fakeStore) UpdateBeaconLocation(ctx context.Context, beaconID string, loc model.Location) (*model.Beacon, error) {
	beacon, ok := f.beacons[beaconID]
	if !ok {
		return nil, repository.ErrBeaconNotFound
	}
	beacon.Location = loc
	return cloneBeacon(beacon), nil
}

func (f *fakeStore) UpdateBeaconLeader(ctx context.Context, beaconID, newLeaderID string) (*model.Beacon, error) {
	beacon, ok := f.beacons[beaconID]
	if !ok {
		return nil, repository.ErrBeaconNotFound
	}
	beacon.LeaderID = newLeaderID
	return cloneBeacon(beacon), nil
}

func (f *fakeStore) AppendBeaconLandmark(ctx context.Context, beaconID, landmarkID string) error {
	beacon, ok := f.beacons[beaconID]
	if !ok {
		return repository.ErrBeaconNotFound
	}
	beacon.LandmarkIDs = append(beacon.LandmarkIDs, landmarkID)
	return nil
}

func (f *fakeStore) ListActiveBeacons(ctx context.Context) ([]*model.Beacon, error) {
	var active []*model.Beacon
	for _, beacon := range f.beacons {
		if beacon.IsActive() {
			active = append(active, cloneBeacon(beacon))
		}
	}
	return active, nil
}

func (f *fakeStore) CreateLandmark(ctx context.Context, landmark *model.Landmark) error {
	copied := *landmark
	f.landmarks[landmark.ID] = &copied
	return nil
}

func (f *fakeStore) ListLandmarksByBeacon(ctx context.Context, beaconID string) ([]*model.Landmark, error) {
	var out []*model.Landmark
	for _, landmark := range f.landmarks {
		if landmark.BeaconID == beaconID {
			copied := *landmark
			out = append(out, &copied)
		}
	}
	return out, nil
}

func cloneUser(u *model.User) *model.User {
	copied := *u
	copied.BeaconIDs = append([]string(nil), u.BeaconIDs...)
	return &copied
}

func cloneBeacon(b *model.Beacon) *model.Beacon {
	copied := *b
	copied.FollowerIDs = append([]string(nil), b.FollowerIDs...)
	copied.LandmarkIDs = append([]string(nil), b.LandmarkIDs...)
	return &copied
}
