package service

import (
	"context"
	"time"

	"github.com/rallypoint/rallypoint/internal/model"
)

// UserStore defines the persistence interface for users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserLocation(ctx context.Context, id string, loc model.Location, at time.Time) (*model.User, error)
	AppendUserBeacon(ctx context.Context, userID, beaconID string) error
}

// BeaconStore defines the persistence interface for beacons.
type BeaconStore interface {
	CreateBeacon(ctx context.Context, beacon *model.Beacon) error
	GetBeaconByID(ctx context.Context, id string) (*model.Beacon, error)
	GetActiveBeaconByShortcode(ctx context.Context, shortcode string) (*model.Beacon, error)
	ActiveShortcodeExists(ctx context.Context, shortcode string) (bool, error)
	AddFollower(ctx context.Context, beaconID, userID string) error
	UpdateBeaconLocation(ctx context.Context, beaconID string, loc model.Location) (*model.Beacon, error)
	UpdateBeaconLeader(ctx context.Context, beaconID, newLeaderID string) (*model.Beacon, error)
	AppendBeaconLandmark(ctx context.Context, beaconID, landmarkID string) error
	ListActiveBeacons(ctx context.Context) ([]*model.Beacon, error)
}

// LandmarkStore defines the persistence interface for landmarks.
type LandmarkStore interface {
	CreateLandmark(ctx context.Context, landmark *model.Landmark) error
	ListLandmarksByBeacon(ctx context.Context, beaconID string) ([]*model.Landmark, error)
}

// Store is the full persistence surface the services depend on.
// *repository.Repository satisfies it.
type Store interface {
	UserStore
	BeaconStore
	LandmarkStore
}

// ShortcodeCache is the optional cache in front of shortcode lookups.
// *cache.Cache satisfies it; services tolerate nil.
type ShortcodeCache interface {
	GetShortcode(ctx context.Context, shortcode string) (string, error)
	SetShortcode(ctx context.Context, shortcode, beaconID string, expiresAt time.Time) error
	DeleteShortcode(ctx context.Context, shortcode string) error
	IsNegativelyCached(ctx context.Context, shortcode string) (bool, error)
	SetNegativeCache(ctx context.Context, shortcode string) error
}
