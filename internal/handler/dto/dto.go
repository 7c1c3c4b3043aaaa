// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/rallypoint/rallypoint/internal/model"
)

// LocationDTO represents a geographic point in requests and responses.
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RegisterRequest represents the request body for creating a user.
// Email and password are optional but must be supplied together.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// LoginRequest represents the request body for issuing a token.
// Exactly one of user_id or email/password must be supplied.
type LoginRequest struct {
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// LoginResponse carries the signed bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Registered   bool         `json:"registered"`
	LastLocation *LocationDTO `json:"last_location,omitempty"`
	BeaconIDs    []string     `json:"beacon_ids"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CreateBeaconRequest represents the request body for starting a session.
type CreateBeaconRequest struct {
	Start     LocationDTO `json:"start"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// JoinBeaconRequest represents the request body for joining by shortcode.
type JoinBeaconRequest struct {
	Shortcode string `json:"shortcode"`
}

// UpdateLocationRequest represents a location update.
type UpdateLocationRequest struct {
	Location LocationDTO `json:"location"`
}

// ChangeLeaderRequest represents a leadership handover.
type ChangeLeaderRequest struct {
	NewLeaderID string `json:"new_leader_id"`
}

// BeaconResponse represents a beacon session in API responses.
type BeaconResponse struct {
	ID          string      `json:"id"`
	Shortcode   string      `json:"shortcode"`
	LeaderID    string      `json:"leader_id"`
	FollowerIDs []string    `json:"follower_ids"`
	Location    LocationDTO `json:"location"`
	LandmarkIDs []string    `json:"landmark_ids"`
	Active      bool        `json:"active"`
	ExpiresAt   time.Time   `json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

// BeaconListResponse represents a set of beacons, e.g. discovery results.
type BeaconListResponse struct {
	Data []*BeaconResponse `json:"data"`
}

// CreateLandmarkRequest represents the request body for adding a landmark.
type CreateLandmarkRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Location    LocationDTO `json:"location"`
}

// LandmarkResponse represents a landmark in API responses.
type LandmarkResponse struct {
	ID          string      `json:"id"`
	BeaconID    string      `json:"beacon_id"`
	CreatedBy   string      `json:"created_by"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Location    LocationDTO `json:"location"`
	CreatedAt   time.Time   `json:"created_at"`
}

// LandmarkListResponse represents a beacon's landmarks.
type LandmarkListResponse struct {
	Data []*LandmarkResponse `json:"data"`
}

// BeaconLocationEvent is the stream payload for a beacon move.
type BeaconLocationEvent struct {
	BeaconID string      `json:"beacon_id"`
	Location LocationDTO `json:"location"`
}

// MemberLocationEvent is the stream payload for a member's position update.
type MemberLocationEvent struct {
	BeaconID string        `json:"beacon_id"`
	User     *UserResponse `json:"user"`
}

// BeaconJoinedEvent is the stream payload for a join announcement.
type BeaconJoinedEvent struct {
	BeaconID string        `json:"beacon_id"`
	User     *UserResponse `json:"user"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToLocation converts a LocationDTO to the domain type.
func (l LocationDTO) ToLocation() model.Location {
	return model.Location{Lat: l.Lat, Lon: l.Lon}
}

// FromLocation converts a domain location to its DTO.
func FromLocation(loc model.Location) LocationDTO {
	return LocationDTO{Lat: loc.Lat, Lon: loc.Lon}
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Registered: user.Registered(),
		BeaconIDs:  user.BeaconIDs,
		CreatedAt:  user.CreatedAt,
	}
	if resp.BeaconIDs == nil {
		resp.BeaconIDs = []string{}
	}
	if user.LastLocation != nil {
		loc := FromLocation(user.LastLocation.Location)
		resp.LastLocation = &loc
	}
	return resp
}

// ToBeaconResponse converts a Beacon model to BeaconResponse DTO.
func ToBeaconResponse(beacon *model.Beacon) *BeaconResponse {
	resp := &BeaconResponse{
		ID:          beacon.ID,
		Shortcode:   beacon.Shortcode,
		LeaderID:    beacon.LeaderID,
		FollowerIDs: beacon.FollowerIDs,
		Location:    FromLocation(beacon.Location),
		LandmarkIDs: beacon.LandmarkIDs,
		Active:      beacon.IsActive(),
		ExpiresAt:   beacon.ExpiresAt,
		CreatedAt:   beacon.CreatedAt,
	}
	if resp.FollowerIDs == nil {
		resp.FollowerIDs = []string{}
	}
	if resp.LandmarkIDs == nil {
		resp.LandmarkIDs = []string{}
	}
	return resp
}

// ToBeaconListResponse converts beacons to a list response.
func ToBeaconListResponse(beacons []*model.Beacon) *BeaconListResponse {
	data := make([]*BeaconResponse, 0, len(beacons))
	for _, beacon := range beacons {
		data = append(data, ToBeaconResponse(beacon))
	}
	return &BeaconListResponse{Data: data}
}

// ToLandmarkResponse converts a Landmark model to LandmarkResponse DTO.
func ToLandmarkResponse(landmark *model.Landmark) *LandmarkResponse {
	return &LandmarkResponse{
		ID:          landmark.ID,
		BeaconID:    landmark.BeaconID,
		CreatedBy:   landmark.CreatedBy,
		Name:        landmark.Name,
		Description: landmark.Description,
		Location:    FromLocation(landmark.Location),
		CreatedAt:   landmark.CreatedAt,
	}
}

// ToLandmarkListResponse converts landmarks to a list response.
func ToLandmarkListResponse(landmarks []*model.Landmark) *LandmarkListResponse {
	data := make([]*LandmarkResponse, 0, len(landmarks))
	for _, landmark := range landmarks {
		data = append(data, ToLandmarkResponse(landmark))
	}
	return &LandmarkListResponse{Data: data}
}
