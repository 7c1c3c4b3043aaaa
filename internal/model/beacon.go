package model

import "time"

// Beacon represents a group location-sharing session.
// Exactly one leader; followers never include the leader at creation or
// join time (see ChangeLeader for the known exception).
type Beacon struct {
	ID          string    `json:"id"`
	Shortcode   string    `json:"shortcode"`
	LeaderID    string    `json:"leader_id"`
	FollowerIDs []string  `json:"follower_ids"`
	Location    Location  `json:"location"`
	LandmarkIDs []string  `json:"landmark_ids"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsActive returns true if the beacon has not yet expired.
// Expired beacons are excluded from discovery and shortcode lookup but
// remain readable by id.
func (b *Beacon) IsActive() bool {
	return time.Now().Before(b.ExpiresAt)
}

// IsLeader returns true if the user currently leads the beacon.
func (b *Beacon) IsLeader(userID string) bool {
	return userID != "" && b.LeaderID == userID
}

// IsFollower returns true if the user is in the follower set.
func (b *Beacon) IsFollower(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range b.FollowerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsMember returns true if the user is the leader or a follower.
func (b *Beacon) IsMember(userID string) bool {
	return b.IsLeader(userID) || b.IsFollower(userID)
}
