// Package model defines domain entities for the application.
package model

import "time"

// User represents a participant identity.
// Registered users carry an email and password hash; anonymous-capable
// users have neither and can only authenticate by id.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	PasswordHash string        `json:"-"`
	LastLocation *UserLocation `json:"last_location,omitempty"`
	BeaconIDs    []string      `json:"beacon_ids"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Registered returns true if the user has stored credentials.
// Registered users must authenticate by password, never by id alone.
func (u *User) Registered() bool {
	return u.PasswordHash != ""
}

// HasBeacon returns true if the beacon id is in the user's membership set.
func (u *User) HasBeacon(beaconID string) bool {
	for _, id := range u.BeaconIDs {
		if id == beaconID {
			return true
		}
	}
	return false
}
