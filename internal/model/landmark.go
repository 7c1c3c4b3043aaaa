package model

import "time"

// Landmark is a point of interest attached to exactly one beacon.
// Immutable once created.
type Landmark struct {
	ID          string    `json:"id"`
	BeaconID    string    `json:"beacon_id"`
	CreatedBy   string    `json:"created_by"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    Location  `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}
