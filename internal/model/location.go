// Package model defines domain entities for the application.
package model

import "time"

// Location is a geographic point shared between users and beacons.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// UserLocation is a user's last reported position with its timestamp.
type UserLocation struct {
	Location
	ReportedAt time.Time `json:"reported_at"`
}
