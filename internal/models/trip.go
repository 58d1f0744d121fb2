package models

import "time"

// Trip represents a user-owned trip, the top of the containment hierarchy
type Trip struct {
	ID     int64  `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`

	// Metadata
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Region represents a named grouping of places inside a trip
type Region struct {
	ID     int64  `json:"id" db:"id"`
	TripID int64  `json:"trip_id" db:"trip_id"`
	Name   string `json:"name" db:"name"`
}

// TripDetail bundles a trip with its regions and places
type TripDetail struct {
	Trip    Trip     `json:"trip"`
	Regions []Region `json:"regions"`
	Places  []Place  `json:"places"`
}
