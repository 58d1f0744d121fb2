package models

import "time"

// Visit source constants
const (
	VisitSourceBackfill      = "backfill"
	VisitSourceUserConfirmed = "backfill-user-confirmed"
)

// Visit represents a committed visit record for one place on one calendar day.
// PlaceID is nullable: it is set to null when the originating place is later
// deleted, and the snapshot columns keep the visit displayable. Snapshot fields
// are written once at creation time and never mutated afterwards.
type Visit struct {
	ID     string `json:"id" db:"id"` // UUID
	UserID string `json:"user_id" db:"user_id"`

	PlaceID *int64 `json:"place_id,omitempty" db:"place_id"`

	VisitDate  string `json:"visit_date" db:"visit_date"` // YYYY-MM-DD
	ArrivedAt  int64  `json:"arrived_at" db:"arrived_at"` // Unix timestamp
	LastSeenAt int64  `json:"last_seen_at" db:"last_seen_at"`
	EndedAt    int64  `json:"ended_at" db:"ended_at"`

	// Snapshots taken at creation time
	TripName   string   `json:"trip_name" db:"trip_name"`
	RegionName string   `json:"region_name" db:"region_name"`
	PlaceName  string   `json:"place_name" db:"place_name"`
	PlaceLat   *float64 `json:"place_lat,omitempty" db:"place_lat"`
	PlaceLon   *float64 `json:"place_lon,omitempty" db:"place_lon"`
	Notes      string   `json:"notes,omitempty" db:"notes"`
	Icon       string   `json:"icon,omitempty" db:"icon"`
	Color      string   `json:"color,omitempty" db:"color"`

	// Source records how the visit came to exist, e.g. "backfill"
	Source string `json:"source" db:"source"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
