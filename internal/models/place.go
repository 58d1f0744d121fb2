package models

// Place represents a named point of interest inside a region.
// Latitude/Longitude are nullable: a place can be created before it is pinned
// on the map, and the reconciliation engine skips coordinate-less places.
type Place struct {
	ID       int64  `json:"id" db:"id"`
	RegionID int64  `json:"region_id" db:"region_id"`
	Name     string `json:"name" db:"name"`

	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`

	// Display metadata
	Icon  string `json:"icon,omitempty" db:"icon"`
	Color string `json:"color,omitempty" db:"color"`
	Notes string `json:"notes,omitempty" db:"notes"`

	// RegionName is joined in when loading a trip detail; not a column of places
	RegionName string `json:"region_name,omitempty" db:"-"`
}

// HasLocation reports whether the place is pinned on the map
func (p *Place) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}
