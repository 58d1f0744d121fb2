package models

// NewVisit is a strict candidate: a (place, date) pair that met the minimum-hit
// threshold inside the search radius and is not yet a committed visit
type NewVisit struct {
	PlaceID    int64   `json:"place_id"`
	PlaceName  string  `json:"place_name"`
	RegionName string  `json:"region_name"`
	Date       string  `json:"date"` // YYYY-MM-DD
	HitCount   int     `json:"hit_count"`
	AvgDistM   float64 `json:"avg_dist_m"`
	Confidence int     `json:"confidence"` // 0-100
	FirstSeen  int64   `json:"first_seen"` // Unix timestamp
	LastSeen   int64   `json:"last_seen"`
}

// SuggestedVisit is a weak-evidence (place, date) pair surfaced for manual
// confirmation, never auto-committed
type SuggestedVisit struct {
	PlaceID      int64   `json:"place_id"`
	PlaceName    string  `json:"place_name"`
	RegionName   string  `json:"region_name"`
	Date         string  `json:"date"`
	MinDistM     float64 `json:"min_dist_m"`
	HitCount     int     `json:"hit_count"` // total hits within the extended radius
	CheckinCount int     `json:"checkin_count"`
	Reason       string  `json:"reason"`
	FirstSeen    int64   `json:"first_seen"`
	LastSeen     int64   `json:"last_seen"`
}

// Stale visit reasons
const (
	StaleReasonDeleted = "Place was deleted"
	StaleReasonMissing = "Place no longer exists"
	StaleReasonMoved   = "Place was moved"
)

// StaleVisit flags a committed visit whose backing place was deleted, removed
// from the trip, or moved beyond the search radius
type StaleVisit struct {
	VisitID   string  `json:"visit_id"`
	PlaceName string  `json:"place_name"`
	Date      string  `json:"date"`
	Reason    string  `json:"reason"`
	DistM     float64 `json:"dist_m,omitempty"` // set only for "Place was moved"
}

// Report is the result of a reconciliation preview
type Report struct {
	NewVisits        []NewVisit       `json:"new_visits"`
	SuggestedVisits  []SuggestedVisit `json:"suggested_visits"`
	StaleVisits      []StaleVisit     `json:"stale_visits"`
	ExistingVisits   []Visit          `json:"existing_visits"`
	LocationsScanned int64            `json:"locations_scanned"`
	PlacesAnalyzed   int              `json:"places_analyzed"`
	DurationMs       int64            `json:"duration_ms"`
}

// VisitCreate is one user-approved creation item of an apply request
type VisitCreate struct {
	PlaceID   int64  `json:"place_id" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	FirstSeen int64  `json:"first_seen"`
	LastSeen  int64  `json:"last_seen"`
}

// ApplyRequest carries the user-approved subsets of a preview report
type ApplyRequest struct {
	CreateVisits         []VisitCreate `json:"create_visits"`
	ConfirmedSuggestions []VisitCreate `json:"confirmed_suggestions"`
	DeleteVisitIDs       []string      `json:"delete_visit_ids"`
}

// ApplyResult reports what an apply call committed
type ApplyResult struct {
	Created              int `json:"created"`
	SuggestionsConfirmed int `json:"suggestions_confirmed"`
	Deleted              int `json:"deleted"`
	Skipped              int `json:"skipped"`
}
