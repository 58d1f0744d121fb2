package reconcile

import (
	"context"
	"errors"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// ErrTripNotFound is returned when the trip does not exist or is not owned by
// the caller; the two cases are deliberately indistinguishable.
var ErrTripNotFound = errors.New("trip not found")

// PlaceTarget is a place coordinate handed to the spatial store
type PlaceTarget struct {
	PlaceID int64
	Lat     float64
	Lon     float64
}

// CandidateGroup is one (place, local calendar day) group of pings inside the
// strict search radius
type CandidateGroup struct {
	PlaceID   int64
	Date      string // YYYY-MM-DD
	HitCount  int
	AvgDistM  float64
	FirstSeen int64 // Unix timestamp
	LastSeen  int64
}

// TierStats is the tiered evidence breakdown for one (place, day) out to the
// suggestion ceiling radius
type TierStats struct {
	PlaceID      int64
	Date         string
	MinDistM     float64
	Tier1Hits    int
	Tier2Hits    int
	Tier3Hits    int
	TotalHits    int
	CheckinCount int
	FirstSeen    int64
	LastSeen     int64
}

// TierRadii carries the three suggestion radii plus the ceiling, in meters
type TierRadii struct {
	Tier1 float64
	Tier2 float64
	Tier3 float64
	Max   float64
}

// PingStore is the read-only spatial store over a user's location history
type PingStore interface {
	// FindCandidates queries one place, grouped by local date
	FindCandidates(ctx context.Context, userID string, place PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]CandidateGroup, error)

	// FindCandidatesBatch queries a batch of places in a single scan
	FindCandidatesBatch(ctx context.Context, userID string, places []PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]CandidateGroup, error)

	// TierStats returns the tiered breakdown per (place, day) inside radii.Max
	TierStats(ctx context.Context, userID string, places []PlaceTarget, radii TierRadii, window models.DateRange) ([]TierStats, error)

	// CountPings counts the user's pings inside the window
	CountPings(ctx context.Context, userID string, window models.DateRange) (int64, error)
}

// TripStore is the read-only trip/region/place store.
// GetTripDetail returns (nil, nil) when the trip is missing or not owned.
type TripStore interface {
	GetTripDetail(ctx context.Context, userID string, tripID int64) (*models.TripDetail, error)
}

// VisitStore persists committed visit records
type VisitStore interface {
	// ListForTrip returns the user's visits whose place is one of placeIDs OR
	// whose trip-name snapshot matches tripName
	ListForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) ([]models.Visit, error)

	// Commit inserts creates and deletes deleteIDs as one atomic unit. Rows
	// rejected by the store's uniqueness guard are silently dropped; the ids of
	// the visits actually inserted are returned.
	Commit(ctx context.Context, userID string, creates []models.Visit, deleteIDs []string) (createdIDs []string, deleted int, err error)

	// DeleteForTrip removes every visit in the trip's scope
	DeleteForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) (int64, error)
}
