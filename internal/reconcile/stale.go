package reconcile

import (
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// detectStale classifies each committed visit against the trip's current place
// list. The classification is terminal: a visit is stale because its place was
// deleted, is no longer part of the trip, or moved beyond maxRadiusM from the
// visit's location snapshot. Distance runs in memory against the snapshots,
// not against the spatial store.
func detectStale(visits []models.Visit, places []models.Place, maxRadiusM float64) []models.StaleVisit {
	byID := make(map[int64]models.Place, len(places))
	for _, p := range places {
		byID[p.ID] = p
	}

	var stale []models.StaleVisit
	for _, v := range visits {
		if v.PlaceID == nil {
			stale = append(stale, models.StaleVisit{
				VisitID:   v.ID,
				PlaceName: v.PlaceName,
				Date:      v.VisitDate,
				Reason:    models.StaleReasonDeleted,
			})
			continue
		}

		place, ok := byID[*v.PlaceID]
		if !ok {
			stale = append(stale, models.StaleVisit{
				VisitID:   v.ID,
				PlaceName: v.PlaceName,
				Date:      v.VisitDate,
				Reason:    models.StaleReasonMissing,
			})
			continue
		}

		if v.PlaceLat != nil && v.PlaceLon != nil && place.HasLocation() {
			dist := spatial.HaversineDistance(*v.PlaceLat, *v.PlaceLon, *place.Latitude, *place.Longitude)
			if dist > maxRadiusM {
				stale = append(stale, models.StaleVisit{
					VisitID:   v.ID,
					PlaceName: v.PlaceName,
					Date:      v.VisitDate,
					Reason:    models.StaleReasonMoved,
					DistM:     dist,
				})
			}
		}
	}

	return stale
}
