package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// Applier commits user-approved subsets of a preview report: creating visits
// from approved candidates/suggestions and deleting approved stale or
// duplicate ones, with duplicate-safe bookkeeping.
type Applier struct {
	visits   VisitStore
	settings config.ReconSettings
	now      func() time.Time
}

// NewApplier creates an applier over the given visit store
func NewApplier(visits VisitStore, settings config.ReconSettings) *Applier {
	return &Applier{
		visits:   visits,
		settings: settings,
		now:      time.Now,
	}
}

// Apply builds the approved visits with snapshots taken at commit time and
// commits creations and deletions as one atomic unit.
func (a *Applier) Apply(ctx context.Context, userID string, detail *models.TripDetail, existing []models.Visit, req models.ApplyRequest) (*models.ApplyResult, error) {
	placeByID := make(map[int64]models.Place, len(detail.Places))
	for _, p := range detail.Places {
		placeByID[p.ID] = p
	}

	// Dedupe keys of everything already committed for this trip. The set grows
	// as items are accepted below: a second item in the same request hitting
	// the same (place, date) must be skipped before anything is persisted.
	keys := make(map[string]bool, len(existing))
	for _, v := range existing {
		keys[visitKey(v.PlaceID, v.PlaceName, v.VisitDate)] = true
	}

	result := &models.ApplyResult{}
	var creates []models.Visit

	batches := []struct {
		items  []models.VisitCreate
		source string
	}{
		{req.CreateVisits, models.VisitSourceBackfill},
		{req.ConfirmedSuggestions, models.VisitSourceUserConfirmed},
	}

	for _, batch := range batches {
		for _, item := range batch.items {
			place, ok := placeByID[item.PlaceID]
			if !ok {
				log.Printf("Skipping visit for missing place %d on %s", item.PlaceID, item.Date)
				result.Skipped++
				continue
			}

			key := candidateKey(place.ID, item.Date)
			if keys[key] {
				result.Skipped++
				continue
			}

			creates = append(creates, a.buildVisit(userID, detail.Trip.Name, place, item, batch.source))
			keys[key] = true
		}
	}

	// A user can only delete what the preview showed: ids are intersected with
	// the trip-scoped visit set loaded above
	previewed := make(map[string]bool, len(existing))
	for _, v := range existing {
		previewed[v.ID] = true
	}
	var deleteIDs []string
	for _, id := range req.DeleteVisitIDs {
		if previewed[id] {
			deleteIDs = append(deleteIDs, id)
		}
	}

	createdIDs, deleted, err := a.visits.Commit(ctx, userID, creates, deleteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to commit visits: %w", err)
	}

	// Rows the store rejected as duplicates (the concurrent-apply race) count
	// as skipped, not as failures
	created := make(map[string]bool, len(createdIDs))
	for _, id := range createdIDs {
		created[id] = true
	}
	for _, v := range creates {
		if !created[v.ID] {
			result.Skipped++
			continue
		}
		if v.Source == models.VisitSourceUserConfirmed {
			result.SuggestionsConfirmed++
		} else {
			result.Created++
		}
	}
	result.Deleted = deleted

	return result, nil
}

// buildVisit snapshots the place/trip/region descriptive fields as they are at
// commit time; the visit keeps no live reference back to the place
func (a *Applier) buildVisit(userID, tripName string, place models.Place, item models.VisitCreate, source string) models.Visit {
	placeID := place.ID
	v := models.Visit{
		ID:         uuid.NewString(),
		UserID:     userID,
		PlaceID:    &placeID,
		VisitDate:  item.Date,
		ArrivedAt:  item.FirstSeen,
		LastSeenAt: item.LastSeen,
		EndedAt:    item.LastSeen,
		TripName:   tripName,
		RegionName: place.RegionName,
		PlaceName:  place.Name,
		Notes:      truncateNotes(place.Notes, a.settings.NotesMaxChars),
		Icon:       place.Icon,
		Color:      place.Color,
		Source:     source,
		CreatedAt:  a.now(),
	}
	if place.HasLocation() {
		lat, lon := *place.Latitude, *place.Longitude
		v.PlaceLat = &lat
		v.PlaceLon = &lon
	}
	return v
}

// truncateNotes caps the notes snapshot, replacing the overflow with a single
// ellipsis character
func truncateNotes(notes string, maxChars int) string {
	runes := []rune(notes)
	if maxChars <= 0 || len(runes) <= maxChars {
		return notes
	}
	return string(runes[:maxChars]) + "…"
}
