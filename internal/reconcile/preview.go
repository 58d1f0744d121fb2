package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// Orchestrator is the engine's entry point. Preview composes candidate
// finding, scoring, suggestion evaluation and stale detection into one report;
// Apply commits the user-approved subsets of a previous report.
type Orchestrator struct {
	trips    TripStore
	pings    PingStore
	visits   VisitStore
	settings config.ReconSettings
	applier  *Applier
}

// NewOrchestrator wires the engine over its three stores
func NewOrchestrator(trips TripStore, pings PingStore, visits VisitStore, settings config.ReconSettings) *Orchestrator {
	return &Orchestrator{
		trips:    trips,
		pings:    pings,
		visits:   visits,
		settings: settings,
		applier:  NewApplier(visits, settings),
	}
}

// Preview analyzes the user's location history against the trip's places and
// returns the reconciliation report. It is read-only.
func (o *Orchestrator) Preview(ctx context.Context, userID string, tripID int64, window models.DateRange) (*models.Report, error) {
	start := time.Now()

	detail, existing, err := o.loadTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{ExistingVisits: existing}

	// Stale detection runs even when no place carries coordinates
	report.StaleVisits = detectStale(existing, detail.Places, o.settings.MaxRadius)

	targets, placeByID := locatedTargets(detail.Places)
	report.PlacesAnalyzed = len(targets)

	if len(targets) > 0 {
		scanned, err := o.pings.CountPings(ctx, userID, window)
		if err != nil {
			return nil, fmt.Errorf("failed to count location pings: %w", err)
		}
		report.LocationsScanned = scanned

		existingKeys := make(map[string]bool, len(existing))
		for _, v := range existing {
			existingKeys[visitKey(v.PlaceID, v.PlaceName, v.VisitDate)] = true
		}

		finder := newFinder(o.pings, o.settings, window, len(targets))
		groups, err := finder.find(ctx, userID, targets)
		if err != nil {
			return nil, err
		}

		// Strict matches block the same (place, date) from also appearing as a
		// suggestion, whether or not they survive the duplicate filter
		strictKeys := make(map[string]bool, len(groups))
		for _, g := range groups {
			key := candidateKey(g.PlaceID, g.Date)
			strictKeys[key] = true
			if existingKeys[key] {
				continue
			}
			place := placeByID[g.PlaceID]
			report.NewVisits = append(report.NewVisits, models.NewVisit{
				PlaceID:    g.PlaceID,
				PlaceName:  place.Name,
				RegionName: place.RegionName,
				Date:       g.Date,
				HitCount:   g.HitCount,
				AvgDistM:   g.AvgDistM,
				Confidence: Score(g.HitCount, g.AvgDistM, o.settings),
				FirstSeen:  g.FirstSeen,
				LastSeen:   g.LastSeen,
			})
		}

		stats, err := o.pings.TierStats(ctx, userID, targets, TierRadii{
			Tier1: o.settings.Tier1Radius,
			Tier2: o.settings.Tier2Radius,
			Tier3: o.settings.Tier3Radius,
			Max:   o.settings.MaxRadius2,
		}, window)
		if err != nil {
			return nil, fmt.Errorf("failed to query suggestion stats: %w", err)
		}

		for _, st := range stats {
			key := candidateKey(st.PlaceID, st.Date)
			if strictKeys[key] || existingKeys[key] {
				continue
			}
			if !qualifiesAsSuggestion(st, o.settings) {
				continue
			}
			place := placeByID[st.PlaceID]
			report.SuggestedVisits = append(report.SuggestedVisits, models.SuggestedVisit{
				PlaceID:      st.PlaceID,
				PlaceName:    place.Name,
				RegionName:   place.RegionName,
				Date:         st.Date,
				MinDistM:     st.MinDistM,
				HitCount:     st.TotalHits,
				CheckinCount: st.CheckinCount,
				Reason:       suggestionReason(st, o.settings),
				FirstSeen:    st.FirstSeen,
				LastSeen:     st.LastSeen,
			})
		}
	}

	sortReport(report)
	report.DurationMs = time.Since(start).Milliseconds()
	return report, nil
}

// Apply commits the approved subsets of a preview for the trip
func (o *Orchestrator) Apply(ctx context.Context, userID string, tripID int64, req models.ApplyRequest) (*models.ApplyResult, error) {
	detail, existing, err := o.loadTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return o.applier.Apply(ctx, userID, detail, existing, req)
}

// ListVisits returns the trip's committed visits, newest first
func (o *Orchestrator) ListVisits(ctx context.Context, userID string, tripID int64) ([]models.Visit, error) {
	_, existing, err := o.loadTrip(ctx, userID, tripID)
	return existing, err
}

// ClearVisits removes every visit in the trip's scope
func (o *Orchestrator) ClearVisits(ctx context.Context, userID string, tripID int64) (int64, error) {
	detail, err := o.trips.GetTripDetail(ctx, userID, tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to load trip: %w", err)
	}
	if detail == nil {
		return 0, ErrTripNotFound
	}
	return o.visits.DeleteForTrip(ctx, userID, placeIDsOf(detail.Places), detail.Trip.Name)
}

// loadTrip fetches the trip detail plus its committed visits. Visits are
// scoped by place membership OR trip-snapshot match, so a visit survives even
// if its place was re-created under a new identity.
func (o *Orchestrator) loadTrip(ctx context.Context, userID string, tripID int64) (*models.TripDetail, []models.Visit, error) {
	detail, err := o.trips.GetTripDetail(ctx, userID, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trip: %w", err)
	}
	if detail == nil {
		return nil, nil, ErrTripNotFound
	}

	existing, err := o.visits.ListForTrip(ctx, userID, placeIDsOf(detail.Places), detail.Trip.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load existing visits: %w", err)
	}
	return detail, existing, nil
}

func placeIDsOf(places []models.Place) []int64 {
	ids := make([]int64, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	return ids
}

// locatedTargets filters to places pinned on the map
func locatedTargets(places []models.Place) ([]PlaceTarget, map[int64]models.Place) {
	var targets []PlaceTarget
	byID := make(map[int64]models.Place, len(places))
	for _, p := range places {
		if !p.HasLocation() {
			continue
		}
		targets = append(targets, PlaceTarget{PlaceID: p.ID, Lat: *p.Latitude, Lon: *p.Longitude})
		byID[p.ID] = p
	}
	return targets, byID
}

// sortReport orders every section by date descending then name ascending for
// deterministic output
func sortReport(r *models.Report) {
	sort.Slice(r.NewVisits, func(i, j int) bool {
		if r.NewVisits[i].Date != r.NewVisits[j].Date {
			return r.NewVisits[i].Date > r.NewVisits[j].Date
		}
		return r.NewVisits[i].PlaceName < r.NewVisits[j].PlaceName
	})
	sort.Slice(r.SuggestedVisits, func(i, j int) bool {
		if r.SuggestedVisits[i].Date != r.SuggestedVisits[j].Date {
			return r.SuggestedVisits[i].Date > r.SuggestedVisits[j].Date
		}
		return r.SuggestedVisits[i].PlaceName < r.SuggestedVisits[j].PlaceName
	})
	sort.Slice(r.StaleVisits, func(i, j int) bool {
		if r.StaleVisits[i].Date != r.StaleVisits[j].Date {
			return r.StaleVisits[i].Date > r.StaleVisits[j].Date
		}
		return r.StaleVisits[i].PlaceName < r.StaleVisits[j].PlaceName
	})
	sort.Slice(r.ExistingVisits, func(i, j int) bool {
		if r.ExistingVisits[i].VisitDate != r.ExistingVisits[j].VisitDate {
			return r.ExistingVisits[i].VisitDate > r.ExistingVisits[j].VisitDate
		}
		return r.ExistingVisits[i].PlaceName < r.ExistingVisits[j].PlaceName
	})
}
