package reconcile

import (
	"context"
	"errors"
	"sort"

	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// In-memory stores backing the engine tests. The ping store computes groups
// from raw pings so the batched and individual paths can be compared against
// the same fixture.

type memPing struct {
	date    string
	ts      int64
	lat     float64
	lon     float64
	checkin bool
}

type fakePingStore struct {
	pings map[string][]memPing // by user id

	failPlaces map[int64]bool // per-place failures on the individual path
	failBatch  bool           // every batched call fails

	individualCalls int
	batchCalls      int
}

func newFakePingStore() *fakePingStore {
	return &fakePingStore{
		pings:      make(map[string][]memPing),
		failPlaces: make(map[int64]bool),
	}
}

func (s *fakePingStore) add(userID string, p memPing) {
	s.pings[userID] = append(s.pings[userID], p)
}

func (s *fakePingStore) FindCandidates(ctx context.Context, userID string, place PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]CandidateGroup, error) {
	s.individualCalls++
	if s.failPlaces[place.PlaceID] {
		return nil, errors.New("simulated place query failure")
	}
	return s.groupsFor(userID, []PlaceTarget{place}, radiusM, minHits, window), nil
}

func (s *fakePingStore) FindCandidatesBatch(ctx context.Context, userID string, places []PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]CandidateGroup, error) {
	s.batchCalls++
	if s.failBatch {
		return nil, errors.New("simulated batch failure")
	}
	return s.groupsFor(userID, places, radiusM, minHits, window), nil
}

func (s *fakePingStore) groupsFor(userID string, places []PlaceTarget, radiusM float64, minHits int, window models.DateRange) []CandidateGroup {
	var out []CandidateGroup
	for _, place := range places {
		byDate := make(map[string][]memPing)
		for _, p := range s.pings[userID] {
			if !inWindow(p.date, window) {
				continue
			}
			if spatial.HaversineDistance(place.Lat, place.Lon, p.lat, p.lon) <= radiusM {
				byDate[p.date] = append(byDate[p.date], p)
			}
		}
		for date, pings := range byDate {
			if len(pings) < minHits {
				continue
			}
			g := CandidateGroup{PlaceID: place.PlaceID, Date: date, HitCount: len(pings)}
			g.FirstSeen, g.LastSeen = pings[0].ts, pings[0].ts
			var sum float64
			for _, p := range pings {
				sum += spatial.HaversineDistance(place.Lat, place.Lon, p.lat, p.lon)
				if p.ts < g.FirstSeen {
					g.FirstSeen = p.ts
				}
				if p.ts > g.LastSeen {
					g.LastSeen = p.ts
				}
			}
			g.AvgDistM = sum / float64(len(pings))
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlaceID != out[j].PlaceID {
			return out[i].PlaceID < out[j].PlaceID
		}
		return out[i].Date < out[j].Date
	})
	return out
}

func (s *fakePingStore) TierStats(ctx context.Context, userID string, places []PlaceTarget, radii TierRadii, window models.DateRange) ([]TierStats, error) {
	var out []TierStats
	for _, place := range places {
		byDate := make(map[string]*TierStats)
		for _, p := range s.pings[userID] {
			if !inWindow(p.date, window) {
				continue
			}
			dist := spatial.HaversineDistance(place.Lat, place.Lon, p.lat, p.lon)
			if dist > radii.Max {
				continue
			}
			st, ok := byDate[p.date]
			if !ok {
				st = &TierStats{PlaceID: place.PlaceID, Date: p.date, MinDistM: dist, FirstSeen: p.ts, LastSeen: p.ts}
				byDate[p.date] = st
			}
			st.TotalHits++
			if dist < st.MinDistM {
				st.MinDistM = dist
			}
			if dist <= radii.Tier1 {
				st.Tier1Hits++
			}
			if dist <= radii.Tier2 {
				st.Tier2Hits++
			}
			if dist <= radii.Tier3 {
				st.Tier3Hits++
			}
			if p.checkin {
				st.CheckinCount++
			}
			if p.ts < st.FirstSeen {
				st.FirstSeen = p.ts
			}
			if p.ts > st.LastSeen {
				st.LastSeen = p.ts
			}
		}
		for _, st := range byDate {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlaceID != out[j].PlaceID {
			return out[i].PlaceID < out[j].PlaceID
		}
		return out[i].Date < out[j].Date
	})
	return out, nil
}

func (s *fakePingStore) CountPings(ctx context.Context, userID string, window models.DateRange) (int64, error) {
	var n int64
	for _, p := range s.pings[userID] {
		if inWindow(p.date, window) {
			n++
		}
	}
	return n, nil
}

func inWindow(date string, window models.DateRange) bool {
	if window.From != "" && date < window.From {
		return false
	}
	if window.To != "" && date > window.To {
		return false
	}
	return true
}

type fakeTripStore struct {
	details map[int64]*models.TripDetail // keyed by trip id
	owners  map[int64]string
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{
		details: make(map[int64]*models.TripDetail),
		owners:  make(map[int64]string),
	}
}

func (s *fakeTripStore) put(userID string, detail *models.TripDetail) {
	s.details[detail.Trip.ID] = detail
	s.owners[detail.Trip.ID] = userID
}

func (s *fakeTripStore) GetTripDetail(ctx context.Context, userID string, tripID int64) (*models.TripDetail, error) {
	if s.owners[tripID] != userID {
		return nil, nil
	}
	return s.details[tripID], nil
}

// fakeVisitStore mimics the partial unique indexes of the real store: one key
// space per (place id, date) and one per (place-name snapshot, date)
type fakeVisitStore struct {
	visits []models.Visit
}

func (s *fakeVisitStore) ListForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) ([]models.Visit, error) {
	members := make(map[int64]bool, len(placeIDs))
	for _, id := range placeIDs {
		members[id] = true
	}
	var out []models.Visit
	for _, v := range s.visits {
		if v.UserID != userID {
			continue
		}
		if (v.PlaceID != nil && members[*v.PlaceID]) || v.TripName == tripName {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeVisitStore) Commit(ctx context.Context, userID string, creates []models.Visit, deleteIDs []string) ([]string, int, error) {
	taken := make(map[string]bool, len(s.visits))
	for _, v := range s.visits {
		taken[visitKey(v.PlaceID, v.PlaceName, v.VisitDate)] = true
	}

	var createdIDs []string
	for _, v := range creates {
		key := visitKey(v.PlaceID, v.PlaceName, v.VisitDate)
		if taken[key] {
			continue
		}
		taken[key] = true
		s.visits = append(s.visits, v)
		createdIDs = append(createdIDs, v.ID)
	}

	deleted := 0
	for _, id := range deleteIDs {
		for i, v := range s.visits {
			if v.ID == id && v.UserID == userID {
				s.visits = append(s.visits[:i], s.visits[i+1:]...)
				deleted++
				break
			}
		}
	}
	return createdIDs, deleted, nil
}

func (s *fakeVisitStore) DeleteForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) (int64, error) {
	scoped, _ := s.ListForTrip(ctx, userID, placeIDs, tripName)
	ids := make(map[string]bool, len(scoped))
	for _, v := range scoped {
		ids[v.ID] = true
	}
	var kept []models.Visit
	var deleted int64
	for _, v := range s.visits {
		if ids[v.ID] {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	s.visits = kept
	return deleted, nil
}
