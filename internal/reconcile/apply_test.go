package reconcile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/visits-backend-go/internal/models"
)

func testTripDetail() *models.TripDetail {
	return &models.TripDetail{
		Trip: models.Trip{ID: 1, UserID: "u1", Name: "Japan 2024"},
		Regions: []models.Region{
			{ID: 10, TripID: 1, Name: "Tokyo"},
		},
		Places: []models.Place{
			{ID: 100, RegionID: 10, Name: "Sensoji", RegionName: "Tokyo",
				Latitude: ptrF(35.7148), Longitude: ptrF(139.7967),
				Icon: "temple", Color: "#cc0000", Notes: "Oldest temple in Tokyo"},
			{ID: 101, RegionID: 10, Name: "Skytree", RegionName: "Tokyo",
				Latitude: ptrF(35.7101), Longitude: ptrF(139.8107)},
		},
	}
}

func newTestApplier(visits VisitStore) *Applier {
	a := NewApplier(visits, testSettings())
	a.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestApplyCreatesVisitWithSnapshots(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)
	detail := testTripDetail()

	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1000, LastSeen: 2000}},
	}
	result, err := applier.Apply(context.Background(), "u1", detail, nil, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Zero(t, result.Skipped)

	require.Len(t, store.visits, 1)
	v := store.visits[0]
	assert.Equal(t, "u1", v.UserID)
	assert.Equal(t, "Japan 2024", v.TripName)
	assert.Equal(t, "Tokyo", v.RegionName)
	assert.Equal(t, "Sensoji", v.PlaceName)
	assert.Equal(t, "temple", v.Icon)
	assert.Equal(t, models.VisitSourceBackfill, v.Source)
	assert.Equal(t, int64(1000), v.ArrivedAt)
	assert.Equal(t, int64(2000), v.LastSeenAt)
	assert.Equal(t, int64(2000), v.EndedAt)
	require.NotNil(t, v.PlaceLat)
	assert.InDelta(t, 35.7148, *v.PlaceLat, 1e-9)
	assert.NotEmpty(t, v.ID)
}

func TestApplyIsIdempotent(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)
	detail := testTripDetail()

	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{
			{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1000, LastSeen: 2000},
			{PlaceID: 101, Date: "2024-06-01", FirstSeen: 1500, LastSeen: 2500},
		},
	}

	first, err := applier.Apply(context.Background(), "u1", detail, nil, req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	existing, err := store.ListForTrip(context.Background(), "u1", []int64{100, 101}, "Japan 2024")
	require.NoError(t, err)

	second, err := applier.Apply(context.Background(), "u1", detail, existing, req)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, store.visits, 2)
}

func TestApplyInBatchDuplicateIsSkipped(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)

	// Same (place, date) twice in one request: the second must be skipped via
	// the dedupe set before anything is persisted
	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{
			{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1000, LastSeen: 2000},
			{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1100, LastSeen: 2100},
		},
	}
	result, err := applier.Apply(context.Background(), "u1", testTripDetail(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestApplyMissingPlaceIsSkippedNotFatal(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)

	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{
			{PlaceID: 999, Date: "2024-06-01"},
			{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1000, LastSeen: 2000},
		},
	}
	result, err := applier.Apply(context.Background(), "u1", testTripDetail(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestApplyConfirmedSuggestionsCountedSeparately(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)

	req := models.ApplyRequest{
		CreateVisits:         []models.VisitCreate{{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1, LastSeen: 2}},
		ConfirmedSuggestions: []models.VisitCreate{{PlaceID: 101, Date: "2024-06-02", FirstSeen: 3, LastSeen: 4}},
	}
	result, err := applier.Apply(context.Background(), "u1", testTripDetail(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.SuggestionsConfirmed)

	sources := map[string]string{}
	for _, v := range store.visits {
		sources[v.PlaceName] = v.Source
	}
	assert.Equal(t, models.VisitSourceBackfill, sources["Sensoji"])
	assert.Equal(t, models.VisitSourceUserConfirmed, sources["Skytree"])
}

func TestApplyDeletionScopedToPreviewedVisits(t *testing.T) {
	otherTrip := models.Visit{ID: "foreign", UserID: "u1", VisitDate: "2024-06-01", TripName: "Elsewhere", PlaceName: "Foreign"}
	scoped := models.Visit{ID: "mine", UserID: "u1", VisitDate: "2024-06-01", TripName: "Japan 2024", PlaceName: "Sensoji", PlaceID: ptrI(100)}
	store := &fakeVisitStore{visits: []models.Visit{otherTrip, scoped}}
	applier := newTestApplier(store)

	// Only visits the preview showed (the `existing` slice) may be deleted
	req := models.ApplyRequest{DeleteVisitIDs: []string{"foreign", "mine"}}
	result, err := applier.Apply(context.Background(), "u1", testTripDetail(), []models.Visit{scoped}, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)

	remaining := map[string]bool{}
	for _, v := range store.visits {
		remaining[v.ID] = true
	}
	assert.True(t, remaining["foreign"])
	assert.False(t, remaining["mine"])
}

func TestApplyStoreLevelDuplicateCountedAsSkipped(t *testing.T) {
	// The store already holds the visit, but the caller's `existing` snapshot
	// predates it: the in-memory check passes, the store rejects, the item is
	// reported as skipped
	prior := models.Visit{ID: "prior", UserID: "u1", PlaceID: ptrI(100), PlaceName: "Sensoji", VisitDate: "2024-06-01", TripName: "Japan 2024"}
	store := &fakeVisitStore{visits: []models.Visit{prior}}
	applier := newTestApplier(store)

	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1, LastSeen: 2}},
	}
	result, err := applier.Apply(context.Background(), "u1", testTripDetail(), nil, req)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, store.visits, 1)
}

func TestNotesSnapshotTruncation(t *testing.T) {
	store := &fakeVisitStore{}
	applier := newTestApplier(store)
	applier.settings.NotesMaxChars = 10

	detail := testTripDetail()
	detail.Places[0].Notes = strings.Repeat("あ", 25)

	req := models.ApplyRequest{
		CreateVisits: []models.VisitCreate{{PlaceID: 100, Date: "2024-06-01", FirstSeen: 1, LastSeen: 2}},
	}
	_, err := applier.Apply(context.Background(), "u1", detail, nil, req)
	require.NoError(t, err)

	require.Len(t, store.visits, 1)
	assert.Equal(t, strings.Repeat("あ", 10)+"…", store.visits[0].Notes)
}

func TestTruncateNotesShortInputUntouched(t *testing.T) {
	assert.Equal(t, "short", truncateNotes("short", 280))
	assert.Equal(t, "", truncateNotes("", 280))
}
