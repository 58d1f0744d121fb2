package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// candidateFinder produces strict candidate groups for a set of places.
// Two implementations exist: per-place queries and a single batched scan; the
// batched one falls back to per-place on any failure.
type candidateFinder interface {
	find(ctx context.Context, userID string, places []PlaceTarget) ([]CandidateGroup, error)
}

// newFinder picks the query strategy by place count
func newFinder(pings PingStore, s config.ReconSettings, window models.DateRange, placeCount int) candidateFinder {
	individual := &individualFinder{
		pings:   pings,
		radiusM: s.MaxRadius,
		minHits: s.MinHits,
		window:  window,
	}
	if placeCount < s.BatchThreshold {
		return individual
	}
	return &batchedFinder{
		pings:     pings,
		fallback:  individual,
		radiusM:   s.MaxRadius,
		minHits:   s.MinHits,
		window:    window,
		chunkSize: s.ChunkSize,
		timeout:   s.BatchTimeout,
	}
}

// individualFinder runs one query per place. A failing place is logged and
// skipped; it must never abort the whole analysis.
type individualFinder struct {
	pings   PingStore
	radiusM float64
	minHits int
	window  models.DateRange
}

func (f *individualFinder) find(ctx context.Context, userID string, places []PlaceTarget) ([]CandidateGroup, error) {
	var out []CandidateGroup
	for _, place := range places {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups, err := f.pings.FindCandidates(ctx, userID, place, f.radiusM, f.minHits, f.window)
		if err != nil {
			log.Printf("Candidate query failed for place %d, skipping: %v", place.PlaceID, err)
			continue
		}
		out = append(out, groups...)
	}
	return out, nil
}

// batchedFinder scans all places in one query per chunk. Any failure, chunk
// failures included, triggers a transparent fallback to the individual path
// for the same place set.
type batchedFinder struct {
	pings     PingStore
	fallback  *individualFinder
	radiusM   float64
	minHits   int
	window    models.DateRange
	chunkSize int
	timeout   time.Duration
}

func (f *batchedFinder) find(ctx context.Context, userID string, places []PlaceTarget) ([]CandidateGroup, error) {
	groups, err := f.findBatched(ctx, userID, places)
	if err != nil {
		// Caller cancellation is not a store failure; propagate it
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Batched candidate query failed, falling back to per-place queries: %v", err)
		return f.fallback.find(ctx, userID, places)
	}
	return groups, nil
}

func (f *batchedFinder) findBatched(ctx context.Context, userID string, places []PlaceTarget) ([]CandidateGroup, error) {
	// A single query has a practical bound on how many place coordinates it
	// can carry, so large place sets run as sequential chunks
	bctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var out []CandidateGroup
	for start := 0; start < len(places); start += f.chunkSize {
		if err := bctx.Err(); err != nil {
			return nil, err
		}

		end := start + f.chunkSize
		if end > len(places) {
			end = len(places)
		}

		groups, err := f.pings.FindCandidatesBatch(bctx, userID, places[start:end], f.radiusM, f.minHits, f.window)
		if err != nil {
			return nil, err
		}
		out = append(out, groups...)
	}
	return out, nil
}
