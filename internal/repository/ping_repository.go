package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/reconcile"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// PingRepository is the spatial store over the location_pings table. All
// queries use a bounding-box prefilter for index use, then the exact haversine
// distance computed with SQLite's math functions.
type PingRepository struct {
	db        *sql.DB
	chunkSize int
}

// NewPingRepository creates a new ping repository. chunkSize bounds how many
// place coordinates a single tiered-stats query carries.
func NewPingRepository(db *sql.DB, chunkSize int) *PingRepository {
	if chunkSize < 1 {
		chunkSize = 10000
	}
	return &PingRepository{db: db, chunkSize: chunkSize}
}

// Haversine distance in meters between a ping row and a bound place
// coordinate. Bind order: place lat, place lat, place lon.
const distExpr = `2.0 * 6371000.0 * asin(sqrt(
	pow(sin(radians(latitude - ?) / 2), 2) +
	cos(radians(?)) * cos(radians(latitude)) *
	pow(sin(radians(longitude - ?) / 2), 2)))`

// Same expression against the batched targets CTE
const batchDistExpr = `2.0 * 6371000.0 * asin(sqrt(
	pow(sin(radians(p.latitude - t.lat) / 2), 2) +
	cos(radians(t.lat)) * cos(radians(p.latitude)) *
	pow(sin(radians(p.longitude - t.lon) / 2), 2)))`

// FindCandidates queries one place's pings grouped by local calendar date
func (r *PingRepository) FindCandidates(ctx context.Context, userID string, place reconcile.PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]reconcile.CandidateGroup, error) {
	minLat, maxLat, minLon, maxLon := spatial.BoundingBox(place.Lat, place.Lon, radiusM)

	query := `SELECT local_date, COUNT(*), MIN(timestamp), MAX(timestamp), AVG(dist_m)
		FROM (
			SELECT local_date, timestamp, ` + distExpr + ` AS dist_m
			FROM location_pings
			WHERE user_id = ?
			  AND latitude BETWEEN ? AND ?
			  AND longitude BETWEEN ? AND ?`
	args := []interface{}{place.Lat, place.Lat, place.Lon, userID, minLat, maxLat, minLon, maxLon}

	dateCond, dateArgs := dateRangeCondition("local_date", window)
	query += dateCond
	args = append(args, dateArgs...)

	query += `
		)
		WHERE dist_m <= ?
		GROUP BY local_date
		HAVING COUNT(*) >= ?
		ORDER BY local_date`
	args = append(args, radiusM, minHits)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates for place %d: %w", place.PlaceID, err)
	}
	defer rows.Close()

	var groups []reconcile.CandidateGroup
	for rows.Next() {
		g := reconcile.CandidateGroup{PlaceID: place.PlaceID}
		if err := rows.Scan(&g.Date, &g.HitCount, &g.FirstSeen, &g.LastSeen, &g.AvgDistM); err != nil {
			return nil, fmt.Errorf("failed to scan candidate group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// FindCandidatesBatch scans all places in one query via a per-place radius
// join against a VALUES list of targets. The caller is responsible for
// chunking the place list.
func (r *PingRepository) FindCandidatesBatch(ctx context.Context, userID string, places []reconcile.PlaceTarget, radiusM float64, minHits int, window models.DateRange) ([]reconcile.CandidateGroup, error) {
	if len(places) == 0 {
		return nil, nil
	}

	cte, cteArgs := targetsCTE(places)

	// Degrees of latitude per the search radius; longitude widens by
	// 1/cos(lat) per target row
	latDelta := radiusM / 111320.0

	query := cte + `
		SELECT place_id, local_date, COUNT(*), MIN(ts), MAX(ts), AVG(dist_m)
		FROM (
			SELECT t.place_id AS place_id, p.local_date AS local_date, p.timestamp AS ts,
			       ` + batchDistExpr + ` AS dist_m
			FROM targets t
			JOIN location_pings p
			  ON p.user_id = ?
			 AND p.latitude BETWEEN t.lat - ? AND t.lat + ?
			 AND p.longitude BETWEEN t.lon - ? / cos(radians(t.lat)) AND t.lon + ? / cos(radians(t.lat))`
	args := append(cteArgs, userID, latDelta, latDelta, latDelta, latDelta)

	dateCond, dateArgs := dateRangeCondition("p.local_date", window)
	query += dateCond
	args = append(args, dateArgs...)

	query += `
		)
		WHERE dist_m <= ?
		GROUP BY place_id, local_date
		HAVING COUNT(*) >= ?
		ORDER BY place_id, local_date`
	args = append(args, radiusM, minHits)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run batched candidate query: %w", err)
	}
	defer rows.Close()

	var groups []reconcile.CandidateGroup
	for rows.Next() {
		var g reconcile.CandidateGroup
		if err := rows.Scan(&g.PlaceID, &g.Date, &g.HitCount, &g.FirstSeen, &g.LastSeen, &g.AvgDistM); err != nil {
			return nil, fmt.Errorf("failed to scan batched candidate group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// TierStats returns the tiered evidence breakdown per (place, day) out to
// radii.Max. Large place sets are chunked internally.
func (r *PingRepository) TierStats(ctx context.Context, userID string, places []reconcile.PlaceTarget, radii reconcile.TierRadii, window models.DateRange) ([]reconcile.TierStats, error) {
	var out []reconcile.TierStats
	for start := 0; start < len(places); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(places) {
			end = len(places)
		}
		stats, err := r.tierStatsChunk(ctx, userID, places[start:end], radii, window)
		if err != nil {
			return nil, err
		}
		out = append(out, stats...)
	}
	return out, nil
}

func (r *PingRepository) tierStatsChunk(ctx context.Context, userID string, places []reconcile.PlaceTarget, radii reconcile.TierRadii, window models.DateRange) ([]reconcile.TierStats, error) {
	if len(places) == 0 {
		return nil, nil
	}

	cte, cteArgs := targetsCTE(places)
	latDelta := radii.Max / 111320.0

	query := cte + `
		SELECT place_id, local_date, COUNT(*), MIN(dist_m),
		       SUM(CASE WHEN dist_m <= ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN dist_m <= ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN dist_m <= ? THEN 1 ELSE 0 END),
		       SUM(is_checkin),
		       MIN(ts), MAX(ts)
		FROM (
			SELECT t.place_id AS place_id, p.local_date AS local_date, p.timestamp AS ts,
			       p.is_checkin AS is_checkin,
			       ` + batchDistExpr + ` AS dist_m
			FROM targets t
			JOIN location_pings p
			  ON p.user_id = ?
			 AND p.latitude BETWEEN t.lat - ? AND t.lat + ?
			 AND p.longitude BETWEEN t.lon - ? / cos(radians(t.lat)) AND t.lon + ? / cos(radians(t.lat))`
	args := append(cteArgs, radii.Tier1, radii.Tier2, radii.Tier3,
		userID, latDelta, latDelta, latDelta, latDelta)

	dateCond, dateArgs := dateRangeCondition("p.local_date", window)
	query += dateCond
	args = append(args, dateArgs...)

	query += `
		)
		WHERE dist_m <= ?
		GROUP BY place_id, local_date
		ORDER BY place_id, local_date`
	args = append(args, radii.Max)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run tier stats query: %w", err)
	}
	defer rows.Close()

	var stats []reconcile.TierStats
	for rows.Next() {
		var st reconcile.TierStats
		if err := rows.Scan(&st.PlaceID, &st.Date, &st.TotalHits, &st.MinDistM,
			&st.Tier1Hits, &st.Tier2Hits, &st.Tier3Hits, &st.CheckinCount,
			&st.FirstSeen, &st.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan tier stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// CountPings counts the user's pings inside the window
func (r *PingRepository) CountPings(ctx context.Context, userID string, window models.DateRange) (int64, error) {
	query := "SELECT COUNT(*) FROM location_pings WHERE user_id = ?"
	args := []interface{}{userID}

	dateCond, dateArgs := dateRangeCondition("local_date", window)
	query += dateCond
	args = append(args, dateArgs...)

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count location pings: %w", err)
	}
	return total, nil
}

// targetsCTE builds a WITH targets(place_id, lat, lon) AS (VALUES ...) prefix
func targetsCTE(places []reconcile.PlaceTarget) (string, []interface{}) {
	values := make([]string, 0, len(places))
	args := make([]interface{}, 0, len(places)*3)
	for _, p := range places {
		values = append(values, "(?, ?, ?)")
		args = append(args, p.PlaceID, p.Lat, p.Lon)
	}
	cte := "WITH targets(place_id, lat, lon) AS (VALUES " + strings.Join(values, ", ") + ")"
	return cte, args
}

// dateRangeCondition appends inclusive local-date bounds when set
func dateRangeCondition(column string, window models.DateRange) (string, []interface{}) {
	var cond string
	var args []interface{}
	if window.From != "" {
		cond += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, window.From)
	}
	if window.To != "" {
		cond += fmt.Sprintf(" AND %s <= ?", column)
		args = append(args, window.To)
	}
	return cond, args
}
