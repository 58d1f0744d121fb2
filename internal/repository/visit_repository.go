package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/visits-backend-go/internal/database"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// VisitRepository handles database operations for visit records
type VisitRepository struct {
	db *sql.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *sql.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `id, user_id, place_id, visit_date, arrived_at, last_seen_at, ended_at,
	trip_name, region_name, place_name, place_lat, place_lon, notes, icon, color, source, created_at`

// ListForTrip retrieves the user's visits scoped to a trip: visits whose place
// is among placeIDs, or whose trip-name snapshot matches tripName (so a visit
// survives its place being re-created under a new identity)
func (r *VisitRepository) ListForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) ([]models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE user_id = ? AND (` + placeScopeCondition(placeIDs) + `)
		ORDER BY visit_date DESC, place_name ASC`
	args := append([]interface{}{userID}, placeScopeArgs(placeIDs, tripName)...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.PlaceID, &v.VisitDate, &v.ArrivedAt, &v.LastSeenAt, &v.EndedAt,
			&v.TripName, &v.RegionName, &v.PlaceName, &v.PlaceLat, &v.PlaceLon,
			&v.Notes, &v.Icon, &v.Color, &v.Source, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Commit inserts creates and deletes deleteIDs inside one transaction. Rows
// rejected by the partial unique indexes (a concurrent apply won the race) are
// dropped without failing the batch; the inserted ids are returned.
func (r *VisitRepository) Commit(ctx context.Context, userID string, creates []models.Visit, deleteIDs []string) ([]string, int, error) {
	var createdIDs []string
	var deleted int

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		insert := `INSERT INTO visits (` + visitColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		for _, v := range creates {
			_, err := tx.ExecContext(ctx, insert,
				v.ID, v.UserID, v.PlaceID, v.VisitDate, v.ArrivedAt, v.LastSeenAt, v.EndedAt,
				v.TripName, v.RegionName, v.PlaceName, v.PlaceLat, v.PlaceLon,
				v.Notes, v.Icon, v.Color, v.Source, v.CreatedAt,
			)
			if err != nil {
				if isUniqueViolation(err) {
					continue
				}
				return fmt.Errorf("failed to insert visit: %w", err)
			}
			createdIDs = append(createdIDs, v.ID)
		}

		if len(deleteIDs) > 0 {
			placeholders := strings.Repeat("?, ", len(deleteIDs)-1) + "?"
			args := make([]interface{}, 0, len(deleteIDs)+1)
			args = append(args, userID)
			for _, id := range deleteIDs {
				args = append(args, id)
			}

			res, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
			if err != nil {
				return fmt.Errorf("failed to delete visits: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count deleted visits: %w", err)
			}
			deleted = int(n)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return createdIDs, deleted, nil
}

// DeleteForTrip removes every visit in the trip's scope and returns the count
func (r *VisitRepository) DeleteForTrip(ctx context.Context, userID string, placeIDs []int64, tripName string) (int64, error) {
	query := `DELETE FROM visits WHERE user_id = ? AND (` + placeScopeCondition(placeIDs) + `)`
	args := append([]interface{}{userID}, placeScopeArgs(placeIDs, tripName)...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear visits: %w", err)
	}
	return res.RowsAffected()
}

// placeScopeCondition builds "place_id IN (...) OR trip_name = ?", degrading
// to the trip-name match alone when the trip has no places
func placeScopeCondition(placeIDs []int64) string {
	if len(placeIDs) == 0 {
		return "trip_name = ?"
	}
	placeholders := strings.Repeat("?, ", len(placeIDs)-1) + "?"
	return "place_id IN (" + placeholders + ") OR trip_name = ?"
}

func placeScopeArgs(placeIDs []int64, tripName string) []interface{} {
	args := make([]interface{}, 0, len(placeIDs)+1)
	for _, id := range placeIDs {
		args = append(args, id)
	}
	return append(args, tripName)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
