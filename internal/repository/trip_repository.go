package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// TripRepository handles read-only access to trips, regions and places
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetTripDetail retrieves a trip with its regions and places, enforcing
// ownership. Returns (nil, nil) when the trip is missing or owned by someone
// else; the caller cannot tell the two apart.
func (r *TripRepository) GetTripDetail(ctx context.Context, userID string, tripID int64) (*models.TripDetail, error) {
	var detail models.TripDetail

	query := `SELECT id, user_id, name, created_at, updated_at FROM trips WHERE id = ? AND user_id = ?`
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(
		&detail.Trip.ID, &detail.Trip.UserID, &detail.Trip.Name,
		&detail.Trip.CreatedAt, &detail.Trip.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, trip_id, name FROM regions WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.ID, &region.TripID, &region.Name); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		detail.Regions = append(detail.Regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}

	placeQuery := `SELECT p.id, p.region_id, p.name, p.latitude, p.longitude, p.icon, p.color, p.notes, r.name
		FROM places p
		JOIN regions r ON r.id = p.region_id
		WHERE r.trip_id = ?
		ORDER BY p.id`
	placeRows, err := r.db.QueryContext(ctx, placeQuery, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer placeRows.Close()

	for placeRows.Next() {
		var place models.Place
		if err := placeRows.Scan(
			&place.ID, &place.RegionID, &place.Name,
			&place.Latitude, &place.Longitude,
			&place.Icon, &place.Color, &place.Notes,
			&place.RegionName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		detail.Places = append(detail.Places, place)
	}
	if err := placeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return &detail, nil
}
