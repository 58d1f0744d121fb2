package service

import (
	"context"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/reconcile"
	"github.com/jengzang/visits-backend-go/internal/repository"
)

// ReconcileService exposes the visit reconciliation engine to the HTTP layer
type ReconcileService struct {
	orch *reconcile.Orchestrator
}

// NewReconcileService wires the engine over the sqlite-backed stores
func NewReconcileService(trips *repository.TripRepository, pings *repository.PingRepository, visits *repository.VisitRepository, settings config.ReconSettings) *ReconcileService {
	return &ReconcileService{
		orch: reconcile.NewOrchestrator(trips, pings, visits, settings),
	}
}

// Preview analyzes the user's location history against the trip's places
func (s *ReconcileService) Preview(ctx context.Context, userID string, tripID int64, window models.DateRange) (*models.Report, error) {
	return s.orch.Preview(ctx, userID, tripID, window)
}

// Apply commits user-approved subsets of a preview report
func (s *ReconcileService) Apply(ctx context.Context, userID string, tripID int64, req models.ApplyRequest) (*models.ApplyResult, error) {
	return s.orch.Apply(ctx, userID, tripID, req)
}

// ListVisits returns the trip's committed visits
func (s *ReconcileService) ListVisits(ctx context.Context, userID string, tripID int64) ([]models.Visit, error) {
	return s.orch.ListVisits(ctx, userID, tripID)
}

// ClearVisits removes all visits for the trip
func (s *ReconcileService) ClearVisits(ctx context.Context, userID string, tripID int64) (int64, error) {
	return s.orch.ClearVisits(ctx, userID, tripID)
}
