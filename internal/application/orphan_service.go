package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"go.uber.org/zap"
)

// OrphanService maintains the ledger of downstream resources that no saga
// could clean up and that need manual reconciliation.
type OrphanService struct {
	repo   travelagent.OrphanRepository
	logger *zap.Logger
}

// NewOrphanService creates a new OrphanService.
func NewOrphanService(repo travelagent.OrphanRepository, logger *zap.Logger) *OrphanService {
	return &OrphanService{repo: repo, logger: logger}
}

// Record adds one entry; duplicates of an existing entry are ignored.
func (s *OrphanService) Record(ctx context.Context, tripID *uuid.UUID, kind travelagent.ResourceKind, resourceID, reason string, source travelagent.OrphanSource) error {
	o, err := travelagent.NewOrphanedResource(tripID, kind, resourceID, reason, source)
	if err != nil {
		return err
	}
	written, err := s.repo.Record(ctx, o)
	if err != nil {
		return err
	}
	if written {
		s.logger.Warn("orphaned resource recorded",
			zap.String("kind", string(kind)),
			zap.String("resource_id", resourceID),
			zap.String("source", string(source)),
			zap.String("reason", reason),
		)
	}
	return nil
}

// RecordCompensationFailure stores every resource listed in the event.
func (s *OrphanService) RecordCompensationFailure(ctx context.Context, evt travelagent.CompensationFailedEvent) error {
	for _, r := range evt.Resources {
		reason := r.Reason
		if reason == "" {
			reason = evt.Cause
		}
		if err := s.Record(ctx, nil, r.Kind, r.ResourceID, reason, travelagent.SourceCompensation); err != nil {
			return err
		}
	}
	return nil
}

// ListUnresolved returns the open entries, oldest first.
func (s *OrphanService) ListUnresolved(ctx context.Context) ([]OrphanDTO, error) {
	orphans, err := s.repo.FindUnresolved(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrphanDTO, len(orphans))
	for i, o := range orphans {
		out[i] = toOrphanDTO(o)
	}
	return out, nil
}

// Resolve closes an entry after an operator has dealt with the resource.
func (s *OrphanService) Resolve(ctx context.Context, id uuid.UUID) (*OrphanDTO, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Resolve(time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	result := toOrphanDTO(o)
	return &result, nil
}
