package travelagent

import (
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
)

// ResourceKind names the system that owns an orphaned resource.
type ResourceKind string

const (
	ResourceFlightBooking ResourceKind = "flight_booking"
	ResourceHotelBooking  ResourceKind = "hotel_booking"
	ResourceTaxiBooking   ResourceKind = "taxi_booking"
)

// IsValid reports whether the kind is known.
func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceFlightBooking, ResourceHotelBooking, ResourceTaxiBooking:
		return true
	}
	return false
}

// OrphanSource tells how an orphan was detected.
type OrphanSource string

const (
	// SourceCompensation marks a resource a failed compensation left behind.
	SourceCompensation OrphanSource = "compensation"
	// SourceReconciliation marks a composite reference that no longer resolves.
	SourceReconciliation OrphanSource = "reconciliation"
)

// OrphanedResource is an entry in the ledger of inconsistencies awaiting
// manual reconciliation.
type OrphanedResource struct {
	id           uuid.UUID
	tripID       *uuid.UUID
	resourceKind ResourceKind
	resourceID   string
	reason       string
	source       OrphanSource
	createdAt    time.Time
	resolvedAt   *time.Time
}

// NewOrphanedResource records an inconsistency. tripID may be nil when the
// composite was never persisted.
func NewOrphanedResource(tripID *uuid.UUID, kind ResourceKind, resourceID, reason string, source OrphanSource) (*OrphanedResource, error) {
	if !kind.IsValid() {
		return nil, domain.NewValidationError("invalid resource kind: " + string(kind))
	}
	if resourceID == "" {
		return nil, domain.NewValidationError("resource ID is required")
	}
	return &OrphanedResource{
		id:           uuid.New(),
		tripID:       tripID,
		resourceKind: kind,
		resourceID:   resourceID,
		reason:       reason,
		source:       source,
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructOrphanedResource rebuilds a ledger entry from persistence data.
func ReconstructOrphanedResource(
	id uuid.UUID,
	tripID *uuid.UUID,
	kind ResourceKind,
	resourceID, reason string,
	source OrphanSource,
	createdAt time.Time,
	resolvedAt *time.Time,
) *OrphanedResource {
	return &OrphanedResource{
		id:           id,
		tripID:       tripID,
		resourceKind: kind,
		resourceID:   resourceID,
		reason:       reason,
		source:       source,
		createdAt:    createdAt,
		resolvedAt:   resolvedAt,
	}
}

// Resolve marks the entry as handled by an operator.
func (o *OrphanedResource) Resolve(now time.Time) error {
	if o.resolvedAt != nil {
		return domain.NewConflictError("orphaned resource already resolved")
	}
	ts := now.UTC()
	o.resolvedAt = &ts
	return nil
}

func (o *OrphanedResource) ID() uuid.UUID              { return o.id }
func (o *OrphanedResource) TripID() *uuid.UUID         { return o.tripID }
func (o *OrphanedResource) ResourceKind() ResourceKind { return o.resourceKind }
func (o *OrphanedResource) ResourceID() string         { return o.resourceID }
func (o *OrphanedResource) Reason() string             { return o.reason }
func (o *OrphanedResource) Source() OrphanSource       { return o.source }
func (o *OrphanedResource) CreatedAt() time.Time       { return o.createdAt }
func (o *OrphanedResource) ResolvedAt() *time.Time     { return o.resolvedAt }
