package travelagent

import (
	"context"

	"github.com/google/uuid"
)

// TravelAgentBookingRepository defines the persistence contract for composite trip records.
type TravelAgentBookingRepository interface {
	// FindByID returns a NotFound error when the record does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*TravelAgentBooking, error)

	// FindAll returns every record ordered by customer.
	FindAll(ctx context.Context) ([]*TravelAgentBooking, error)

	// FindByCustomerID returns the records of one customer.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*TravelAgentBooking, error)

	Save(ctx context.Context, booking *TravelAgentBooking) error

	// Delete removes the record; NotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrphanRepository defines the persistence contract for the orphan ledger.
type OrphanRepository interface {
	// Record stores the entry unless an entry with the same source, kind and
	// resource id already exists. It reports whether a row was written.
	Record(ctx context.Context, orphan *OrphanedResource) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*OrphanedResource, error)

	// FindUnresolved returns open entries, oldest first.
	FindUnresolved(ctx context.Context) ([]*OrphanedResource, error)

	Update(ctx context.Context, orphan *OrphanedResource) error
}
