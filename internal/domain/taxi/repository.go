package taxi

import (
	"context"

	"github.com/google/uuid"
)

// TaxiRepository defines the persistence contract for taxis.
type TaxiRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Taxi, error)
	// FindAll returns taxis ordered by registration number.
	FindAll(ctx context.Context) ([]*Taxi, error)
	// Save persists a new taxi. A duplicate registration number is a Conflict.
	Save(ctx context.Context, taxi *Taxi) error
	Update(ctx context.Context, taxi *Taxi) error
	Delete(ctx context.Context, id uuid.UUID) error
}
