package customer

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the persistence contract for customers.
type CustomerRepository interface {
	// FindByID returns a NotFound error when no customer has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail returns a NotFound error when no customer uses the email.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindAll returns every customer ordered by last name, then first name.
	FindAll(ctx context.Context) ([]*Customer, error)

	// Save persists a new customer. A duplicate email is a Conflict.
	Save(ctx context.Context, customer *Customer) error

	// Update persists changes to an existing customer.
	Update(ctx context.Context, customer *Customer) error

	// Delete removes the customer; NotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
