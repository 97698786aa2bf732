package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for taxi bookings.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCustomerID retrieves the bookings of one customer, soonest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*Booking, error)

	// FindAll retrieves all bookings ordered by customer.
	FindAll(ctx context.Context) ([]*Booking, error)

	// Save persists a new booking. A second booking of the same taxi by the
	// same customer is a Conflict.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes the booking; NotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
