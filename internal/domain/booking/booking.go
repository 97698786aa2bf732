package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
)

// DuplicateReason is the field explanation for a second booking of the same taxi by the same customer.
const DuplicateReason = "This taxi is already booked by this customer"

// Booking is a taxi reservation made by a customer for a given date.
type Booking struct {
	id         uuid.UUID
	customerID uuid.UUID
	taxiID     uuid.UUID
	bookDate   time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewBooking creates a taxi booking. The booking date must lie in the future
// relative to now.
func NewBooking(customerID, taxiID uuid.UUID, bookDate, now time.Time) (*Booking, error) {
	if err := validate(customerID, taxiID, bookDate, now); err != nil {
		return nil, err
	}
	ts := now.UTC()
	return &Booking{
		id:         uuid.New(),
		customerID: customerID,
		taxiID:     taxiID,
		bookDate:   bookDate.UTC(),
		createdAt:  ts,
		updatedAt:  ts,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(id, customerID, taxiID uuid.UUID, bookDate, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:         id,
		customerID: customerID,
		taxiID:     taxiID,
		bookDate:   bookDate,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Reschedule moves the booking to another taxi and/or date.
func (b *Booking) Reschedule(taxiID uuid.UUID, bookDate, now time.Time) error {
	if err := validate(b.customerID, taxiID, bookDate, now); err != nil {
		return err
	}
	b.taxiID = taxiID
	b.bookDate = bookDate.UTC()
	b.updatedAt = now.UTC()
	return nil
}

func validate(customerID, taxiID uuid.UUID, bookDate, now time.Time) error {
	verr := domain.NewValidationError("invalid booking")
	if customerID == uuid.Nil {
		verr.WithReason("customerId", "Customer is required")
	}
	if taxiID == uuid.Nil {
		verr.WithReason("taxiId", "Taxi is required")
	}
	if !bookDate.After(now) {
		verr.WithReason("bookDate", "Booking date must be in the future")
	}
	if len(verr.Reasons) > 0 {
		return verr
	}
	return nil
}

// NewDuplicateError builds the Conflict for a repeated (taxi, customer) pair.
func NewDuplicateError() *domain.DomainError {
	return domain.NewConflictError("booking already exists for this taxi and customer").WithReason("taxiId", DuplicateReason)
}

func (b *Booking) ID() uuid.UUID         { return b.id }
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }
func (b *Booking) TaxiID() uuid.UUID     { return b.taxiID }
func (b *Booking) BookDate() time.Time   { return b.bookDate }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }
