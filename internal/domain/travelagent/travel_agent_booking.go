package travelagent

import (
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
)

// TravelAgentBooking ties one customer's taxi booking to the flight and hotel
// bookings held by the partner services. It is only ever created once all
// three reservations exist, so it never references a partial set.
type TravelAgentBooking struct {
	id              uuid.UUID
	customerID      uuid.UUID
	taxiBookingID   uuid.UUID
	flightBookingID int64
	hotelBookingID  int64
	createdAt       time.Time
}

// NewTravelAgentBooking creates the composite record.
func NewTravelAgentBooking(customerID, taxiBookingID uuid.UUID, flightBookingID, hotelBookingID int64) (*TravelAgentBooking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if taxiBookingID == uuid.Nil {
		return nil, domain.NewValidationError("taxi booking ID is required")
	}
	if flightBookingID <= 0 {
		return nil, domain.NewValidationError("flight booking ID is required")
	}
	if hotelBookingID <= 0 {
		return nil, domain.NewValidationError("hotel booking ID is required")
	}
	return &TravelAgentBooking{
		id:              uuid.New(),
		customerID:      customerID,
		taxiBookingID:   taxiBookingID,
		flightBookingID: flightBookingID,
		hotelBookingID:  hotelBookingID,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructTravelAgentBooking rebuilds the composite from persistence data (no validation).
func ReconstructTravelAgentBooking(id, customerID, taxiBookingID uuid.UUID, flightBookingID, hotelBookingID int64, createdAt time.Time) *TravelAgentBooking {
	return &TravelAgentBooking{
		id:              id,
		customerID:      customerID,
		taxiBookingID:   taxiBookingID,
		flightBookingID: flightBookingID,
		hotelBookingID:  hotelBookingID,
		createdAt:       createdAt,
	}
}

func (b *TravelAgentBooking) ID() uuid.UUID            { return b.id }
func (b *TravelAgentBooking) CustomerID() uuid.UUID    { return b.customerID }
func (b *TravelAgentBooking) TaxiBookingID() uuid.UUID { return b.taxiBookingID }
func (b *TravelAgentBooking) FlightBookingID() int64   { return b.flightBookingID }
func (b *TravelAgentBooking) HotelBookingID() int64    { return b.hotelBookingID }
func (b *TravelAgentBooking) CreatedAt() time.Time     { return b.createdAt }
