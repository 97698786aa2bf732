package travelagent

import (
	"time"

	"github.com/google/uuid"
)

// TopicTravelEvents carries every event this service publishes.
const TopicTravelEvents = "travel.events"

const (
	GuestBookingCreated    = "guest_booking.created"
	TripCreated            = "trip.created"
	TripCancelled          = "trip.cancelled"
	TripCompensationFailed = "trip.compensation_failed"
)

// GuestBookingCreatedEvent is published after a guest booking commits.
type GuestBookingCreatedEvent struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	TaxiID      uuid.UUID `json:"taxi_id"`
	NewCustomer bool      `json:"new_customer"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TripCreatedEvent is published once the composite record is persisted.
type TripCreatedEvent struct {
	TripID          uuid.UUID `json:"trip_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	TaxiBookingID   uuid.UUID `json:"taxi_booking_id"`
	FlightBookingID int64     `json:"flight_booking_id"`
	HotelBookingID  int64     `json:"hotel_booking_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// TripCancelledEvent is published after all parts of a trip are deleted.
type TripCancelledEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrphanedResourceRef names one resource a failed compensation left behind.
type OrphanedResourceRef struct {
	Kind       ResourceKind `json:"kind"`
	ResourceID string       `json:"resource_id"`
	Reason     string       `json:"reason"`
}

// CompensationFailedEvent is published when a trip saga could not fully undo itself.
type CompensationFailedEvent struct {
	SagaID     string                `json:"saga_id"`
	CustomerID uuid.UUID             `json:"customer_id"`
	Cause      string                `json:"cause"`
	Resources  []OrphanedResourceRef `json:"resources"`
	OccurredAt time.Time             `json:"occurred_at"`
}
