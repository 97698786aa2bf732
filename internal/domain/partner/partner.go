// Package partner describes the bookings held by the external flight and
// hotel services and the contract used to manage them.
package partner

import (
	"context"
	"time"
)

// FlightBooking is a reservation owned by the flight partner.
type FlightBooking struct {
	ID         int64     `json:"id,omitempty"`
	FlightID   int64     `json:"flightId"`
	CustomerID int64     `json:"customerId"`
	FlightDate time.Time `json:"flightDate"`
}

func (b FlightBooking) BookingID() int64 { return b.ID }

func (b FlightBooking) WithID(id int64) FlightBooking {
	b.ID = id
	return b
}

// HotelBooking is a reservation owned by the hotel partner.
type HotelBooking struct {
	ID          int64     `json:"id,omitempty"`
	HotelID     int64     `json:"hotelId"`
	CustomerID  int64     `json:"customerId"`
	BookingDate time.Time `json:"bookingDate"`
}

func (b HotelBooking) BookingID() int64 { return b.ID }

func (b HotelBooking) WithID(id int64) HotelBooking {
	b.ID = id
	return b
}

// Reservation is implemented by every partner-owned booking type.
type Reservation[T any] interface {
	BookingID() int64
	WithID(id int64) T
}

// Service is the contract for a partner booking API.
//
// Create returns Validation, Conflict or Unavailable errors. FindByID and
// Delete return NotFound for an unknown id; deleting an id twice therefore
// yields NotFound the second time, which callers treat as already deleted.
type Service[T any] interface {
	Create(ctx context.Context, booking T) (T, error)
	FindByID(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) (T, error)
}

type (
	FlightService = Service[FlightBooking]
	HotelService  = Service[HotelBooking]
)
