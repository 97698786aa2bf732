package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/taxi"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
)

// CustomerRequest carries customer details. Any id sent by the client is ignored.
type CustomerRequest struct {
	FirstName   string    `json:"firstName" binding:"required"`
	LastName    string    `json:"lastName" binding:"required"`
	Email       string    `json:"email" binding:"required"`
	PhoneNumber string    `json:"phoneNumber" binding:"required"`
	BirthDate   time.Time `json:"birthDate"`
}

// CustomerDTO is the response representation of a customer.
type CustomerDTO struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	BirthDate   time.Time `json:"birthDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCustomerDTO(c *customer.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          c.ID(),
		FirstName:   c.FirstName(),
		LastName:    c.LastName(),
		Email:       c.Email(),
		PhoneNumber: c.PhoneNumber(),
		BirthDate:   c.BirthDate(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

// TaxiRequest carries taxi details.
type TaxiRequest struct {
	RegistrationNumber string `json:"registrationNumber" binding:"required"`
	SeatNumber         int    `json:"seatNumber" binding:"required"`
}

// TaxiDTO is the response representation of a taxi.
type TaxiDTO struct {
	ID                 uuid.UUID `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	SeatNumber         int       `json:"seatNumber"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toTaxiDTO(t *taxi.Taxi) TaxiDTO {
	return TaxiDTO{
		ID:                 t.ID(),
		RegistrationNumber: t.RegistrationNumber(),
		SeatNumber:         t.SeatNumber(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
	}
}

// BookingRequest carries a taxi booking. CustomerID is only read by the plain
// booking endpoint; the coordinators set it themselves.
type BookingRequest struct {
	CustomerID uuid.UUID `json:"customerId"`
	TaxiID     uuid.UUID `json:"taxiId"`
	BookDate   time.Time `json:"bookDate"`
}

// BookingDTO is the response representation of a taxi booking.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customerId"`
	TaxiID     uuid.UUID `json:"taxiId"`
	BookDate   time.Time `json:"bookDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:         b.ID(),
		CustomerID: b.CustomerID(),
		TaxiID:     b.TaxiID(),
		BookDate:   b.BookDate(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*booking.Booking) []BookingDTO {
	out := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		out[i] = toBookingDTO(b)
	}
	return out
}

// GuestBookingRequest pairs customer details with the booking to make for them.
type GuestBookingRequest struct {
	Customer *CustomerRequest `json:"customer" binding:"required"`
	Booking  *BookingRequest  `json:"booking" binding:"required"`
}

// GuestBookingDTO is the resolved customer and the created booking.
type GuestBookingDTO struct {
	Customer CustomerDTO `json:"customer"`
	Booking  BookingDTO  `json:"booking"`
}

// CustomerRef identifies an existing customer.
type CustomerRef struct {
	ID uuid.UUID `json:"id"`
}

// CreateTripRequest asks for a taxi, flight and hotel booking for one customer.
type CreateTripRequest struct {
	Customer      *CustomerRef          `json:"customer"`
	TaxiBooking   BookingRequest        `json:"taxiBooking"`
	FlightBooking partner.FlightBooking `json:"flightBooking"`
	HotelBooking  partner.HotelBooking  `json:"hotelBooking"`
}

// DeleteTripRequest identifies the composite booking to cancel.
type DeleteTripRequest struct {
	ID uuid.UUID `json:"id"`
}

// TravelAgentBookingDTO is the response representation of a composite booking.
type TravelAgentBookingDTO struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customerId"`
	TaxiBookingID   uuid.UUID `json:"taxiBookingId"`
	FlightBookingID int64     `json:"flightBookingId"`
	HotelBookingID  int64     `json:"hotelBookingId"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toTravelAgentBookingDTO(t *travelagent.TravelAgentBooking) TravelAgentBookingDTO {
	return TravelAgentBookingDTO{
		ID:              t.ID(),
		CustomerID:      t.CustomerID(),
		TaxiBookingID:   t.TaxiBookingID(),
		FlightBookingID: t.FlightBookingID(),
		HotelBookingID:  t.HotelBookingID(),
		CreatedAt:       t.CreatedAt(),
	}
}

func toTravelAgentBookingDTOs(trips []*travelagent.TravelAgentBooking) []TravelAgentBookingDTO {
	out := make([]TravelAgentBookingDTO, len(trips))
	for i, t := range trips {
		out[i] = toTravelAgentBookingDTO(t)
	}
	return out
}

// OrphanDTO is the response representation of an orphan ledger entry.
type OrphanDTO struct {
	ID           uuid.UUID  `json:"id"`
	TripID       *uuid.UUID `json:"tripId,omitempty"`
	ResourceKind string     `json:"resourceKind"`
	ResourceID   string     `json:"resourceId"`
	Reason       string     `json:"reason"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

func toOrphanDTO(o *travelagent.OrphanedResource) OrphanDTO {
	return OrphanDTO{
		ID:           o.ID(),
		TripID:       o.TripID(),
		ResourceKind: string(o.ResourceKind()),
		ResourceID:   o.ResourceID(),
		Reason:       o.Reason(),
		Source:       string(o.Source()),
		CreatedAt:    o.CreatedAt(),
		ResolvedAt:   o.ResolvedAt(),
	}
}
