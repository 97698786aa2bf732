// Package partnerstub is an in-process partner.Service used for local
// development without the flight and hotel APIs, and in tests.
package partnerstub

import (
	"context"
	"strconv"
	"sync"

	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
)

// Stub keeps partner bookings in memory and assigns sequential ids.
type Stub[T partner.Reservation[T]] struct {
	mu       sync.Mutex
	entity   string
	nextID   int64
	bookings map[int64]T

	createErr error
	deleteErr error
	findErr   error
}

var (
	_ partner.FlightService = (*Stub[partner.FlightBooking])(nil)
	_ partner.HotelService  = (*Stub[partner.HotelBooking])(nil)
)

// NewFlights creates an empty flight booking stub.
func NewFlights() *Stub[partner.FlightBooking] {
	return New[partner.FlightBooking]("FlightBooking")
}

// NewHotels creates an empty hotel booking stub.
func NewHotels() *Stub[partner.HotelBooking] {
	return New[partner.HotelBooking]("HotelBooking")
}

// New creates an empty stub that names entity in its NotFound errors.
func New[T partner.Reservation[T]](entity string) *Stub[T] {
	return &Stub[T]{entity: entity, bookings: make(map[int64]T)}
}

// FailCreate makes every subsequent Create return err; nil restores normal behaviour.
func (s *Stub[T]) FailCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

// FailDelete makes every subsequent Delete return err; nil restores normal behaviour.
func (s *Stub[T]) FailDelete(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// FailFind makes every subsequent FindByID return err; nil restores normal behaviour.
func (s *Stub[T]) FailFind(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findErr = err
}

func (s *Stub[T]) Create(ctx context.Context, booking T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		var zero T
		return zero, s.createErr
	}
	s.nextID++
	created := booking.WithID(s.nextID)
	s.bookings[s.nextID] = created
	return created, nil
}

func (s *Stub[T]) FindByID(ctx context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.findErr != nil {
		return zero, s.findErr
	}
	b, ok := s.bookings[id]
	if !ok {
		return zero, domain.NewNotFoundError(s.entity, strconv.FormatInt(id, 10))
	}
	return b, nil
}

func (s *Stub[T]) Delete(ctx context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.deleteErr != nil {
		return zero, s.deleteErr
	}
	b, ok := s.bookings[id]
	if !ok {
		return zero, domain.NewNotFoundError(s.entity, strconv.FormatInt(id, 10))
	}
	delete(s.bookings, id)
	return b, nil
}

// Len reports how many bookings are held.
func (s *Stub[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}
