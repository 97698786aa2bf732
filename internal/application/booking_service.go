package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"go.uber.org/zap"
)

// BookingService is the application service for plain taxi bookings.
type BookingService struct {
	tx     uow.Manager
	logger *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(tx uow.Manager, logger *zap.Logger) *BookingService {
	return &BookingService{tx: tx, logger: logger}
}

// createTaxiBooking validates and stores a booking for customerID. Both the
// customer and the taxi must exist; a repeated (taxi, customer) pair is a
// Conflict. It runs against whatever repositories it is given, so callers
// decide the transaction scope.
func createTaxiBooking(ctx context.Context, repos uow.Repositories, customerID uuid.UUID, req BookingRequest, now time.Time) (*bookingDomain.Booking, error) {
	bk, err := bookingDomain.NewBooking(customerID, req.TaxiID, req.BookDate, now)
	if err != nil {
		return nil, err
	}
	if _, err := repos.Customers().FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	if _, err := repos.Taxis().FindByID(ctx, req.TaxiID); err != nil {
		return nil, err
	}
	if err := repos.Bookings().Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	return bk, nil
}

// CreateBooking books a taxi for the customer named in the request.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*BookingDTO, error) {
	bk, err := createTaxiBooking(ctx, s.tx.Repositories(), req.CustomerID, req, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("customer_id", bk.CustomerID().String()),
		zap.String("taxi_id", bk.TaxiID().String()),
	)
	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking moves a booking to another taxi or date.
func (s *BookingService) UpdateBooking(ctx context.Context, id uuid.UUID, req BookingRequest) (*BookingDTO, error) {
	repos := s.tx.Repositories()
	bk, err := repos.Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bk.Reschedule(req.TaxiID, req.BookDate, time.Now()); err != nil {
		return nil, err
	}
	if _, err := repos.Taxis().FindByID(ctx, req.TaxiID); err != nil {
		return nil, err
	}
	if err := repos.Bookings().Update(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	bk, err := s.tx.Repositories().Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns every booking, or one customer's when customerID is set.
func (s *BookingService) ListBookings(ctx context.Context, customerID *uuid.UUID) ([]BookingDTO, error) {
	repo := s.tx.Repositories().Bookings()
	if customerID != nil {
		bookings, err := repo.FindByCustomerID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		return toBookingDTOs(bookings), nil
	}
	bookings, err := repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// DeleteBooking removes a booking and returns it.
func (s *BookingService) DeleteBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	repo := s.tx.Repositories().Bookings()
	bk, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("booking deleted", zap.String("booking_id", id.String()))
	result := toBookingDTO(bk)
	return &result, nil
}
