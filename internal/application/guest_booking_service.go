package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taxi-travel/service-travel/internal/domain"
	bookingDomain "github.com/taxi-travel/service-travel/internal/domain/booking"
	customerDomain "github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"go.uber.org/zap"
)

// GuestBookingService books a taxi for someone who may not be a customer yet.
type GuestBookingService struct {
	tx     uow.Manager
	events eventPublisher
	logger *zap.Logger
}

// NewGuestBookingService creates a new GuestBookingService.
func NewGuestBookingService(tx uow.Manager, publisher EventPublisher, logger *zap.Logger) *GuestBookingService {
	return &GuestBookingService{
		tx:     tx,
		events: eventPublisher{producer: publisher, logger: logger},
		logger: logger,
	}
}

// CreateGuestBooking finds the customer by email or registers them, then
// books the taxi. Both writes share one transaction: if the booking fails a
// newly registered customer is rolled back too.
func (s *GuestBookingService) CreateGuestBooking(ctx context.Context, req GuestBookingRequest) (*GuestBookingDTO, error) {
	if req.Customer == nil || req.Booking == nil {
		return nil, domain.NewValidationError("customer and booking are required")
	}

	var (
		cust    *customerDomain.Customer
		bk      *bookingDomain.Booking
		created bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		email := strings.ToLower(strings.TrimSpace(req.Customer.Email))

		existing, err := repos.Customers().FindByEmail(ctx, email)
		switch {
		case err == nil:
			cust = existing
		case domain.IsNotFound(err):
			cust, err = customerDomain.NewCustomer(
				req.Customer.FirstName,
				req.Customer.LastName,
				email,
				req.Customer.PhoneNumber,
				req.Customer.BirthDate,
			)
			if err != nil {
				return err
			}
			if err := repos.Customers().Save(ctx, cust); err != nil {
				return fmt.Errorf("failed to save customer: %w", err)
			}
			created = true
		default:
			return fmt.Errorf("failed to look up customer: %w", err)
		}

		bk, err = createTaxiBooking(ctx, repos, cust.ID(), *req.Booking, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("guest booking created",
		zap.String("customer_id", cust.ID().String()),
		zap.String("booking_id", bk.ID().String()),
		zap.Bool("new_customer", created),
	)
	_ = s.events.publish(ctx, travelagent.GuestBookingCreated, cust.ID().String(), travelagent.GuestBookingCreatedEvent{
		CustomerID:  cust.ID(),
		BookingID:   bk.ID(),
		TaxiID:      bk.TaxiID(),
		NewCustomer: created,
		OccurredAt:  time.Now().UTC(),
	})

	return &GuestBookingDTO{Customer: toCustomerDTO(cust), Booking: toBookingDTO(bk)}, nil
}
