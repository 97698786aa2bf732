package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	bookingDomain "github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"github.com/taxi-travel/service-travel/internal/saga"
	"go.uber.org/zap"
)

const (
	stepCreateTaxiBooking   = "create-taxi-booking"
	stepCreateFlightBooking = "create-flight-booking"
	stepCreateHotelBooking  = "create-hotel-booking"
	stepPersistTrip         = "persist-travel-agent-booking"

	stepDeleteFlightBooking = "delete-flight-booking"
	stepDeleteHotelBooking  = "delete-hotel-booking"
	stepDeleteLocalBookings = "delete-taxi-and-travel-agent-booking"
)

var compensationResource = map[string]travelagent.ResourceKind{
	stepCreateTaxiBooking:   travelagent.ResourceTaxiBooking,
	stepCreateFlightBooking: travelagent.ResourceFlightBooking,
	stepCreateHotelBooking:  travelagent.ResourceHotelBooking,
}

// TravelAgentService books and cancels trips made of a taxi booking, a
// flight booking and a hotel booking.
type TravelAgentService struct {
	tx      uow.Manager
	flights partner.FlightService
	hotels  partner.HotelService
	runner  *saga.Runner
	orphans *OrphanService
	events  eventPublisher
	logger  *zap.Logger
}

// NewTravelAgentService creates a new TravelAgentService. publisher may be nil.
func NewTravelAgentService(
	tx uow.Manager,
	flights partner.FlightService,
	hotels partner.HotelService,
	runner *saga.Runner,
	orphans *OrphanService,
	publisher EventPublisher,
	logger *zap.Logger,
) *TravelAgentService {
	return &TravelAgentService{
		tx:      tx,
		flights: flights,
		hotels:  hotels,
		runner:  runner,
		orphans: orphans,
		events:  eventPublisher{producer: publisher, logger: logger},
		logger:  logger,
	}
}

// CreateTrip books the taxi, then the flight, then the hotel, then stores the
// composite record. A failure undoes the completed bookings newest first and
// returns the triggering error, or a *domain.PartialFailureError when an undo
// also failed.
func (s *TravelAgentService) CreateTrip(ctx context.Context, req CreateTripRequest) (*TravelAgentBookingDTO, error) {
	if req.Customer == nil || req.Customer.ID == uuid.Nil {
		return nil, domain.NewValidationError("travel agent booking requires a customer").
			WithReason("customer", "Customer is required")
	}
	customerID := req.Customer.ID
	if _, err := s.tx.Repositories().Customers().FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	var (
		taxiBooking *bookingDomain.Booking
		flight      partner.FlightBooking
		hotel       partner.HotelBooking
		trip        *travelagent.TravelAgentBooking
	)

	def := saga.NewDefinition("create-trip").
		AddStep(&saga.Step{
			Name: stepCreateTaxiBooking,
			Execute: func(ctx context.Context) error {
				return s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
					bk, err := createTaxiBooking(ctx, repos, customerID, req.TaxiBooking, time.Now())
					if err != nil {
						return err
					}
					taxiBooking = bk
					return nil
				})
			},
			Compensate: func(ctx context.Context) error {
				return s.tx.Repositories().Bookings().Delete(ctx, taxiBooking.ID())
			},
			ResourceID: func() string { return taxiBooking.ID().String() },
		}).
		AddStep(&saga.Step{
			Name: stepCreateFlightBooking,
			Execute: func(ctx context.Context) error {
				created, err := s.flights.Create(ctx, req.FlightBooking)
				if err != nil {
					return err
				}
				if created.ID <= 0 {
					return domain.NewUnavailableError("flight service returned no booking id", nil)
				}
				flight = created
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.flights.Delete(ctx, flight.ID)
				return err
			},
			ResourceID: func() string { return strconv.FormatInt(flight.ID, 10) },
		}).
		AddStep(&saga.Step{
			Name: stepCreateHotelBooking,
			Execute: func(ctx context.Context) error {
				created, err := s.hotels.Create(ctx, req.HotelBooking)
				if err != nil {
					return err
				}
				if created.ID <= 0 {
					return domain.NewUnavailableError("hotel service returned no booking id", nil)
				}
				hotel = created
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.hotels.Delete(ctx, hotel.ID)
				return err
			},
			ResourceID: func() string { return strconv.FormatInt(hotel.ID, 10) },
		}).
		AddStep(&saga.Step{
			Name: stepPersistTrip,
			Execute: func(ctx context.Context) error {
				t, err := travelagent.NewTravelAgentBooking(customerID, taxiBooking.ID(), flight.ID, hotel.ID)
				if err != nil {
					return err
				}
				if err := s.tx.Repositories().TravelAgentBookings().Save(ctx, t); err != nil {
					return fmt.Errorf("failed to save travel agent booking: %w", err)
				}
				trip = t
				return nil
			},
		})

	exec, err := s.runner.Run(ctx, def)
	if err != nil {
		if pf, ok := domain.AsPartialFailure(err); ok {
			s.escalate(ctx, exec.ID, customerID, pf)
		}
		return nil, err
	}

	s.logger.Info("travel agent booking created",
		zap.String("trip_id", trip.ID().String()),
		zap.String("customer_id", customerID.String()),
		zap.Int64("flight_booking_id", flight.ID),
		zap.Int64("hotel_booking_id", hotel.ID),
	)
	_ = s.events.publish(ctx, travelagent.TripCreated, trip.ID().String(), travelagent.TripCreatedEvent{
		TripID:          trip.ID(),
		CustomerID:      customerID,
		TaxiBookingID:   trip.TaxiBookingID(),
		FlightBookingID: trip.FlightBookingID(),
		HotelBookingID:  trip.HotelBookingID(),
		OccurredAt:      time.Now().UTC(),
	})

	result := toTravelAgentBookingDTO(trip)
	return &result, nil
}

// escalate reports resources a failed compensation left behind. The event
// feeds the orphan ledger; if it cannot be published the ledger is written
// directly.
func (s *TravelAgentService) escalate(ctx context.Context, sagaID string, customerID uuid.UUID, pf *domain.PartialFailureError) {
	evt := travelagent.CompensationFailedEvent{
		SagaID:     sagaID,
		CustomerID: customerID,
		Cause:      pf.Cause.Error(),
		OccurredAt: time.Now().UTC(),
	}
	for _, f := range pf.Failed {
		kind, ok := compensationResource[f.Step]
		if !ok {
			continue
		}
		evt.Resources = append(evt.Resources, travelagent.OrphanedResourceRef{
			Kind:       kind,
			ResourceID: f.ResourceID,
			Reason:     f.Err.Error(),
		})
	}

	s.logger.Error("travel agent saga left orphaned resources",
		zap.String("saga_id", sagaID),
		zap.String("customer_id", customerID.String()),
		zap.Int("orphans", len(evt.Resources)),
		zap.Error(pf.Cause),
	)

	if err := s.events.publish(ctx, travelagent.TripCompensationFailed, sagaID, evt); err == nil {
		return
	}
	if err := s.orphans.RecordCompensationFailure(context.WithoutCancel(ctx), evt); err != nil {
		s.logger.Error("failed to record orphaned resources", zap.String("saga_id", sagaID), zap.Error(err))
	}
}

// DeleteTrip cancels the flight, the hotel, the taxi booking and finally the
// composite record. Parts that are already gone are skipped, so a delete
// interrupted by an unavailable partner can simply be repeated.
func (s *TravelAgentService) DeleteTrip(ctx context.Context, id uuid.UUID) (*TravelAgentBookingDTO, error) {
	repos := s.tx.Repositories()
	trip, err := repos.TravelAgentBookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := repos.Customers().FindByID(ctx, trip.CustomerID()); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError(fmt.Sprintf("travel agent booking %s references an unknown customer", id))
		}
		return nil, err
	}

	def := saga.NewDefinition("delete-trip").
		AddStep(&saga.Step{
			Name: stepDeleteFlightBooking,
			Execute: func(ctx context.Context) error {
				_, err := s.flights.Delete(ctx, trip.FlightBookingID())
				return ignoreNotFound(err)
			},
		}).
		AddStep(&saga.Step{
			Name: stepDeleteHotelBooking,
			Execute: func(ctx context.Context) error {
				_, err := s.hotels.Delete(ctx, trip.HotelBookingID())
				return ignoreNotFound(err)
			},
		}).
		AddStep(&saga.Step{
			Name: stepDeleteLocalBookings,
			Execute: func(ctx context.Context) error {
				return s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
					if err := ignoreNotFound(repos.Bookings().Delete(ctx, trip.TaxiBookingID())); err != nil {
						return err
					}
					return repos.TravelAgentBookings().Delete(ctx, trip.ID())
				})
			},
		})

	if _, err := s.runner.Run(ctx, def); err != nil {
		s.logger.Warn("travel agent booking deletion incomplete",
			zap.String("trip_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("travel agent booking deleted", zap.String("trip_id", id.String()))
	_ = s.events.publish(ctx, travelagent.TripCancelled, trip.ID().String(), travelagent.TripCancelledEvent{
		TripID:     trip.ID(),
		CustomerID: trip.CustomerID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toTravelAgentBookingDTO(trip)
	return &result, nil
}

// GetTrip returns one composite booking.
func (s *TravelAgentService) GetTrip(ctx context.Context, id uuid.UUID) (*TravelAgentBookingDTO, error) {
	trip, err := s.tx.Repositories().TravelAgentBookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toTravelAgentBookingDTO(trip)
	return &result, nil
}

// ListTrips returns every composite booking ordered by customer.
func (s *TravelAgentService) ListTrips(ctx context.Context) ([]TravelAgentBookingDTO, error) {
	trips, err := s.tx.Repositories().TravelAgentBookings().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toTravelAgentBookingDTOs(trips), nil
}

// ListTripsByCustomer returns one customer's composite bookings. An unknown
// customer is NotFound.
func (s *TravelAgentService) ListTripsByCustomer(ctx context.Context, customerID uuid.UUID) ([]TravelAgentBookingDTO, error) {
	repos := s.tx.Repositories()
	if _, err := repos.Customers().FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	trips, err := repos.TravelAgentBookings().FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toTravelAgentBookingDTOs(trips), nil
}

func ignoreNotFound(err error) error {
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}
