package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/taxi"
	"github.com/taxi-travel/service-travel/internal/integrations/partnerstub"
	"github.com/taxi-travel/service-travel/internal/platform/kafka"
	"github.com/taxi-travel/service-travel/internal/repository/memory"
	"github.com/taxi-travel/service-travel/internal/saga"
	"go.uber.org/zap"
)

// recordingPublisher captures published events; err makes every publish fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []kafka.CloudEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type tripFixture struct {
	store     *memory.Store
	flights   *partnerstub.Stub[partner.FlightBooking]
	hotels    *partnerstub.Stub[partner.HotelBooking]
	publisher *recordingPublisher
	orphans   *OrphanService
	svc       *TravelAgentService
	customer  *customer.Customer
	taxi      *taxi.Taxi
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &tripFixture{
		store:     memory.NewStore(),
		flights:   partnerstub.NewFlights(),
		hotels:    partnerstub.NewHotels(),
		publisher: &recordingPublisher{},
	}
	f.orphans = NewOrphanService(f.store.Orphans(), logger)
	f.svc = NewTravelAgentService(f.store, f.flights, f.hotels, saga.NewRunner(time.Second, logger), f.orphans, f.publisher, logger)
	f.customer = seedCustomer(t, f.store, "ada@example.com")
	f.taxi = seedTaxi(t, f.store, "AB12CDE")
	return f
}

func (f *tripFixture) request() CreateTripRequest {
	return CreateTripRequest{
		Customer: &CustomerRef{ID: f.customer.ID()},
		TaxiBooking: BookingRequest{
			TaxiID:   f.taxi.ID(),
			BookDate: time.Now().Add(48 * time.Hour),
		},
		FlightBooking: partner.FlightBooking{FlightID: 7, CustomerID: 1, FlightDate: time.Now().Add(72 * time.Hour)},
		HotelBooking:  partner.HotelBooking{HotelID: 3, CustomerID: 1, BookingDate: time.Now().Add(72 * time.Hour)},
	}
}

func seedCustomer(t *testing.T, store *memory.Store, email string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer("Ada", "Lovelace", email, "01234567890", time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, store.Customers().Save(context.Background(), c))
	return c
}

func seedTaxi(t *testing.T, store *memory.Store, registration string) *taxi.Taxi {
	t.Helper()
	tx, err := taxi.NewTaxi(registration, 4)
	require.NoError(t, err)
	require.NoError(t, store.Taxis().Save(context.Background(), tx))
	return tx
}

func customerRequest(email string) *CustomerRequest {
	return &CustomerRequest{
		FirstName:   "Alan",
		LastName:    "Turing",
		Email:       email,
		PhoneNumber: "07123456789",
		BirthDate:   time.Date(1985, 6, 23, 0, 0, 0, 0, time.UTC),
	}
}
