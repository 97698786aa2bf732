package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/repository/memory"
	"go.uber.org/zap"
)

func newGuestBookingFixture(t *testing.T) (*GuestBookingService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	return NewGuestBookingService(store, pub, zap.NewNop()), store, pub
}

func TestCreateGuestBooking_RegistersNewCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newGuestBookingFixture(t)
	cab := seedTaxi(t, store, "XY98ZZZ")

	got, err := svc.CreateGuestBooking(ctx, GuestBookingRequest{
		Customer: customerRequest("Alan@Example.com"),
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(24 * time.Hour)},
	})
	require.NoError(t, err)

	assert.Equal(t, "alan@example.com", got.Customer.Email)
	assert.Equal(t, got.Customer.ID, got.Booking.CustomerID)
	assert.Equal(t, cab.ID(), got.Booking.TaxiID)

	stored, err := store.Customers().FindByEmail(ctx, "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, got.Customer.ID, stored.ID())

	events := pub.ofType(travelagent.GuestBookingCreated)
	require.Len(t, events, 1)
	var evt travelagent.GuestBookingCreatedEvent
	require.NoError(t, events[0].ParseData(&evt))
	assert.True(t, evt.NewCustomer)
	assert.Equal(t, got.Booking.ID, evt.BookingID)
}

func TestCreateGuestBooking_ReusesExistingCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newGuestBookingFixture(t)
	existing := seedCustomer(t, store, "ada@example.com")
	cab := seedTaxi(t, store, "XY98ZZZ")

	// details other than the email are ignored for a known customer
	req := customerRequest("ADA@example.com")
	req.FirstName = "Someone"

	got, err := svc.CreateGuestBooking(ctx, GuestBookingRequest{
		Customer: req,
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(24 * time.Hour)},
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID(), got.Customer.ID)
	assert.Equal(t, "Ada", got.Customer.FirstName)

	all, err := store.Customers().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateGuestBooking_RollsBackCustomerWhenBookingFails(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newGuestBookingFixture(t)

	_, err := svc.CreateGuestBooking(ctx, GuestBookingRequest{
		Customer: customerRequest("alan@example.com"),
		Booking:  &BookingRequest{TaxiID: uuid.New(), BookDate: time.Now().Add(24 * time.Hour)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = store.Customers().FindByEmail(ctx, "alan@example.com")
	assert.True(t, domain.IsNotFound(err), "customer must not survive a failed booking")
	assert.Empty(t, pub.ofType(travelagent.GuestBookingCreated))
}

func TestCreateGuestBooking_PastDateIsValidation(t *testing.T) {
	svc, store, _ := newGuestBookingFixture(t)
	cab := seedTaxi(t, store, "XY98ZZZ")

	_, err := svc.CreateGuestBooking(context.Background(), GuestBookingRequest{
		Customer: customerRequest("alan@example.com"),
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(-time.Hour)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateGuestBooking_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newGuestBookingFixture(t)
	cab := seedTaxi(t, store, "XY98ZZZ")
	req := GuestBookingRequest{
		Customer: customerRequest("alan@example.com"),
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(24 * time.Hour)},
	}

	_, err := svc.CreateGuestBooking(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateGuestBooking(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, booking.DuplicateReason, derr.Reasons["taxiId"])
}

func TestCreateGuestBooking_InvalidCustomer(t *testing.T) {
	svc, store, _ := newGuestBookingFixture(t)
	cab := seedTaxi(t, store, "XY98ZZZ")
	req := customerRequest("not-an-email")
	req.PhoneNumber = "12"

	_, err := svc.CreateGuestBooking(context.Background(), GuestBookingRequest{
		Customer: req,
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(24 * time.Hour)},
	})
	require.Error(t, err)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.KindValidation, derr.Kind)
	assert.Contains(t, derr.Reasons, "email")
	assert.Contains(t, derr.Reasons, "phoneNumber")
}

func TestCreateGuestBooking_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc, store, pub := newGuestBookingFixture(t)
	pub.err = domain.NewUnavailableError("broker down", nil)
	cab := seedTaxi(t, store, "XY98ZZZ")

	_, err := svc.CreateGuestBooking(context.Background(), GuestBookingRequest{
		Customer: customerRequest("alan@example.com"),
		Booking:  &BookingRequest{TaxiID: cab.ID(), BookDate: time.Now().Add(24 * time.Hour)},
	})
	require.NoError(t, err)
}
