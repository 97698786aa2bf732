package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/repository/memory"
	"go.uber.org/zap"
)

func TestCustomerService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewCustomerService(store.Customers(), zap.NewNop())

	created, err := svc.CreateCustomer(ctx, *customerRequest("Alan@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "alan@example.com", created.Email)

	byEmail, err := svc.GetCustomerByEmail(ctx, " ALAN@example.com ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	req := customerRequest("alan@example.com")
	req.PhoneNumber = "07000000000"
	updated, err := svc.UpdateCustomer(ctx, created.ID, *req)
	require.NoError(t, err)
	assert.Equal(t, "07000000000", updated.PhoneNumber)

	_, err = svc.CreateCustomer(ctx, *customerRequest("alan@example.com"))
	assert.True(t, domain.IsConflict(err))

	_, err = svc.DeleteCustomer(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetCustomer(ctx, created.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestCustomerService_DeleteWithBookingsIsConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := seedCustomer(t, store, "ada@example.com")
	cab := seedTaxi(t, store, "AB12CDE")
	_, err := NewBookingService(store, zap.NewNop()).CreateBooking(ctx, BookingRequest{
		CustomerID: c.ID(),
		TaxiID:     cab.ID(),
		BookDate:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = NewCustomerService(store.Customers(), zap.NewNop()).DeleteCustomer(ctx, c.ID())
	assert.True(t, domain.IsConflict(err))
}

func TestTaxiService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewTaxiService(memory.NewStore().Taxis(), zap.NewNop())

	created, err := svc.CreateTaxi(ctx, TaxiRequest{RegistrationNumber: "ab12cde", SeatNumber: 4})
	require.NoError(t, err)
	assert.Equal(t, "AB12CDE", created.RegistrationNumber)

	_, err = svc.CreateTaxi(ctx, TaxiRequest{RegistrationNumber: "AB12CDE", SeatNumber: 4})
	assert.True(t, domain.IsConflict(err))

	_, err = svc.CreateTaxi(ctx, TaxiRequest{RegistrationNumber: "SHORT", SeatNumber: 1})
	assert.True(t, domain.IsValidation(err))
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewBookingService(store, zap.NewNop())
	c := seedCustomer(t, store, "ada@example.com")
	first := seedTaxi(t, store, "AB12CDE")
	second := seedTaxi(t, store, "ZZ99ZZZ")

	bk, err := svc.CreateBooking(ctx, BookingRequest{CustomerID: c.ID(), TaxiID: first.ID(), BookDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	moved, err := svc.UpdateBooking(ctx, bk.ID, BookingRequest{TaxiID: second.ID(), BookDate: time.Now().Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, second.ID(), moved.TaxiID)
	assert.Equal(t, c.ID(), moved.CustomerID)

	_, err = svc.UpdateBooking(ctx, bk.ID, BookingRequest{TaxiID: uuid.New(), BookDate: time.Now().Add(2 * time.Hour)})
	assert.True(t, domain.IsNotFound(err))

	customerID := c.ID()
	list, err := svc.ListBookings(ctx, &customerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.DeleteBooking(ctx, bk.ID)
	require.NoError(t, err)
	_, err = svc.DeleteBooking(ctx, bk.ID)
	assert.True(t, domain.IsNotFound(err))
}
