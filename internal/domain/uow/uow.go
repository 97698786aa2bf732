// Package uow declares the repositories that can take part in one local
// transaction and the manager that scopes it.
package uow

import (
	"context"

	"github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/taxi"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
)

// Repositories groups the stores bound to the same connection or transaction.
type Repositories interface {
	Customers() customer.CustomerRepository
	Taxis() taxi.TaxiRepository
	Bookings() booking.BookingRepository
	TravelAgentBookings() travelagent.TravelAgentBookingRepository
	Orphans() travelagent.OrphanRepository
}

// Manager hands out repositories and runs work inside a transaction.
type Manager interface {
	// Repositories returns stores that run outside any explicit transaction.
	Repositories() Repositories

	// WithinTx begins a transaction, runs fn with stores bound to it and
	// commits when fn returns nil. Any error or panic rolls back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
