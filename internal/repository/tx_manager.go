package repository

import (
	"context"

	"github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/taxi"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"gorm.io/gorm"
)

// gormRepositories binds every repository to one *gorm.DB, which is either
// the pool or an open transaction.
type gormRepositories struct {
	customers *GormCustomerRepository
	taxis     *GormTaxiRepository
	bookings  *GormBookingRepository
	trips     *GormTravelAgentBookingRepository
	orphans   *GormOrphanRepository
}

func newGormRepositories(db *gorm.DB) *gormRepositories {
	return &gormRepositories{
		customers: NewGormCustomerRepository(db),
		taxis:     NewGormTaxiRepository(db),
		bookings:  NewGormBookingRepository(db),
		trips:     NewGormTravelAgentBookingRepository(db),
		orphans:   NewGormOrphanRepository(db),
	}
}

func (r *gormRepositories) Customers() customer.CustomerRepository { return r.customers }
func (r *gormRepositories) Taxis() taxi.TaxiRepository             { return r.taxis }
func (r *gormRepositories) Bookings() booking.BookingRepository    { return r.bookings }
func (r *gormRepositories) TravelAgentBookings() travelagent.TravelAgentBookingRepository {
	return r.trips
}
func (r *gormRepositories) Orphans() travelagent.OrphanRepository { return r.orphans }

// GormTxManager implements uow.Manager on top of gorm transactions.
type GormTxManager struct {
	db   *gorm.DB
	repo *gormRepositories
}

// NewGormTxManager creates a GormTxManager bound to db.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db, repo: newGormRepositories(db)}
}

func (m *GormTxManager) Repositories() uow.Repositories {
	return m.repo
}

// WithinTx runs fn in a transaction. gorm commits when fn returns nil and
// rolls back on error or panic.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newGormRepositories(tx))
	})
}

// Models lists every GORM model, for development auto-migration.
func Models() []interface{} {
	return []interface{}{
		&CustomerModel{},
		&TaxiModel{},
		&BookingModel{},
		&TravelAgentBookingModel{},
		&OrphanedResourceModel{},
	}
}
