package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/domain"
	bookingDomain "github.com/taxi-travel/service-travel/internal/domain/booking"
	customerDomain "github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestCustomer(t *testing.T) *customerDomain.Customer {
	t.Helper()
	c, err := customerDomain.NewCustomer("Ada", "Lovelace", "ada@example.com", "01234567890", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return c
}

func TestCustomerRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormCustomerRepository(db)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone_number", "birth_date", "created_at", "updated_at"}).
		AddRow(id, "Ada", "Lovelace", "ada@example.com", "01234567890", now.AddDate(-30, 0, 0), now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers" WHERE email = $1`)).WillReturnRows(rows)

	c, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID())
	assert.Equal(t, "Lovelace", c.LastName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormCustomerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestCustomerRepository_SaveDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormCustomerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "customers"`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uq_customers_email"})
	mock.ExpectRollback()

	err := repo.Save(context.Background(), newTestCustomer(t))
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, customerDomain.EmailTakenReason, de.Reasons["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_SaveDuplicatePair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormBookingRepository(db)
	bk, err := bookingDomain.NewBooking(uuid.New(), uuid.New(), time.Now().Add(48*time.Hour), time.Now())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	mock.ExpectRollback()

	err = repo.Save(context.Background(), bk)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_DeleteMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookings" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTravelAgentBookingRepository_FindByCustomerID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormTravelAgentBookingRepository(db)
	customerID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "customer_id", "taxi_booking_id", "flight_booking_id", "hotel_booking_id", "created_at"}).
		AddRow(uuid.New(), customerID, uuid.New(), int64(11), int64(22), now).
		AddRow(uuid.New(), customerID, uuid.New(), int64(12), int64(23), now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "travel_agent_bookings" WHERE customer_id = $1`)).WillReturnRows(rows)

	trips, err := repo.FindByCustomerID(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, int64(11), trips[0].FlightBookingID())
	assert.Equal(t, int64(23), trips[1].HotelBookingID())
}

func TestOrphanRepository_RecordIgnoresDuplicates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormOrphanRepository(db)
	o, err := travelagent.NewOrphanedResource(nil, travelagent.ResourceFlightBooking, "42", "delete failed", travelagent.SourceCompensation)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("source","resource_kind","resource_id") DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	written, err := repo.Record(context.Background(), o)
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mgr := NewGormTxManager(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "customers"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := mgr.WithinTx(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		require.NoError(t, repos.Customers().Save(ctx, newTestCustomer(t)))
		return domain.NewValidationError("booking rejected")
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
