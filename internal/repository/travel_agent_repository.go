package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"gorm.io/gorm"
)

// TravelAgentBookingModel is the GORM model for the travel_agent_bookings table.
type TravelAgentBookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TaxiBookingID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FlightBookingID int64     `gorm:"not null"`
	HotelBookingID  int64     `gorm:"not null"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null"`
}

func (TravelAgentBookingModel) TableName() string { return "travel_agent_bookings" }

// GormTravelAgentBookingRepository implements TravelAgentBookingRepository using GORM.
type GormTravelAgentBookingRepository struct {
	db *gorm.DB
}

// NewGormTravelAgentBookingRepository creates a new GormTravelAgentBookingRepository.
func NewGormTravelAgentBookingRepository(db *gorm.DB) *GormTravelAgentBookingRepository {
	return &GormTravelAgentBookingRepository{db: db}
}

func (r *GormTravelAgentBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*travelagent.TravelAgentBooking, error) {
	var model TravelAgentBookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TravelAgentBooking", id.String())
		}
		return nil, fmt.Errorf("failed to find travel agent booking: %w", err)
	}
	return toDomainTravelAgentBooking(&model), nil
}

func (r *GormTravelAgentBookingRepository) FindAll(ctx context.Context) ([]*travelagent.TravelAgentBooking, error) {
	var models []TravelAgentBookingModel
	if err := r.db.WithContext(ctx).Order("customer_id ASC, created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list travel agent bookings: %w", err)
	}
	return toDomainTravelAgentBookings(models), nil
}

func (r *GormTravelAgentBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*travelagent.TravelAgentBooking, error) {
	var models []TravelAgentBookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find customer travel agent bookings: %w", err)
	}
	return toDomainTravelAgentBookings(models), nil
}

func (r *GormTravelAgentBookingRepository) Save(ctx context.Context, b *travelagent.TravelAgentBooking) error {
	model := &TravelAgentBookingModel{
		ID:              b.ID(),
		CustomerID:      b.CustomerID(),
		TaxiBookingID:   b.TaxiBookingID(),
		FlightBookingID: b.FlightBookingID(),
		HotelBookingID:  b.HotelBookingID(),
		CreatedAt:       b.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("taxi booking already belongs to a travel agent booking")
		}
		return fmt.Errorf("failed to save travel agent booking: %w", err)
	}
	return nil
}

func (r *GormTravelAgentBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TravelAgentBookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete travel agent booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("TravelAgentBooking", id.String())
	}
	return nil
}

func toDomainTravelAgentBooking(m *TravelAgentBookingModel) *travelagent.TravelAgentBooking {
	return travelagent.ReconstructTravelAgentBooking(m.ID, m.CustomerID, m.TaxiBookingID, m.FlightBookingID, m.HotelBookingID, m.CreatedAt)
}

func toDomainTravelAgentBookings(models []TravelAgentBookingModel) []*travelagent.TravelAgentBooking {
	out := make([]*travelagent.TravelAgentBooking, len(models))
	for i := range models {
		out[i] = toDomainTravelAgentBooking(&models[i])
	}
	return out
}
