package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	taxiDomain "github.com/taxi-travel/service-travel/internal/domain/taxi"
	"gorm.io/gorm"
)

// TaxiModel is the GORM model for the taxis table.
type TaxiModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	RegistrationNumber string    `gorm:"type:varchar(7);not null;uniqueIndex"`
	SeatNumber         int       `gorm:"not null"`
	CreatedAt          time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt          time.Time `gorm:"type:timestamptz;not null"`
}

func (TaxiModel) TableName() string { return "taxis" }

// GormTaxiRepository implements TaxiRepository using GORM.
type GormTaxiRepository struct {
	db *gorm.DB
}

// NewGormTaxiRepository creates a new GormTaxiRepository.
func NewGormTaxiRepository(db *gorm.DB) *GormTaxiRepository {
	return &GormTaxiRepository{db: db}
}

func (r *GormTaxiRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxiDomain.Taxi, error) {
	var model TaxiModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Taxi", id.String())
		}
		return nil, fmt.Errorf("failed to find taxi by ID: %w", err)
	}
	return toDomainTaxi(&model), nil
}

func (r *GormTaxiRepository) FindAll(ctx context.Context) ([]*taxiDomain.Taxi, error) {
	var models []TaxiModel
	if err := r.db.WithContext(ctx).Order("registration_number ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list taxis: %w", err)
	}
	taxis := make([]*taxiDomain.Taxi, len(models))
	for i := range models {
		taxis[i] = toDomainTaxi(&models[i])
	}
	return taxis, nil
}

func (r *GormTaxiRepository) Save(ctx context.Context, t *taxiDomain.Taxi) error {
	if err := r.db.WithContext(ctx).Create(toTaxiModel(t)).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("taxi registration already exists").
				WithReason("registrationNumber", "That registration number is already used")
		}
		return fmt.Errorf("failed to create taxi: %w", err)
	}
	return nil
}

func (r *GormTaxiRepository) Update(ctx context.Context, t *taxiDomain.Taxi) error {
	result := r.db.WithContext(ctx).
		Model(&TaxiModel{}).
		Where("id = ?", t.ID()).
		Updates(map[string]interface{}{
			"registration_number": t.RegistrationNumber(),
			"seat_number":         t.SeatNumber(),
			"updated_at":          t.UpdatedAt(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.NewConflictError("taxi registration already exists").
				WithReason("registrationNumber", "That registration number is already used")
		}
		return fmt.Errorf("failed to update taxi: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Taxi", t.ID().String())
	}
	return nil
}

func (r *GormTaxiRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TaxiModel{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domain.NewConflictError("taxi still has bookings")
		}
		return fmt.Errorf("failed to delete taxi: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Taxi", id.String())
	}
	return nil
}

func toTaxiModel(t *taxiDomain.Taxi) *TaxiModel {
	return &TaxiModel{
		ID:                 t.ID(),
		RegistrationNumber: t.RegistrationNumber(),
		SeatNumber:         t.SeatNumber(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
	}
}

func toDomainTaxi(m *TaxiModel) *taxiDomain.Taxi {
	return taxiDomain.ReconstructTaxi(m.ID, m.RegistrationNumber, m.SeatNumber, m.CreatedAt, m.UpdatedAt)
}
