package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	customerDomain "github.com/taxi-travel/service-travel/internal/domain/customer"
	"gorm.io/gorm"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"type:varchar(25);not null"`
	LastName    string    `gorm:"type:varchar(25);not null"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PhoneNumber string    `gorm:"type:varchar(11);not null"`
	BirthDate   time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

func (CustomerModel) TableName() string { return "customers" }

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return toDomainCustomer(&model), nil
}

func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", email)
		}
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	return toDomainCustomer(&model), nil
}

func (r *GormCustomerRepository) FindAll(ctx context.Context) ([]*customerDomain.Customer, error) {
	var models []CustomerModel
	if err := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	customers := make([]*customerDomain.Customer, len(models))
	for i := range models {
		customers[i] = toDomainCustomer(&models[i])
	}
	return customers, nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return customerDomain.NewEmailTakenError()
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, c *customerDomain.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&CustomerModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"first_name":   c.FirstName(),
			"last_name":    c.LastName(),
			"email":        c.Email(),
			"phone_number": c.PhoneNumber(),
			"birth_date":   c.BirthDate(),
			"updated_at":   c.UpdatedAt(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return customerDomain.NewEmailTakenError()
		}
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Customer", c.ID().String())
	}
	return nil
}

func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CustomerModel{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domain.NewConflictError("customer still has bookings")
		}
		return fmt.Errorf("failed to delete customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Customer", id.String())
	}
	return nil
}

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:          c.ID(),
		FirstName:   c.FirstName(),
		LastName:    c.LastName(),
		Email:       c.Email(),
		PhoneNumber: c.PhoneNumber(),
		BirthDate:   c.BirthDate(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func toDomainCustomer(m *CustomerModel) *customerDomain.Customer {
	return customerDomain.ReconstructCustomer(
		m.ID, m.FirstName, m.LastName, m.Email, m.PhoneNumber,
		m.BirthDate, m.CreatedAt, m.UpdatedAt,
	)
}
