package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	customerDomain "github.com/taxi-travel/service-travel/internal/domain/customer"
	"go.uber.org/zap"
)

// CustomerService manages customer records.
type CustomerService struct {
	repo   customerDomain.CustomerRepository
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo customerDomain.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

// CreateCustomer registers a new customer. A taken email is a Conflict.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerDTO, error) {
	c, err := customerDomain.NewCustomer(req.FirstName, req.LastName, req.Email, req.PhoneNumber, req.BirthDate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", c.ID().String()))
	result := toCustomerDTO(c)
	return &result, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req CustomerRequest) (*CustomerDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateDetails(req.FirstName, req.LastName, req.Email, req.PhoneNumber, req.BirthDate); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	result := toCustomerDTO(c)
	return &result, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCustomerDTO(c)
	return &result, nil
}

func (s *CustomerService) GetCustomerByEmail(ctx context.Context, email string) (*CustomerDTO, error) {
	c, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	result := toCustomerDTO(c)
	return &result, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]CustomerDTO, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		out[i] = toCustomerDTO(c)
	}
	return out, nil
}

// DeleteCustomer removes the customer and returns the deleted record.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	result := toCustomerDTO(c)
	return &result, nil
}
