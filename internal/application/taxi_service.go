package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	taxiDomain "github.com/taxi-travel/service-travel/internal/domain/taxi"
	"go.uber.org/zap"
)

// TaxiService manages the taxi fleet.
type TaxiService struct {
	repo   taxiDomain.TaxiRepository
	logger *zap.Logger
}

// NewTaxiService creates a new TaxiService.
func NewTaxiService(repo taxiDomain.TaxiRepository, logger *zap.Logger) *TaxiService {
	return &TaxiService{repo: repo, logger: logger}
}

func (s *TaxiService) CreateTaxi(ctx context.Context, req TaxiRequest) (*TaxiDTO, error) {
	t, err := taxiDomain.NewTaxi(req.RegistrationNumber, req.SeatNumber)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save taxi: %w", err)
	}
	s.logger.Info("taxi created", zap.String("taxi_id", t.ID().String()))
	result := toTaxiDTO(t)
	return &result, nil
}

func (s *TaxiService) UpdateTaxi(ctx context.Context, id uuid.UUID, req TaxiRequest) (*TaxiDTO, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.UpdateDetails(req.RegistrationNumber, req.SeatNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update taxi: %w", err)
	}
	result := toTaxiDTO(t)
	return &result, nil
}

func (s *TaxiService) GetTaxi(ctx context.Context, id uuid.UUID) (*TaxiDTO, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toTaxiDTO(t)
	return &result, nil
}

func (s *TaxiService) ListTaxis(ctx context.Context) ([]TaxiDTO, error) {
	taxis, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TaxiDTO, len(taxis))
	for i, t := range taxis {
		out[i] = toTaxiDTO(t)
	}
	return out, nil
}

func (s *TaxiService) DeleteTaxi(ctx context.Context, id uuid.UUID) (*TaxiDTO, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	result := toTaxiDTO(t)
	return &result, nil
}
