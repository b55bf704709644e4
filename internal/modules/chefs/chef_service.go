package chefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homechef-delivery/internal/models"
)

// ServiceInterface defines chef lookups used by handlers, zone validation and orders.
type ServiceInterface interface {
	GetChef(ctx context.Context, chefID int64) (*models.Chef, error)
	UpdateDeliveryProfile(ctx context.Context, chefID int64, req models.UpdateDeliveryProfileRequest) (*models.Chef, error)
}

type Service struct {
	repo          RepositoryInterface
	lookupTimeout time.Duration
}

// NewService creates a chef service; lookupTimeout bounds every chef fetch.
func NewService(repo RepositoryInterface, lookupTimeout time.Duration) *Service {
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	return &Service{repo: repo, lookupTimeout: lookupTimeout}
}

// GetChef fetches a chef. A lookup that times out is reported as
// ErrValidationUnavailable so callers can offer a retry.
func (s *Service) GetChef(ctx context.Context, chefID int64) (*models.Chef, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	chef, err := s.repo.FindByID(ctx, chefID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("service.GetChef: %w: %v", models.ErrValidationUnavailable, err)
		}
		return nil, fmt.Errorf("service.GetChef: %w", err)
	}
	return chef, nil
}

func (s *Service) UpdateDeliveryProfile(ctx context.Context, chefID int64, req models.UpdateDeliveryProfileRequest) (*models.Chef, error) {
	chef, err := s.repo.UpdateDeliveryProfile(ctx, chefID, req)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateDeliveryProfile: %w", err)
	}
	return chef, nil
}
