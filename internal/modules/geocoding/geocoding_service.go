package geocoding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"go.uber.org/zap"
)

// AccuracyApproximate marks a low-confidence full-address match used because no
// pincode was available to fall back to.
const AccuracyApproximate = "approximate"

// ServiceInterface defines the geocoding operations used by handlers and the zone validator.
type ServiceInterface interface {
	GeocodeFullAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error)
	ValidatePincode(ctx context.Context, pincode string) (*models.PincodeResult, error)
}

type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a geocoding service. timeout bounds each provider attempt.
func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{provider: provider, timeout: timeout, logger: logger}
}

// CheckAddressInput rejects addresses that cannot be geocoded before any network call.
func CheckAddressInput(q models.AddressQuery) error {
	if q.Pincode != "" && !utils.IsValidPincode(q.Pincode) {
		return models.ErrInvalidPincode
	}
	if q.Pincode == "" && q.Area == "" {
		return models.ErrMissingArea
	}
	return nil
}

// GeocodeFullAddress resolves the structured address first and falls back to the
// pincode centroid when that fails or is low confidence.
func (s *Service) GeocodeFullAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error) {
	q = q.Normalized()
	if err := CheckAddressInput(q); err != nil {
		return nil, err
	}

	var (
		lowConfidence *models.GeocodeResult
		attemptErrs   []error
	)

	if q.Building != "" || q.Street != "" || q.Area != "" {
		res, err := s.geocodeAddress(ctx, q)
		switch {
		case err != nil:
			attemptErrs = append(attemptErrs, err)
			s.logger.Info("full address lookup failed, trying pincode", zap.String("pincode", q.Pincode), zap.Error(err))
		case res.LowConfidence:
			lowConfidence = res
		default:
			res.Accuracy = models.AccuracyExact
			return res, nil
		}
	}

	if q.Pincode != "" {
		pin, err := s.lookupPincode(ctx, q.Pincode)
		if err == nil {
			area := q.Area
			if area == "" {
				area = pin.Area
			}
			return &models.GeocodeResult{
				Coordinate: pin.Coordinate,
				Accuracy:   models.AccuracyPincode,
				Source:     pin.Source,
				Area:       area,
				Pincode:    q.Pincode,
			}, nil
		}
		attemptErrs = append(attemptErrs, err)
	}

	if lowConfidence != nil {
		lowConfidence.Accuracy = AccuracyApproximate
		return lowConfidence, nil
	}
	return nil, classify("service.GeocodeFullAddress", attemptErrs)
}

// ValidatePincode checks the pincode format and resolves its area and centroid.
func (s *Service) ValidatePincode(ctx context.Context, pincode string) (*models.PincodeResult, error) {
	if !utils.IsValidPincode(pincode) {
		return nil, models.ErrInvalidPincode
	}
	res, err := s.lookupPincode(ctx, pincode)
	if err != nil {
		return nil, classify("service.ValidatePincode", []error{err})
	}
	return res, nil
}

func (s *Service) geocodeAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.provider.GeocodeAddress(ctx, q)
}

func (s *Service) lookupPincode(ctx context.Context, pincode string) (*models.PincodeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.provider.LookupPincode(ctx, pincode)
}

// classify reports ErrGeocodeFailed when every attempt simply found nothing, and
// ErrValidationUnavailable when any attempt hit a network, timeout or provider error.
func classify(op string, errs []error) error {
	for _, err := range errs {
		if !errors.Is(err, models.ErrGeocodeFailed) {
			return fmt.Errorf("%s: %w: %v", op, models.ErrValidationUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, models.ErrGeocodeFailed)
}
