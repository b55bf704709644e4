package chefs

import (
	"context"
	"fmt"
	"strings"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/delivery"
	"homechef-delivery/internal/modules/geocoding"

	"go.uber.org/zap"
)

// ZoneValidatorInterface decides whether an address is deliverable for a chef.
type ZoneValidatorInterface interface {
	Validate(ctx context.Context, chefID int64, q models.AddressQuery) (*models.ZoneResult, error)
}

type ZoneValidator struct {
	chefs    ServiceInterface
	geocoder geocoding.ServiceInterface
	logger   *zap.Logger
}

func NewZoneValidator(chefs ServiceInterface, geocoder geocoding.ServiceInterface, logger *zap.Logger) *ZoneValidator {
	return &ZoneValidator{chefs: chefs, geocoder: geocoder, logger: logger}
}

// Validate checks, in order: the chef's pincode allow-list, then geocodes the
// address and compares the haversine distance with the chef's radius. A pincode
// outside the allow-list is rejected without any geocoding call.
func (v *ZoneValidator) Validate(ctx context.Context, chefID int64, q models.AddressQuery) (*models.ZoneResult, error) {
	q = q.Normalized()
	if err := geocoding.CheckAddressInput(q); err != nil {
		return nil, err
	}

	chef, err := v.chefs.GetChef(ctx, chefID)
	if err != nil {
		return nil, fmt.Errorf("zone.Validate: %w", err)
	}
	if !chef.IsActive {
		return nil, models.ErrChefInactive
	}

	if q.Pincode != "" && !chef.ServesPincode(q.Pincode) {
		return &models.ZoneResult{
			Status:          models.ZonePincodeNotServed,
			ChefID:          chef.ID,
			MaxDistanceKm:   chef.MaxDeliveryDistanceKm,
			ServicePincodes: chef.ServicePincodes,
			Message: fmt.Sprintf("Sorry, %s does not deliver to pincode %s. We currently deliver to: %s.",
				chef.Name, q.Pincode, strings.Join(chef.ServicePincodes, ", ")),
		}, nil
	}

	geo, err := v.geocoder.GeocodeFullAddress(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("zone.Validate: %w", err)
	}

	location := &models.ResolvedLocation{
		Coordinate: geo.Coordinate,
		Area:       firstNonEmpty(q.Area, geo.Area),
		Pincode:    firstNonEmpty(q.Pincode, geo.Pincode),
		Accuracy:   geo.Accuracy,
		Source:     geo.Source,
	}

	distance := delivery.CalculateDistance(geo.Latitude, geo.Longitude, chef.Latitude, chef.Longitude)
	shown := delivery.RoundDistance(distance)
	result := &models.ZoneResult{
		ChefID:        chef.ID,
		Location:      location,
		DistanceKm:    shown,
		MaxDistanceKm: chef.MaxDeliveryDistanceKm,
	}

	if delivery.InZone(distance, chef.MaxDeliveryDistanceKm) {
		result.Status = models.ZoneInZone
		result.InDeliveryZone = true
		result.Message = fmt.Sprintf("Great! %s delivers to your address (%.1f km away).", chef.Name, shown)
		return result, nil
	}

	result.Status = models.ZoneOutOfZone
	result.ShortfallKm = delivery.Shortfall(distance, chef.MaxDeliveryDistanceKm)
	result.Message = fmt.Sprintf("Sorry, %s delivers within %.1f km. Your address is %.1f km away, %.1f km outside the delivery zone.",
		chef.Name, chef.MaxDeliveryDistanceKm, shown, result.ShortfallKm)
	v.logger.Info("address out of delivery zone",
		zap.Int64("chef_id", chef.ID),
		zap.Float64("distance_km", shown),
		zap.Float64("max_km", chef.MaxDeliveryDistanceKm))
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
