// Package delivery holds the pure distance, zone and fee arithmetic shared by
// zone validation, checkout totals and order placement.
package delivery

import "math"

// EarthRadiusKm is the mean earth radius of the spherical approximation.
const EarthRadiusKm = 6371.0

// CalculateDistance returns the great-circle distance in km between two points
// using the haversine formula. Invalid input propagates as NaN.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RoundDistance truncates a distance to one decimal km for display.
func RoundDistance(km float64) float64 {
	return math.Trunc(km*10) / 10
}

// InZone reports whether distance is within the chef's delivery radius.
func InZone(distanceKm, maxDistanceKm float64) bool {
	return distanceKm <= maxDistanceKm
}

// Shortfall is how far beyond the radius the address lies, rounded up to a tenth
// of a km so an out-of-zone address never reports 0.0, or 0 when in zone.
func Shortfall(distanceKm, maxDistanceKm float64) float64 {
	if InZone(distanceKm, maxDistanceKm) {
		return 0
	}
	return math.Ceil((distanceKm-maxDistanceKm)*10) / 10
}
