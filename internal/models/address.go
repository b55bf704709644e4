package models

import "strings"

// AddressQuery is the structured delivery address typed in at checkout.
type AddressQuery struct {
	Building string `json:"building"`
	Street   string `json:"street"`
	Area     string `json:"area"`
	City     string `json:"city"`
	Pincode  string `json:"pincode" validate:"omitempty,pincode"`
	Landmark string `json:"landmark,omitempty"`
}

// Normalized returns the address with surrounding whitespace trimmed.
func (a AddressQuery) Normalized() AddressQuery {
	return AddressQuery{
		Building: strings.TrimSpace(a.Building),
		Street:   strings.TrimSpace(a.Street),
		Area:     strings.TrimSpace(a.Area),
		City:     strings.TrimSpace(a.City),
		Pincode:  strings.TrimSpace(a.Pincode),
		Landmark: strings.TrimSpace(a.Landmark),
	}
}

// Line joins the non-empty parts into a single geocodable line.
func (a AddressQuery) Line() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Building, a.Street, a.Area, a.City, a.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

const (
	AccuracyExact   = "exact"
	AccuracyPincode = "pincode"

	SourceProvider = "google"
	SourceCache    = "cache"
)

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	Coordinate
	Accuracy         string `json:"accuracy"`
	Source           string `json:"source"`
	Area             string `json:"area,omitempty"`
	Pincode          string `json:"pincode,omitempty"`
	FormattedAddress string `json:"formattedAddress,omitempty"`
	// LowConfidence is set by providers when the match was partial or approximate.
	LowConfidence bool `json:"-"`
}

// PincodeResult is the centroid and locality of a postal pincode.
type PincodeResult struct {
	Coordinate
	Pincode string `json:"pincode"`
	Area    string `json:"area"`
	Source  string `json:"source"`
}

// GeocodeFullAddressResponse is the reply of POST /api/geocode-full-address.
type GeocodeFullAddressResponse struct {
	Success   bool    `json:"success"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Accuracy  string  `json:"accuracy,omitempty"`
	Source    string  `json:"source,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// ValidatePincodeRequest is the body of POST /api/validate-pincode.
type ValidatePincodeRequest struct {
	Pincode string `json:"pincode" validate:"required"`
}

// ValidatePincodeResponse is the reply of POST /api/validate-pincode.
type ValidatePincodeResponse struct {
	Success   bool    `json:"success"`
	Area      string  `json:"area,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// ZoneStatus is the outcome of validating an address against a chef.
type ZoneStatus string

const (
	ZoneInZone           ZoneStatus = "in_zone"
	ZoneOutOfZone        ZoneStatus = "out_of_zone"
	ZonePincodeNotServed ZoneStatus = "pincode_not_served"
)

// ResolvedLocation is what a successful validation remembers about an address.
type ResolvedLocation struct {
	Coordinate
	Area     string `json:"area,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Accuracy string `json:"accuracy"`
	Source   string `json:"source"`
}

// ZoneResult is the result of zone validation. Location and DistanceKm are set
// only when the address was geocoded.
type ZoneResult struct {
	Status          ZoneStatus        `json:"status"`
	ChefID          int64             `json:"chefId"`
	InDeliveryZone  bool              `json:"inDeliveryZone"`
	Location        *ResolvedLocation `json:"location,omitempty"`
	DistanceKm      float64           `json:"distanceKm,omitempty"`
	MaxDistanceKm   float64           `json:"maxDistanceKm"`
	ShortfallKm     float64           `json:"shortfallKm,omitempty"`
	ServicePincodes []string          `json:"servicePincodes,omitempty"`
	Message         string            `json:"message"`
}
