package models

import "time"

// DeliverySettings are the per-chef pricing and radius knobs owned by the admin.
type DeliverySettings struct {
	DefaultDeliveryFee    float64 `json:"defaultDeliveryFee"`
	DeliveryFeePerKm      float64 `json:"deliveryFeePerKm"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
	MaxDeliveryDistanceKm float64 `json:"maxDeliveryDistanceKm"`
}

// Chef is a partner kitchen together with its delivery profile.
type Chef struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	IsActive       bool    `json:"isActive"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	DeliverySettings
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	ServicePincodes []string  `json:"servicePincodes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ServesPincode reports whether the chef accepts the pincode. An empty
// allow-list means the chef is limited by radius only.
func (c *Chef) ServesPincode(pincode string) bool {
	if len(c.ServicePincodes) == 0 {
		return true
	}
	for _, p := range c.ServicePincodes {
		if p == pincode {
			return true
		}
	}
	return false
}

// UpdateDeliveryProfileRequest is the admin payload for a chef's delivery profile.
// Pointers distinguish "not sent" from zero.
type UpdateDeliveryProfileRequest struct {
	DefaultDeliveryFee    *float64  `json:"defaultDeliveryFee,omitempty" validate:"omitempty,gte=0"`
	DeliveryFeePerKm      *float64  `json:"deliveryFeePerKm,omitempty" validate:"omitempty,gte=0"`
	FreeDeliveryThreshold *float64  `json:"freeDeliveryThreshold,omitempty" validate:"omitempty,gte=0"`
	MaxDeliveryDistanceKm *float64  `json:"maxDeliveryDistanceKm,omitempty" validate:"omitempty,gt=0"`
	MinOrderAmount        *float64  `json:"minOrderAmount,omitempty" validate:"omitempty,gte=0"`
	Latitude              *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude             *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
	ServicePincodes       *[]string `json:"servicePincodes,omitempty" validate:"omitempty,dive,pincode"`
	IsActive              *bool     `json:"isActive,omitempty"`
}
