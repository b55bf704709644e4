package checkout

import (
	"errors"
	"testing"
	"time"

	"homechef-delivery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inZone(chefID int64) *models.ZoneResult {
	return &models.ZoneResult{
		Status:         models.ZoneInZone,
		ChefID:         chefID,
		InDeliveryZone: true,
		Location:       &models.ResolvedLocation{Coordinate: models.Coordinate{Latitude: 19.0650, Longitude: 72.8930}},
		DistanceKm:     1.2,
		MaxDistanceKm:  5,
	}
}

func cartFor(chefID int64) Cart {
	return Cart{ChefID: chefID, Items: []models.OrderItem{{MenuItemID: 1, Name: "Thali", Price: 150, Quantity: 2}}}
}

func validatedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("s-1", "", time.Now())
	s.CustomerName = "Asha"
	require.NoError(t, s.SetCart(cartFor(7)))
	require.NoError(t, s.SetAddress(models.AddressQuery{Area: "Kurla West", Pincode: "400070"}))
	gen := s.BeginValidation()
	require.True(t, s.ApplyValidation(gen, inZone(7)))
	return s
}

func TestSession_ConfirmRequiresInZoneValidation(t *testing.T) {
	s := NewSession("s-1", "", time.Now())
	require.NoError(t, s.SetCart(cartFor(7)))
	assert.ErrorIs(t, s.ConfirmAddress(), models.ErrAddressNotValidated)

	gen := s.BeginValidation()
	out := inZone(7)
	out.Status, out.InDeliveryZone = models.ZoneOutOfZone, false
	require.True(t, s.ApplyValidation(gen, out))
	assert.ErrorIs(t, s.ConfirmAddress(), models.ErrOutOfZone)
	assert.Equal(t, StateAddressEntry, s.State)

	gen = s.BeginValidation()
	require.True(t, s.ApplyValidation(gen, inZone(7)))
	require.NoError(t, s.ConfirmAddress())
	assert.Equal(t, StateAddressConfirmed, s.State)
}

func TestSession_StaleValidationIsDropped(t *testing.T) {
	s := NewSession("s-1", "", time.Now())
	require.NoError(t, s.SetCart(cartFor(7)))

	first := s.BeginValidation()
	require.NoError(t, s.SetAddress(models.AddressQuery{Area: "Bandra West"}))
	second := s.BeginValidation()

	assert.False(t, s.ApplyValidation(first, inZone(7)))
	assert.False(t, s.Validation.ZoneValidated)
	assert.False(t, s.FailValidation(first, "late failure"))
	assert.Empty(t, s.Validation.Message)

	assert.True(t, s.ApplyValidation(second, inZone(7)))
	assert.True(t, s.Validation.ZoneValidated)
}

func TestSession_ResultForAnotherChefIsDropped(t *testing.T) {
	s := NewSession("s-1", "", time.Now())
	require.NoError(t, s.SetCart(cartFor(7)))
	gen := s.BeginValidation()
	assert.False(t, s.ApplyValidation(gen, inZone(8)))
}

func TestSession_EditsThatInvalidate(t *testing.T) {
	t.Run("pincode edit", func(t *testing.T) {
		s := validatedSession(t)
		require.NoError(t, s.ConfirmAddress())
		require.NoError(t, s.SetAddress(models.AddressQuery{Area: "Kurla West", Pincode: "400071"}))
		assert.False(t, s.Validation.ZoneValidated)
		assert.Equal(t, StateAddressEntry, s.State)
	})
	t.Run("area edit", func(t *testing.T) {
		s := validatedSession(t)
		require.NoError(t, s.SetAddress(models.AddressQuery{Area: "Kurla East", Pincode: "400070"}))
		assert.False(t, s.Validation.ZoneValidated)
	})
	t.Run("landmark edit keeps validation", func(t *testing.T) {
		s := validatedSession(t)
		require.NoError(t, s.SetAddress(models.AddressQuery{Area: "Kurla West", Pincode: "400070", Landmark: "Near station"}))
		assert.True(t, s.Validation.ZoneValidated)
	})
	t.Run("switching chef", func(t *testing.T) {
		s := validatedSession(t)
		require.NoError(t, s.ConfirmAddress())
		require.NoError(t, s.SetCart(cartFor(8)))
		assert.False(t, s.Validation.ZoneValidated)
		assert.Nil(t, s.Validation.Location)
		assert.Equal(t, StateAddressEntry, s.State)
	})
	t.Run("same chef new items keeps validation", func(t *testing.T) {
		s := validatedSession(t)
		cart := cartFor(7)
		cart.Items[0].Quantity = 5
		require.NoError(t, s.SetCart(cart))
		assert.True(t, s.Validation.ZoneValidated)
	})
}

func TestSession_SubmitGuardsInOrder(t *testing.T) {
	slot := &models.OrderRejection{Message: "slot", RequiresReschedule: true, Err: models.ErrRescheduleRequired}
	tests := []struct {
		name    string
		mutate  func(*Session)
		facts   SubmitFacts
		wantErr error
	}{
		{"empty cart beats everything", func(s *Session) { s.Cart.Items = nil; s.Phone = "1" },
			SubmitFacts{LoginRequired: true, Slot: slot}, models.ErrCartEmpty},
		{"inactive chef", func(s *Session) { s.Phone = "1" },
			SubmitFacts{LoginRequired: true}, models.ErrChefInactive},
		{"bad phone", func(s *Session) { s.Phone = "12345" },
			SubmitFacts{ChefActive: true, LoginRequired: true}, models.ErrInvalidPhone},
		{"missing name", func(s *Session) { s.CustomerName = " " },
			SubmitFacts{ChefActive: true, LoginRequired: true}, models.ErrInvalidName},
		{"login", func(*Session) {},
			SubmitFacts{ChefActive: true, LoginRequired: true, Slot: slot}, models.ErrLoginRequired},
		{"slot", func(*Session) {},
			SubmitFacts{ChefActive: true, Slot: slot}, models.ErrRescheduleRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validatedSession(t)
			require.NoError(t, s.ConfirmAddress())
			s.Phone = "9876543210"
			tt.mutate(s)

			err := s.BeginSubmit(tt.facts, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateAddressConfirmed, s.State)
		})
	}
}

func TestSession_SubmitLifecycle(t *testing.T) {
	s := validatedSession(t)
	s.Phone = "9876543210"
	assert.ErrorIs(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, time.Now()), models.ErrInvalidTransition)

	require.NoError(t, s.ConfirmAddress())
	require.NoError(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, time.Now()))
	assert.Equal(t, StateSubmitting, s.State)

	// A second submit while the first is in flight is refused, as are edits.
	assert.ErrorIs(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, time.Now()), models.ErrInvalidTransition)
	assert.ErrorIs(t, s.SetCart(cartFor(7)), models.ErrInvalidTransition)

	s.FailSubmit(&models.OrderRejection{Message: "log in", RequiresLogin: true, Err: models.ErrLoginRequired})
	assert.Equal(t, StateAddressConfirmed, s.State)
	assert.Equal(t, "log in", s.LastError)
	require.NotNil(t, s.Rejection)
	assert.True(t, s.Rejection.RequiresLogin)

	require.NoError(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, time.Now()))
	assert.Nil(t, s.Rejection)
	require.NoError(t, s.CompleteSubmit(&models.CreateOrderResponse{ID: 42, Total: 300}, "/api/orders/42/payment-qr"))
	assert.Equal(t, StateSuccess, s.State)
	assert.Empty(t, s.Cart.Items)
	assert.Equal(t, int64(42), s.LastOrder.ID)

	// The next edit starts a fresh checkout.
	require.NoError(t, s.SetCart(cartFor(7)))
	assert.Equal(t, StateAddressEntry, s.State)
	assert.False(t, s.Validation.ZoneValidated)
	assert.Equal(t, "9876543210", s.Phone)
	assert.Equal(t, "400070", s.Address.Pincode)
}

func TestSession_FailSubmitKeepsPlainErrors(t *testing.T) {
	s := validatedSession(t)
	require.NoError(t, s.ConfirmAddress())
	s.Phone = "9876543210"
	require.NoError(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, time.Now()))

	s.FailSubmit(errors.New("database unavailable"))
	assert.Equal(t, StateAddressConfirmed, s.State)
	assert.Nil(t, s.Rejection)
	assert.Equal(t, "database unavailable", s.LastError)
}

func TestSession_RecoverStaleSubmit(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s := validatedSession(t)
	require.NoError(t, s.ConfirmAddress())
	s.Phone = "9876543210"
	require.NoError(t, s.BeginSubmit(SubmitFacts{ChefActive: true}, start))

	assert.False(t, s.RecoverStaleSubmit(start.Add(SubmitStaleAfter-time.Second)))
	assert.Equal(t, StateSubmitting, s.State)

	assert.True(t, s.RecoverStaleSubmit(start.Add(SubmitStaleAfter)))
	assert.Equal(t, StateAddressConfirmed, s.State)
	assert.Equal(t, models.ErrSubmitInterrupted.Error(), s.LastError)
	assert.True(t, s.SubmitStartedAt.IsZero())

	// Only a submitting session is touched.
	assert.False(t, s.RecoverStaleSubmit(start.Add(time.Hour)))
	require.NoError(t, s.SetCart(cartFor(7)))
}
