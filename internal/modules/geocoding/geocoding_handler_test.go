package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homechef-delivery/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	geocode *models.GeocodeResult
	pincode *models.PincodeResult
	err     error
}

func (s *stubService) GeocodeFullAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error) {
	return s.geocode, s.err
}

func (s *stubService) ValidatePincode(ctx context.Context, pincode string) (*models.PincodeResult, error) {
	return s.pincode, s.err
}

func serve(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func TestHandler_GeocodeFullAddress(t *testing.T) {
	tests := []struct {
		name        string
		svc         *stubService
		wantCode    int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "success",
			svc:         &stubService{geocode: &models.GeocodeResult{Coordinate: models.Coordinate{Latitude: 19.1, Longitude: 72.8}, Accuracy: "exact", Source: "google"}},
			wantCode:    http.StatusOK,
			wantSuccess: true,
		},
		{
			name:        "not found",
			svc:         &stubService{err: fmt.Errorf("wrapped: %w", models.ErrGeocodeFailed)},
			wantCode:    http.StatusUnprocessableEntity,
			wantMessage: models.ErrGeocodeFailed.Error(),
		},
		{
			name:        "unavailable",
			svc:         &stubService{err: fmt.Errorf("x: %w", models.ErrValidationUnavailable)},
			wantCode:    http.StatusServiceUnavailable,
			wantMessage: models.ErrValidationUnavailable.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.svc).GeocodeFullAddress, `{"building":"12","street":"Carter Road","area":"Bandra","pincode":"400050"}`)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body models.GeocodeFullAddressResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantSuccess, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
			if tt.wantSuccess {
				assert.Equal(t, "exact", body.Accuracy)
				assert.Equal(t, 19.1, body.Latitude)
			}
		})
	}
}

func TestHandler_ValidatePincode(t *testing.T) {
	h := NewHandler(&stubService{pincode: &models.PincodeResult{Area: "Kurla", Coordinate: models.Coordinate{Latitude: 19.07, Longitude: 72.88}}})

	rec := serve(h.ValidatePincode, `{"pincode":"400070"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"area":"Kurla"`)

	rec = serve(h.ValidatePincode, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
