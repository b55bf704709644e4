package geocoding

import (
	"errors"
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the public geocoding endpoints. Replies always carry a
// success flag so the checkout UI can show the message inline.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// GeocodeFullAddress handles POST /api/geocode-full-address.
func (h *Handler) GeocodeFullAddress(c echo.Context) error {
	var req models.AddressQuery
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.GeocodeFullAddressResponse{Message: "Invalid request body"})
	}

	res, err := h.svc.GeocodeFullAddress(c.Request().Context(), req)
	if err != nil {
		status, msg := failureStatus(c, err)
		return c.JSON(status, models.GeocodeFullAddressResponse{Message: msg})
	}

	return c.JSON(http.StatusOK, models.GeocodeFullAddressResponse{
		Success:   true,
		Latitude:  res.Latitude,
		Longitude: res.Longitude,
		Accuracy:  res.Accuracy,
		Source:    res.Source,
	})
}

// ValidatePincode handles POST /api/validate-pincode.
func (h *Handler) ValidatePincode(c echo.Context) error {
	var req models.ValidatePincodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ValidatePincodeResponse{Message: "Invalid request body"})
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ValidatePincodeResponse{Message: models.ErrInvalidPincode.Error()})
	}

	res, err := h.svc.ValidatePincode(c.Request().Context(), req.Pincode)
	if err != nil {
		status, msg := failureStatus(c, err)
		return c.JSON(status, models.ValidatePincodeResponse{Message: msg})
	}

	return c.JSON(http.StatusOK, models.ValidatePincodeResponse{
		Success:   true,
		Area:      res.Area,
		Latitude:  res.Latitude,
		Longitude: res.Longitude,
	})
}

func failureStatus(c echo.Context, err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidPincode):
		return http.StatusBadRequest, models.ErrInvalidPincode.Error()
	case errors.Is(err, models.ErrMissingArea):
		return http.StatusBadRequest, models.ErrMissingArea.Error()
	case errors.Is(err, models.ErrGeocodeFailed):
		return http.StatusUnprocessableEntity, models.ErrGeocodeFailed.Error()
	case errors.Is(err, models.ErrValidationUnavailable):
		utils.Logger(c).Warn("geocoding unavailable", zap.Error(err))
		return http.StatusServiceUnavailable, models.ErrValidationUnavailable.Error()
	}
	utils.Logger(c).Error("geocoding failed", zap.Error(err))
	return http.StatusInternalServerError, "Something went wrong, please try again"
}
