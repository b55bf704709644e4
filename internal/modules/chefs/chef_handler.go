package chefs

import (
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for chef profiles and address validation.
type Handler struct {
	svc       ServiceInterface
	validator ZoneValidatorInterface
}

func NewHandler(svc ServiceInterface, validator ZoneValidatorInterface) *Handler {
	return &Handler{svc: svc, validator: validator}
}

// GetChef handles GET /api/chefs/:id.
func (h *Handler) GetChef(c echo.Context) error {
	chefID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	chef, err := h.svc.GetChef(c.Request().Context(), chefID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, chef)
}

// ValidateAddress handles POST /api/chefs/:id/validate-address. Out-of-zone and
// unserved-pincode outcomes are results, not errors.
func (h *Handler) ValidateAddress(c echo.Context) error {
	chefID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.AddressQuery
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, models.ErrInvalidPincode.Error())
	}

	result, err := h.validator.Validate(c.Request().Context(), chefID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, result)
}

// UpdateDeliveryProfile handles PUT /api/admin/chefs/:id/delivery.
func (h *Handler) UpdateDeliveryProfile(c echo.Context) error {
	chefID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateDeliveryProfileRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	chef, err := h.svc.UpdateDeliveryProfile(c.Request().Context(), chefID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, chef)
}
