package coupons

import (
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// Verify handles POST /api/coupons/verify.
func (h *Handler) Verify(c echo.Context) error {
	var req models.VerifyCouponRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.Verify(c.Request().Context(), req.Code, req.Subtotal, req.DeliveryFee)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, res)
}
