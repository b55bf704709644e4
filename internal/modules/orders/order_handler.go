package orders

import (
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// CreateOrder handles POST /api/orders for guests and signed-in customers.
// Rejections the customer can act on come back as 409 with requiresLogin or
// requiresReschedule set.
func (h *Handler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.PlaceOrder(c.Request().Context(), utils.OptionalUserID(c), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, res)
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	orders, total, err := h.svc.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

func (h *Handler) GetOrderDetails(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}
	orderID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.svc.GetOrderDetails(c.Request().Context(), orderID, userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, order)
}

// GetPaymentQR handles GET /api/orders/:id/payment-qr and returns a PNG.
func (h *Handler) GetPaymentQR(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}
	orderID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	png, err := h.svc.PaymentQR(c.Request().Context(), orderID, userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
