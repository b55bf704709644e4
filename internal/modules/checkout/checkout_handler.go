package checkout

import (
	"context"
	"net/http"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
)

// FlowInterface is the checkout surface the HTTP layer drives.
type FlowInterface interface {
	Start(ctx context.Context, callerID string) (*Session, error)
	Get(ctx context.Context, id, callerID string) (*Session, error)
	Cancel(ctx context.Context, id, callerID string) error
	UpdateCart(ctx context.Context, id, callerID string, cart Cart) (*Session, error)
	UpdateAddress(ctx context.Context, id, callerID string, addr models.AddressQuery) (*Session, error)
	ConfirmAddress(ctx context.Context, id, callerID string) (*Session, error)
	ApplyCoupon(ctx context.Context, id, callerID, code string) (*Session, error)
	RemoveCoupon(ctx context.Context, id, callerID string) (*Session, error)
	SetUseWallet(ctx context.Context, id, callerID string, use bool) (*Session, error)
	SetUseBonus(ctx context.Context, id, callerID string, use bool) (*Session, error)
	Submit(ctx context.Context, id, callerID string, req SubmitRequest) (*Session, error)
}

type Handler struct {
	flow FlowInterface
}

func NewHandler(flow FlowInterface) *Handler {
	return &Handler{flow: flow}
}

type cartRequest struct {
	ChefID int64              `json:"chefId" validate:"required,gt=0"`
	Items  []models.OrderItem `json:"items" validate:"dive"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type toggleRequest struct {
	Use bool `json:"use"`
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *Handler) respond(c echo.Context, s *Session, err error) error {
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, s)
}

// Start handles POST /api/checkout/sessions.
func (h *Handler) Start(c echo.Context) error {
	s, err := h.flow.Start(c.Request().Context(), utils.OptionalUserID(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, s)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.flow.Get(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c))
	return h.respond(c, s, err)
}

// Cancel handles DELETE /api/checkout/sessions/:id.
func (h *Handler) Cancel(c echo.Context) error {
	if err := h.flow.Cancel(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c)); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateCart(c echo.Context) error {
	var req cartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.UpdateCart(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c),
		Cart{ChefID: req.ChefID, Items: req.Items})
	return h.respond(c, s, err)
}

// UpdateAddress handles PUT /api/checkout/sessions/:id/address. Clients
// debounce keystrokes before calling it.
func (h *Handler) UpdateAddress(c echo.Context) error {
	var req models.AddressQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.UpdateAddress(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c), req)
	return h.respond(c, s, err)
}

func (h *Handler) ConfirmAddress(c echo.Context) error {
	s, err := h.flow.ConfirmAddress(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c))
	return h.respond(c, s, err)
}

func (h *Handler) ApplyCoupon(c echo.Context) error {
	var req couponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.ApplyCoupon(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c), req.Code)
	return h.respond(c, s, err)
}

func (h *Handler) RemoveCoupon(c echo.Context) error {
	s, err := h.flow.RemoveCoupon(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c))
	return h.respond(c, s, err)
}

func (h *Handler) SetUseWallet(c echo.Context) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.SetUseWallet(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c), req.Use)
	return h.respond(c, s, err)
}

func (h *Handler) SetUseBonus(c echo.Context) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.SetUseBonus(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c), req.Use)
	return h.respond(c, s, err)
}

// Submit handles POST /api/checkout/sessions/:id/submit. Login and reschedule
// rejections answer 409 with the flags the client acts on.
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.flow.Submit(c.Request().Context(), c.Param("id"), utils.OptionalUserID(c), req)
	return h.respond(c, s, err)
}
