package utils

import (
	"errors"
	"net/http"
	"strconv"

	"homechef-delivery/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoggerKey is the echo context key under which the request-scoped logger lives.
const LoggerKey = "logger"

// Logger returns the request-scoped zap logger, or a no-op logger outside a request.
func Logger(c echo.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

func RespondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

func RespondWithError(c echo.Context, code int, message string) error {
	return c.JSON(code, models.ErrorResponse{Message: message})
}

// HandleServiceError maps service errors to HTTP replies. Business rejections keep
// their message; anything unexpected is logged and answered generically.
func HandleServiceError(c echo.Context, err error) error {
	var rejection *models.OrderRejection
	if errors.As(err, &rejection) {
		return c.JSON(http.StatusConflict, rejection)
	}

	// Wrapped infrastructure errors answer with the sentinel's own text.
	for _, m := range []struct {
		sentinel error
		status   int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrSessionNotFound, http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrSessionBusy, http.StatusConflict},
		{models.ErrBalanceChanged, http.StatusConflict},
		{models.ErrAlreadyPaid, http.StatusConflict},
		{models.ErrValidationUnavailable, http.StatusServiceUnavailable},
		{models.ErrGeocodeFailed, http.StatusUnprocessableEntity},
	} {
		if errors.Is(err, m.sentinel) {
			return RespondWithError(c, m.status, m.sentinel.Error())
		}
	}

	switch {
	case errors.Is(err, models.ErrInvalidPincode),
		errors.Is(err, models.ErrMissingArea),
		errors.Is(err, models.ErrInvalidCoupon),
		errors.Is(err, models.ErrCartEmpty),
		errors.Is(err, models.ErrBelowMinimumOrder),
		errors.Is(err, models.ErrInvalidPhone),
		errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrChefInactive),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAddressNotValidated),
		errors.Is(err, models.ErrOutOfZone):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	Logger(c).Error("unhandled service error", zap.Error(err))
	return RespondWithError(c, http.StatusInternalServerError, "Something went wrong, please try again")
}

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
