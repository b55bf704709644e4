package api

import (
	"net/http"

	"homechef-delivery/internal/api/middleware"
	"homechef-delivery/internal/modules/checkout"
	"homechef-delivery/internal/modules/chefs"
	"homechef-delivery/internal/modules/coupons"
	"homechef-delivery/internal/modules/geocoding"
	"homechef-delivery/internal/modules/orders"
	"homechef-delivery/internal/modules/users"
	"homechef-delivery/internal/modules/wallet"

	"github.com/labstack/echo/v4"
)

// Handlers bundles the module handlers the router mounts.
type Handlers struct {
	Geocoding *geocoding.Handler
	Chefs     *chefs.Handler
	Coupons   *coupons.Handler
	Users     *users.Handler
	Wallet    *wallet.Handler
	Orders    *orders.Handler
	Checkout  *checkout.Handler
}

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(e *echo.Echo, jwtSecret string, h Handlers) {
	authMiddleware := middleware.JWTMAuth(jwtSecret)
	// Guest checkout: a token is used when sent but not required.
	optionalAuth := middleware.OptionalJWTAuth(jwtSecret)
	adminRequired := middleware.AdminRequired()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// --- Address lookup ---
	api.POST("/geocode-full-address", h.Geocoding.GeocodeFullAddress)
	api.POST("/validate-pincode", h.Geocoding.ValidatePincode)

	// --- Chefs ---
	api.GET("/chefs/:id", h.Chefs.GetChef)
	api.POST("/chefs/:id/validate-address", h.Chefs.ValidateAddress)

	// --- Coupons ---
	api.POST("/coupons/verify", h.Coupons.Verify)

	// --- Signed-in customer ---
	userGroup := api.Group("/user", authMiddleware)
	{
		userGroup.GET("/profile", h.Users.GetProfile)
		userGroup.GET("/wallet", h.Wallet.GetWallet)
		userGroup.POST("/check-bonus-eligibility", h.Wallet.CheckBonusEligibility)
	}

	// --- Orders ---
	api.POST("/orders", h.Orders.CreateOrder, optionalAuth)
	orderGroup := api.Group("/orders", authMiddleware)
	{
		orderGroup.GET("", h.Orders.ListMyOrders)
		orderGroup.GET("/:id", h.Orders.GetOrderDetails)
		orderGroup.GET("/:id/payment-qr", h.Orders.GetPaymentQR)
	}

	// --- Checkout sessions ---
	checkoutGroup := api.Group("/checkout/sessions", optionalAuth)
	{
		checkoutGroup.POST("", h.Checkout.Start)
		checkoutGroup.GET("/:id", h.Checkout.Get)
		checkoutGroup.DELETE("/:id", h.Checkout.Cancel)
		checkoutGroup.PUT("/:id/cart", h.Checkout.UpdateCart)
		checkoutGroup.PUT("/:id/address", h.Checkout.UpdateAddress)
		checkoutGroup.POST("/:id/confirm", h.Checkout.ConfirmAddress)
		checkoutGroup.POST("/:id/coupon", h.Checkout.ApplyCoupon)
		checkoutGroup.DELETE("/:id/coupon", h.Checkout.RemoveCoupon)
		checkoutGroup.PUT("/:id/wallet", h.Checkout.SetUseWallet)
		checkoutGroup.PUT("/:id/bonus", h.Checkout.SetUseBonus)
		checkoutGroup.POST("/:id/submit", h.Checkout.Submit)
	}

	// --- Admin ---
	adminGroup := api.Group("/admin", authMiddleware, adminRequired)
	{
		adminGroup.PUT("/chefs/:id/delivery", h.Chefs.UpdateDeliveryProfile)
	}
}
