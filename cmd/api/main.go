package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homechef-delivery/internal/api"
	"homechef-delivery/internal/api/middleware"
	"homechef-delivery/internal/config"
	"homechef-delivery/internal/database"
	"homechef-delivery/internal/modules/checkout"
	"homechef-delivery/internal/modules/chefs"
	"homechef-delivery/internal/modules/coupons"
	"homechef-delivery/internal/modules/geocoding"
	"homechef-delivery/internal/modules/orders"
	"homechef-delivery/internal/modules/users"
	"homechef-delivery/internal/modules/wallet"
	"homechef-delivery/pkg/logger"
	"homechef-delivery/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// 2. --- Infrastructure ---
	ctx := context.Background()
	dbPool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Unable to connect to the database", zap.Error(err))
	}
	defer dbPool.Close()
	zlog.Info("Successfully connected to the database")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Fatal("Unable to reach redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	var publisher orders.EventPublisher = orders.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.OrderTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
		defer writer.Close()
		publisher = orders.NewKafkaPublisher(writer)
	} else {
		zlog.Warn("No kafka brokers configured, order events are not published")
	}

	// 3. --- Dependency Injection ---
	// --- Geocoding ---
	provider := geocoding.NewCachedProvider(geocoding.NewGoogleProvider(cfg.Geocoding), rdb, cfg.Redis.GeocodeTTL, zlog)
	geocodingService := geocoding.NewService(provider, cfg.Geocoding.Timeout, zlog)
	geocodingHandler := geocoding.NewHandler(geocodingService)

	// --- Chefs ---
	chefRepo := chefs.NewRepository(dbPool)
	chefService := chefs.NewService(chefRepo, cfg.ChefLookupTimeout)
	zoneValidator := chefs.NewZoneValidator(chefService, geocodingService, zlog)
	chefHandler := chefs.NewHandler(chefService, zoneValidator)

	// --- Users & wallet ---
	userRepo := users.NewRepository(dbPool)
	userService := users.NewService(userRepo, cfg.JWTSecret)
	userHandler := users.NewHandler(userService)

	walletPolicy := wallet.Policy{
		WalletMaxUsagePerOrder: cfg.Checkout.WalletMaxUsagePerOrder,
		WalletMinOrderAmount:   cfg.Checkout.WalletMinOrderAmount,
		BonusMinOrderAmount:    cfg.Checkout.BonusMinOrderAmount,
	}
	walletService := wallet.NewService(userRepo, walletPolicy)
	walletHandler := wallet.NewHandler(walletService)

	// --- Coupons ---
	couponRepo := coupons.NewRepository(dbPool)
	couponService := coupons.NewService(couponRepo)
	couponHandler := coupons.NewHandler(couponService)

	// --- Orders ---
	slots := orders.SlotPolicy{
		Category:   cfg.Checkout.RotiCategory,
		CutoffHour: cfg.Checkout.RotiCutoffHour,
		Location:   cfg.Checkout.Location(),
	}
	paymentQR := orders.PaymentQR{VPA: cfg.Payment.UPIVPA, PayeeName: cfg.Payment.PayeeName}
	orderService := orders.NewService(orders.Dependencies{
		Repo:         orders.NewRepository(dbPool),
		Chefs:        chefService,
		Accounts:     userService,
		AccountStore: userRepo,
		Coupons:      couponService,
		CouponStore:  couponRepo,
		RunInTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return database.WithTx(ctx, dbPool, fn)
		},
		Publisher: publisher,
		QR:        paymentQR,
		Policy: orders.Policy{
			Wallet:              walletPolicy,
			ReferralReward:      cfg.Checkout.ReferralReward,
			ReferralSignupBonus: cfg.Checkout.ReferralSignupBonus,
			Slots:               slots,
		},
		Logger: zlog.Named("orders"),
	})
	orderHandler := orders.NewHandler(orderService)

	// --- Checkout ---
	flow := &checkout.Flow{
		Store:    checkout.NewRedisStore(rdb, cfg.Redis.SessionTTL),
		Zones:    zoneValidator,
		Chefs:    chefService,
		Coupons:  couponService,
		Bonus:    walletService,
		Wallet:   walletService,
		Accounts: userService,
		Slots:    slots,
		Orders:   orderService,
		OnPlaced: func(_ context.Context, orderID int64, amount float64) {
			zlog.Info("awaiting payment",
				zap.Int64("orderID", orderID),
				zap.Float64("amount", amount),
				zap.String("upi", paymentQR.URI(orderID, amount)))
		},
		Rules: checkout.WalletRules{
			MaxUsagePerOrder: walletPolicy.WalletMaxUsagePerOrder,
			MinOrderAmount:   walletPolicy.WalletMinOrderAmount,
		},
		Logger: zlog.Named("checkout"),
	}
	checkoutHandler := checkout.NewHandler(flow)

	// 4. --- HTTP server ---
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.GetValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zlog))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRoutes(e, cfg.JWTSecret, api.Handlers{
		Geocoding: geocodingHandler,
		Chefs:     chefHandler,
		Coupons:   couponHandler,
		Users:     userHandler,
		Wallet:    walletHandler,
		Orders:    orderHandler,
		Checkout:  checkoutHandler,
	})

	// 5. --- Start server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Shutting down the server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exiting")
}
