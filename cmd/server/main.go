package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/shop-orders/internal/app"
	"github.com/linemk/shop-orders/internal/app/handlers"
	"github.com/linemk/shop-orders/internal/config"
	"github.com/linemk/shop-orders/internal/gateway"
	"github.com/linemk/shop-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shop-orders/internal/lib/logger"
	"github.com/linemk/shop-orders/internal/lib/logger/handlers/urllog"
	"github.com/linemk/shop-orders/internal/notify"
	"github.com/linemk/shop-orders/internal/service"
	"github.com/linemk/shop-orders/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключениями к БД и Redis
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()
	defer application.Redis.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	claimRepo := storage.NewClaimRepository(application.DB)

	// платёжный шлюз и рассыльщик уведомлений создаются явно и передаются через DI
	paymentGateway := gateway.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	broadcaster := notify.NewRedisBroadcaster(application.Redis)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	cartService := service.NewCartSnapshotService(application.Logger, cartRepo)
	orderService := service.NewOrderService(application.Logger, orderRepo, cartService, paymentGateway, broadcaster, cfg.Razorpay.Currency)
	adminOrderService := service.NewAdminOrderService(application.Logger, orderRepo, claimRepo, broadcaster)

	// эндпоинты для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))
	router.Post("/api/admin/auth", handlers.AdminAuthHandler(application.Logger, authService))

	// пользовательский API заказов
	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Post("/api/orders/verify-payment", handlers.VerifyPaymentHandler(application.Logger, orderService))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{orderID}", handlers.GetOrderHandler(application.Logger, orderService))
	})

	// административный API заказов
	router.Group(func(r chi.Router) {
		adminMW := jwtmiddleware.NewAdminJWTMiddleware()
		r.Use(adminMW)
		r.Get("/api/admin/orders", handlers.AdminListOrdersHandler(application.Logger, adminOrderService))
		r.Get("/api/admin/orders/{orderID}", handlers.AdminGetOrderHandler(application.Logger, adminOrderService))
		r.Post("/api/admin/orders/{orderID}/claim", handlers.ClaimOrderHandler(application.Logger, adminOrderService))
		r.Post("/api/admin/orders/{orderID}/release", handlers.ReleaseOrderHandler(application.Logger, adminOrderService))
		r.Put("/api/admin/orders/{orderID}/status", handlers.UpdateStatusHandler(application.Logger, adminOrderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
