package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/handlers/admin"
	"storefront_back_end/internal/handlers/payement"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/metrics"
	"storefront_back_end/internal/repository"
	"storefront_back_end/internal/routes"
	"storefront_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	zlog, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("❌ Logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("❌ Arrêt du serveur", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer conns.Close()

	ordersSession, err := conns.OrdersSession()
	if err != nil {
		return err
	}
	usersSession, err := conns.UsersSession()
	if err != nil {
		return err
	}
	productsSession, err := conns.ProductsSession()
	if err != nil {
		return err
	}

	// Stores + caches Redis
	orderRepo := repository.NewOrderRepository(ordersSession)
	userRepo := repository.NewUserRepository(usersSession)
	userCache := cache.NewUserCache(userRepo, conns.Redis, zlog)
	productCache := cache.NewProductCache(repository.NewProductRepository(productsSession), conns.Redis, zlog)

	collector := metrics.New(prometheus.DefaultRegisterer)

	// Services
	gateway := services.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency, cfg.App.FrontendURL, nil)
	zlog.Info("✅ Stripe initialisé")

	mailer, err := services.NewMailer(cfg.SMTP, cfg.App.FrontendURL, zlog)
	if err != nil {
		return err
	}

	orderIndex := services.NewOrderIndex(conns.Elastic, cfg.Elastic.OrdersIndex)
	completion := services.NewPaymentCompletionService(services.CompletionDeps{
		Payments: gateway,
		Orders:   orderRepo,
		Users:    userCache,
		Mailer:   mailer,
		Index:    orderIndex,
		Metrics:  collector,
		Dedup:    cfg.App.OrderDedupEnabled,
		Log:      zlog,
	})
	signer := services.NewMinioImageSigner(conns.MinIO, cfg.MinIO.Bucket, cfg.MinIO.URLExpiry, zlog)
	queries := services.NewOrderQueryService(orderRepo, productCache, signer, zlog)
	profiles := services.NewProfileService(userRepo, userCache, cfg.App.PasswordMinLength, zlog)

	gin.SetMode(cfg.Server.Mode)
	router := routes.NewRouter(routes.Deps{
		Payments:       payement.NewHandler(gateway, completion, cfg.Stripe.PublishableKey, zlog),
		Orders:         user.NewOrderHandler(queries),
		Profiles:       user.NewProfileHandler(profiles, zlog),
		OrderSearch:    admin.NewOrderSearchHandler(orderIndex, zlog),
		JWTSecret:      cfg.JWT.Secret,
		Redis:          conns.Redis,
		Metrics:        collector,
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("🚀 Serveur lancé", zap.String("port", cfg.Server.Port), zap.Bool("order_dedup", cfg.App.OrderDedupEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("🛑 Arrêt demandé, fin des requêtes en cours")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
