package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	handlers "github.com/checkoutlabs/paypal-gateway/internal/adapter/handler/http"
	"github.com/checkoutlabs/paypal-gateway/internal/config"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
	"github.com/checkoutlabs/paypal-gateway/internal/infrastructure/database"
	"github.com/checkoutlabs/paypal-gateway/internal/infrastructure/dedupe"
	httpServer "github.com/checkoutlabs/paypal-gateway/internal/infrastructure/http"
	"github.com/checkoutlabs/paypal-gateway/internal/infrastructure/logger"
	"github.com/checkoutlabs/paypal-gateway/internal/infrastructure/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/middleware/auth"
	"github.com/checkoutlabs/paypal-gateway/internal/usecase"
)

const nonceLifetime = 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	markers := newMarkerStore(cfg, zapLogger)

	// One PayPal client per configured mode; webhook deliveries are
	// verified against the credentials of the mode they arrived on.
	clients := make(map[string]*paypal.Client)
	verifiers := make(map[string]*usecase.WebhookVerifier)
	for _, mode := range []string{"sandbox", "live"} {
		mc := cfg.PayPal.ModeConfigFor(mode)
		if mc == nil || mc.ClientID == "" || mc.Secret == "" {
			continue
		}
		client := paypal.NewClient(cfg.PayPal.BaseURL(mode), mc.ClientID, mc.Secret, cfg.PayPal.BNCode, zapLogger)
		clients[mode] = client
		verifiers[mode] = usecase.NewWebhookVerifier(client, repos.Settings, &cfg.PayPal, zapLogger)
	}
	activeClient := clients[cfg.PayPal.Mode]
	if activeClient == nil {
		zapLogger.Fatal("No credentials for active mode", zap.String("mode", cfg.PayPal.Mode))
	}

	// Wire services
	payments := usecase.NewPaymentService(repos.Orders, markers, activeClient, zapLogger)
	resolver := usecase.NewTransactionResolver(repos.Orders, zapLogger)
	dispatcher := usecase.NewWebhookDispatcher(resolver, repos.WebhookEvents, payments, zapLogger)
	checkout := usecase.NewCheckoutService(repos.Orders, payments, activeClient, cfg.Service, cfg.PayPal.Intent, zapLogger)
	subscriptions := usecase.NewSubscriptionService(repos.Subscriptions, repos.Orders, payments, activeClient, zapLogger)
	lifecycle := usecase.NewWebhookLifecycle(activeClient, repos.Settings, paypal.SubscribedEvents, zapLogger)
	nonces := auth.NewNonceManager(cfg.Service.NonceSecret, nonceLifetime)

	srv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Webhook:  handlers.NewWebhookHandler(verifiers, dispatcher, zapLogger),
		Checkout: handlers.NewCheckoutHandler(checkout, nonces, cfg.Service.CheckoutURL, zapLogger),
		Gateway:  handlers.NewGatewayHandler(activeClient, payments, subscriptions, lifecycle, cfg.Service.PublicURL, zapLogger),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}

// newMarkerStore picks Redis when configured and an in-process store
// otherwise. Multi-replica deployments need Redis for the refund markers
// to be shared.
func newMarkerStore(cfg *config.Config, log *zap.Logger) repository.RefundMarkerStore {
	if cfg.Redis.Addr == "" {
		log.Info("No Redis configured, using in-process refund markers")
		return dedupe.NewMemoryMarkerStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return dedupe.NewRedisMarkerStore(client)
}
