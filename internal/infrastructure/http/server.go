package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/checkoutlabs/paypal-gateway/internal/adapter/handler/http"
	"github.com/checkoutlabs/paypal-gateway/internal/config"
)

// Handlers bundles the wired HTTP handlers for route registration.
type Handlers struct {
	Webhook  *handlers.WebhookHandler
	Checkout *handlers.CheckoutHandler
	Gateway  *handlers.GatewayHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
}

func NewServer(cfg *config.Config, logger *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.CheckoutURL, cfg.Service.SuccessURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		handlers: h,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Webhook listener; one route per mode keeps sandbox and live
	// deliveries verified against their own credentials.
	s.echo.POST("/webhook/:mode", s.handlers.Webhook.HandleWebhook)

	api := s.echo.Group("/api/v1")

	checkout := api.Group("/checkout")
	checkout.POST("/nonce", s.handlers.Checkout.CreateNonce)
	checkout.POST("", s.handlers.Checkout.ProcessPayment)
	checkout.POST("/order", s.handlers.Checkout.CreateOrder)
	checkout.GET("/return", s.handlers.Checkout.HandleReturn)
	checkout.POST("/agreement-token", s.handlers.Checkout.CreateAgreementToken)

	paypal := api.Group("/paypal")
	paypal.GET("/status", s.handlers.Gateway.Status)
	paypal.POST("/webhooks/:mode", s.handlers.Gateway.RegisterWebhook)
	paypal.DELETE("/webhooks/:mode", s.handlers.Gateway.UnregisterWebhook)

	orders := api.Group("/orders")
	orders.POST("/:id/refund", s.handlers.Gateway.Refund)
	orders.POST("/:id/agreement", s.handlers.Gateway.FinalizeAgreement)

	subscriptions := api.Group("/subscriptions")
	subscriptions.POST("/:id/renew", s.handlers.Gateway.Renew)
	subscriptions.POST("/:id/payment-method", s.handlers.Gateway.ChangePaymentMethod)
}
