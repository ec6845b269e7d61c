package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	handlers "github.com/jithinio/brillo-sub004/internal/adapter/handler/http"
	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider/polar"
	"github.com/jithinio/brillo-sub004/internal/middleware/auth"
	"github.com/jithinio/brillo-sub004/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dependencies are the services the HTTP handlers run on
type Dependencies struct {
	Sync     handlers.SyncService
	Webhooks handlers.WebhookService
	// PolarProducts is nil when Polar is not configured
	PolarProducts handlers.ProductLister
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	deps   Dependencies
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()

	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Service.ClientURL},
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

// Echo exposes the router for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	syncHandler := handlers.NewSyncHandler(s.logger, s.deps.Sync)
	stripeWebhookHandler := handlers.NewStripeWebhookHandler(s.logger, s.config.Stripe.WebhookSecret, s.deps.Webhooks)
	polarWebhookHandler := handlers.NewPolarWebhookHandler(s.logger, polar.NewWebhookVerifier(s.config.Polar.WebhookSecret), s.deps.Webhooks)
	debugHandler := handlers.NewDebugHandler(s.logger, s.config.Polar, s.deps.PolarProducts)

	jwtMiddleware := auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.Service.Supabase.JWTSecret,
		Logger: s.logger,
	})
	limiter := s.rateLimiter()

	// Internal sync (called by the web app's server routes)
	s.echo.POST("/subscription/sync", syncHandler.Sync, limiter)

	// User-triggered sync
	s.echo.POST("/stripe/sync", syncHandler.SyncStripe, jwtMiddleware, limiter)
	s.echo.POST("/polar/sync", syncHandler.SyncPolar, jwtMiddleware, limiter)
	s.echo.GET("/subscription/status", syncHandler.GetStatus, jwtMiddleware)

	// Webhooks
	s.echo.POST("/stripe/webhook", stripeWebhookHandler.HandleWebhook)
	s.echo.POST("/polar/webhook", polarWebhookHandler.HandleWebhook)

	// Operator diagnostics
	s.echo.GET("/debug-polar", debugHandler.DebugPolar, jwtMiddleware, auth.RequireAdmin(s.config.Service.AdminUserIDs, s.logger))
}

// rateLimiter limits sync requests per client IP
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	rl := s.config.RateLimit
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rl.Rate),
			Burst:     rl.Burst,
			ExpiresIn: rl.ExpiresIn,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn("Sync rate limit exceeded",
				zap.String("ip", identifier),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many sync requests"})
		},
	})
}
