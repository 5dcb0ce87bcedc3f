package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tradelink/marketplace/internal/api/handler"
	"github.com/tradelink/marketplace/internal/api/middleware"
	"github.com/tradelink/marketplace/internal/core/ports"
)

// Services bundles what the router needs from the core.
type Services struct {
	Sessions ports.SessionResolver
	Accounts ports.AccountService
	Listings ports.ListingService
	Quotes   ports.QuoteService
	Ratings  ports.RatingService
	Users    ports.UserService
}

// Options tunes the HTTP surface.
type Options struct {
	SecureCookie    bool
	LoginRatePerMin int
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Metrics())

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(svc.Accounts, svc.Users, opts.SecureCookie)
	listingHandler := handler.NewListingHandler(svc.Listings)
	quoteHandler := handler.NewQuoteHandler(svc.Quotes)
	ratingHandler := handler.NewRatingHandler(svc.Ratings)
	userHandler := handler.NewUserHandler(svc.Users)
	session := middleware.Session(svc.Sessions)
	limiter := middleware.NewRateLimiter(opts.LoginRatePerMin)

	api := e.Group("/api")

	// --- Public routes ---
	api.POST("/register", accountHandler.Register, limiter.Middleware())
	api.POST("/login", accountHandler.Login, limiter.Middleware())
	api.GET("/validate", accountHandler.Validate)

	// --- Authenticated routes ---
	api.POST("/logout", accountHandler.Logout, session)
	api.GET("/profile", accountHandler.Profile, session)

	api.GET("/listings", listingHandler.List, session)
	api.POST("/listings", listingHandler.Create, session)

	// Quote transitions are POST only; GET on them answers 405.
	api.GET("/quotes", quoteHandler.List, session)
	api.POST("/quotes", quoteHandler.Submit, session)
	api.GET("/quotes/:id", quoteHandler.Get, session)
	api.POST("/quotes/:id/accept", quoteHandler.Accept, session)
	api.POST("/quotes/:id/reject", quoteHandler.Reject, session)

	api.GET("/users", userHandler.List, session)

	api.GET("/ratings", ratingHandler.List, session)
	api.POST("/ratings", ratingHandler.Submit, session)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(opts.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
