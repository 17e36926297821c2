package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/ports"

	_ "github.com/99minutos/auth-service/docs"
)

// bodyLimit caps JSON request bodies.
const bodyLimit = "4K"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	AuthService ports.AuthService
	Codec       ports.SessionCodec
	// Revoker may be nil for purely stateless sessions.
	Revoker ports.SessionRevoker
	Cookie  middleware.CookieOptions
	// Checks are the readiness checks, keyed by dependency name.
	Checks      map[string]handler.Check
	CORSOrigins []string
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if len(d.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
		}))
	}
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Dependencies ---
	sessions := middleware.NewSessions(d.Codec, d.Revoker, d.Cookie, d.Log)
	authHandler := handler.NewAuthHandler(d.AuthService, sessions, d.Log)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout, sessions.Optional())
	e.POST("/update_password", authHandler.UpdatePassword, sessions.Require())

	// --- Health checks and tooling (no session required) ---
	healthHandler := handler.NewHealthHandler(d.Checks)
	e.GET("/ping", handler.Ping)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
