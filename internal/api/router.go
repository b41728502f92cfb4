package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/schadensbericht/portal/docs"
	"github.com/schadensbericht/portal/internal/api/handler"
	"github.com/schadensbericht/portal/internal/api/middleware"
	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

// Dependencies carries everything the HTTP layer needs. It is assembled once
// by the serve command.
type Dependencies struct {
	Auth         ports.AuthService
	Provisioning ports.ProvisioningService
	Sessions     ports.SessionManager
	Users        ports.UserLookup
	Exporter     handler.Exporter

	// Probes is pinged by the readiness endpoint, keyed by dependency name.
	Probes map[string]handler.Pinger

	Cookie         handler.SessionCookie
	ExportFilename string
	EnableSwagger  bool
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(deps.Log))

	// --- Health probes and metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if deps.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Session-aware pages ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	registerHandler := handler.NewRegisterHandler(deps.Provisioning)
	homeHandler := handler.NewHomeHandler()
	exportHandler := handler.NewExportHandler(deps.Exporter, deps.ExportFilename, deps.Log)

	pages := e.Group("", middleware.Session(deps.Cookie, deps.Sessions, deps.Users))

	anyone := middleware.Require(domain.AccessAnyone)
	signedIn := middleware.Require(domain.AccessAuthenticated)
	admin := middleware.Require(domain.AccessAdmin)

	pages.GET("/login", authHandler.LoginPage, anyone)
	pages.POST("/login", authHandler.Login, anyone)
	pages.GET("/logout", authHandler.Logout, signedIn)
	pages.POST("/logout", authHandler.Logout, signedIn)
	pages.POST("/password", authHandler.ChangePassword, signedIn)
	pages.GET("/", homeHandler.Home, signedIn)

	pages.GET("/register", registerHandler.Page, admin)
	pages.POST("/register", registerHandler.Register, admin)
	pages.GET("/export", exportHandler.Download, admin)

	return e
}
