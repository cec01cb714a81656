package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/api/handler"
	"github.com/kp9community/portal/internal/api/middleware"
	"github.com/kp9community/portal/internal/core/ports"
)

// AccessGuard resolves sessions and checks privileges. *service.Guard
// satisfies it.
type AccessGuard interface {
	middleware.PrivilegeChecker
	handler.SessionResolver
}

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth         ports.AuthService
	Community    ports.CommunityService
	Guard        AccessGuard
	Dependencies []handler.Pinger

	SessionTTL   time.Duration
	CookieSecure bool
	StrictRoles  bool

	// Registry receives the HTTP request metrics and backs /metrics. Nil
	// uses the prometheus default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(d.StrictRoles)
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "community",
		Registerer: registerer,
	}))
	e.Use(middleware.Session(d.Auth, d.Log))

	authHandler := handler.NewAuthHandler(d.Auth, d.Guard, handler.CookieOptions{Secure: d.CookieSecure, TTL: d.SessionTTL})
	userHandler := handler.NewUserHandler(d.Community)
	announcementHandler := handler.NewAnnouncementHandler(d.Community)
	logHandler := handler.NewLogHandler(d.Community)
	dashboardHandler := handler.NewDashboardHandler(d.Community)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, middleware.RequireSession())

	// --- Portal routes; the service layer enforces per-operation access.
	// Privileged routes are also checked before the body is read, so a
	// caller without rights gets 401/403 rather than a validation error.
	privileged := middleware.RequirePrivileged(d.Guard)

	v1 := e.Group("/v1")
	v1.GET("/dashboard", dashboardHandler.Get)
	v1.GET("/users", userHandler.List, privileged)
	v1.POST("/users", userHandler.Create, privileged)
	v1.GET("/users/:username", userHandler.Get)
	v1.PUT("/users/:username", userHandler.Update, privileged)
	v1.DELETE("/users/:username", userHandler.Delete, privileged)
	v1.GET("/roles", userHandler.Roles, privileged)
	v1.GET("/announcements", announcementHandler.List)
	v1.POST("/announcements", announcementHandler.Create, privileged)
	v1.DELETE("/announcements", announcementHandler.Delete, privileged)
	v1.GET("/logs", logHandler.List, privileged)

	// --- Health checks and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Dependencies...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
