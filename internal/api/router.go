package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/orderflow/orderflow/internal/api/handler"
	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/api/web"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
	"github.com/orderflow/orderflow/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log     zerolog.Logger
	Auth    ports.AuthService
	Orders  ports.OrderService
	Session middleware.SessionConfig
	// Submissions deduplicates the new-order form. Nil disables the check.
	Submissions ports.SubmissionGuard
	Readiness   map[string]handlers.Pinger
	// Metrics receives the HTTP collectors. Nil means the default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds the Echo instance with the page, API and operational
// routes registered.
func NewRouter(deps Deps) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(metricsMiddleware(deps.Metrics))

	// --- Operational endpoints (no session) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", metricsHandler(deps.Metrics))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(deps.Session)

	// --- JSON API ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	orderHandler := handler.NewOrderHandler(deps.Orders)

	v1 := e.Group("/api/v1", session)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/logout", authHandler.Logout)

	secured := v1.Group("", middleware.RequireUser())
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/orders", orderHandler.List, middleware.RBAC(domain.RoleAdmin))
	secured.POST("/orders", orderHandler.Create)
	secured.GET("/orders/:id", orderHandler.Get)
	secured.PATCH("/orders/:id", orderHandler.Update)
	secured.POST("/orders/:id/advance", orderHandler.Advance)
	secured.DELETE("/orders/:id", orderHandler.Delete)
	secured.GET("/departments/:department/orders", orderHandler.ListDepartment)

	// --- HTML pages ---
	pages := e.Group("", session)
	web.NewHandler(deps.Auth, deps.Orders, deps.Submissions, deps.Log).Register(pages)

	return e, nil
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	if reg == nil {
		return echoprometheus.NewMiddleware("orderflow")
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "orderflow",
		Registerer: reg,
	})
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// ShutdownTimeout bounds graceful shutdown in cmd/server.
const ShutdownTimeout = 10 * time.Second
