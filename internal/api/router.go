package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cabinet-comptable/backoffice/docs"
	"github.com/cabinet-comptable/backoffice/internal/api/handler"
	"github.com/cabinet-comptable/backoffice/internal/api/middleware"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// Deps is everything the HTTP layer needs. Services are built by the caller.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string
	Sessions  ports.SessionStore
	Evaluator *authz.Evaluator

	Auth      ports.AuthService
	Users     ports.UserService
	Clients   ports.ClientService
	Tasks     ports.TaskService
	Invoices  ports.InvoiceService
	Fiscal    ports.FiscalService
	Dashboard ports.DashboardService
	Audit     ports.AuditReader

	// Checks are the readiness checks, keyed by dependency name.
	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It registers Prometheus collectors, so call it once per process.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("backoffice"))

	// --- Health checks, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	eval := d.Evaluator
	requireAuth := middleware.Auth(d.JWTSecret, d.Sessions)
	can := func(a domain.Action, k domain.EntityKind) echo.MiddlewareFunc {
		return middleware.RequirePermission(eval, a, k)
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth, eval)
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signout", authHandler.SignOut, requireAuth)

	v1 := e.Group("/v1", requireAuth)
	v1.GET("/me", authHandler.Me)
	v1.GET("/dashboard", handler.NewDashboardHandler(d.Dashboard).Summary, middleware.RequireMenu(eval, domain.MenuDashboard))

	// --- Clients ---
	clients := handler.NewClientHandler(d.Clients)
	cg := v1.Group("/clients")
	cg.GET("", clients.List, can(domain.ActionView, domain.EntityClient))
	cg.POST("", clients.Create, can(domain.ActionCreate, domain.EntityClient))
	cg.GET("/:id", clients.Get, can(domain.ActionView, domain.EntityClient))
	cg.PATCH("/:id", clients.Update, can(domain.ActionUpdate, domain.EntityClient))
	cg.DELETE("/:id", clients.Delete, can(domain.ActionDelete, domain.EntityClient))
	cg.GET("/:id/credentials", clients.Credentials,
		can(domain.ActionView, domain.EntityClient), middleware.RequireMenu(eval, domain.MenuIdentifiants))

	// --- Users ---
	users := handler.NewUserHandler(d.Users)
	ug := v1.Group("/users")
	ug.GET("", users.List, can(domain.ActionView, domain.EntityUser))
	ug.POST("", users.Create, can(domain.ActionCreate, domain.EntityUser))
	ug.PUT("/:id/active", users.SetActive, can(domain.ActionUpdate, domain.EntityUser))
	ug.PUT("/:id/role", users.ChangeRole, can(domain.ActionUpdate, domain.EntityUser))

	// --- Tasks ---
	tasks := handler.NewTaskHandler(d.Tasks)
	tg := v1.Group("/tasks")
	tg.GET("", tasks.List, can(domain.ActionView, domain.EntityTask))
	tg.POST("", tasks.Create, can(domain.ActionCreate, domain.EntityTask))
	tg.PATCH("/:id", tasks.Update, can(domain.ActionUpdate, domain.EntityTask))
	tg.DELETE("/:id", tasks.Delete, can(domain.ActionDelete, domain.EntityTask))

	// --- Invoices ---
	invoices := handler.NewInvoiceHandler(d.Invoices)
	ig := v1.Group("/invoices")
	ig.GET("", invoices.List, can(domain.ActionView, domain.EntityInvoice))
	ig.POST("", invoices.Create, can(domain.ActionCreate, domain.EntityInvoice))
	ig.PUT("/:id/status", invoices.SetStatus, can(domain.ActionUpdate, domain.EntityInvoice))
	ig.DELETE("/:id", invoices.Delete, can(domain.ActionDelete, domain.EntityInvoice))

	// --- Fiscal calendar ---
	fiscal := handler.NewFiscalHandler(d.Fiscal)
	fg := v1.Group("/fiscal-deadlines")
	fg.GET("", fiscal.List, can(domain.ActionView, domain.EntityDeadline))
	fg.GET("/upcoming", fiscal.Upcoming, can(domain.ActionView, domain.EntityDeadline))
	fg.POST("", fiscal.Create, can(domain.ActionCreate, domain.EntityDeadline))
	fg.DELETE("/:id", fiscal.Delete, can(domain.ActionDelete, domain.EntityDeadline))

	// --- Audit trail ---
	if d.Audit != nil {
		v1.GET("/audit", handler.NewAuditHandler(d.Audit).List, middleware.RequireMenu(eval, domain.MenuSettings))
	}

	return e
}

// requestLogger writes one zerolog line per request.
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
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("user_id", middleware.IdentityFrom(c).UserID).
				Msg("request")
			return nil
		},
	})
}
