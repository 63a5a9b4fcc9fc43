// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/handlers"
	"github.com/tasksms/dashboard/app/middleware"
	"github.com/tasksms/dashboard/config"
	"github.com/tasksms/dashboard/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown() error
	GetApp() *fiber.App
}

// Handlers bundles every handler the router mounts
type Handlers struct {
	AdminAuth  handlers.AdminAuthHandlerInterface
	Session    handlers.SessionHandlerInterface
	Country    handlers.CountryHandlerInterface
	Inventory  handlers.InventoryHandlerInterface
	Team       handlers.TeamHandlerInterface
	Allocation handlers.AllocationHandlerInterface
	Message    handlers.MessageHandlerInterface
	Stats      handlers.StatsHandlerInterface
	Monitor    handlers.MonitorHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      *config.ProductionConfig
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, auth *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ServerHeader: cfg.App.Name,
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		cfg:      cfg,
		handlers: h,
		auth:     auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Server.RateLimitMax,
		Expiration: r.cfg.Server.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Public dashboard reads; the browser shows these before any role is picked
	api.Get("/stats", r.handlers.Stats.GetStats)
	api.Get("/countries", r.handlers.Country.ListCountries)
	api.Get("/team", r.handlers.Team.ListMembers)
	api.Get("/inventory", r.handlers.Inventory.ListInventories)
	api.Get("/inventory/:country", r.handlers.Inventory.GetInventory)
	api.Get("/messages", r.handlers.Message.RecentFeed)
	api.Get("/messages/:number", r.handlers.Message.MessagesFor)

	// Delivery pipeline ingress
	api.Post("/ingest/messages", r.handlers.Message.Ingest)

	// Admin authentication with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))
	auth.Get("/admin/captcha", r.handlers.AdminAuth.CaptchaChallenge)
	auth.Post("/admin/login", r.handlers.AdminAuth.Login)
	auth.Post("/admin/refresh", r.handlers.AdminAuth.RefreshToken)

	// Member sessions and role resolution
	session := api.Group("/session")
	session.Post("/select", r.handlers.Session.SelectMember)
	session.Get("/restore", r.handlers.Session.RestoreSession)
	session.Post("/logout", r.handlers.Session.Logout)
	session.Get("/role", r.handlers.Session.ResolveRole)

	// Member view, scoped by the opaque session token
	member := api.Group("/member", r.auth.MemberSession())
	member.Get("/dashboard", r.handlers.Message.MemberDashboard)
	member.Get("/allocations", r.handlers.Allocation.MyAllocations)
	member.Post("/allocations", r.handlers.Allocation.AllocateNumber)
	member.Delete("/allocations", r.handlers.Allocation.DeallocateNumber)
	member.Post("/allocations/toggle", r.handlers.Allocation.ToggleCountry)
	member.Get("/available/:country", r.handlers.Allocation.AvailableInCountry)

	// Admin view, behind JWT authentication
	admin := api.Group("/admin", r.auth.AdminAuthenticate())
	admin.Post("/auth/logout", r.handlers.AdminAuth.Logout)
	admin.Post("/countries", r.handlers.Country.CreateCountry)
	admin.Put("/countries/:uuid", r.handlers.Country.UpdateCountry)
	admin.Delete("/countries/:uuid", r.handlers.Country.DeleteCountry)
	admin.Put("/inventory/:country", r.handlers.Inventory.ReplaceInventory)
	admin.Post("/team", r.handlers.Team.AddMember)
	admin.Delete("/team/:uuid", r.handlers.Team.RemoveMember)
	admin.Put("/stats", r.handlers.Stats.UpdateStats)
	admin.Get("/allocations", r.handlers.Allocation.ListAllocations)
	admin.Post("/allocations", r.handlers.Allocation.AdminAllocateNumber)
	admin.Delete("/allocations", r.handlers.Allocation.AdminDeallocateNumber)
	admin.Post("/allocations/toggle", r.handlers.Allocation.AdminToggleCountry)
	admin.Post("/allocations/release", r.handlers.Allocation.ReleaseNumber)
	admin.Get("/monitor", r.handlers.Monitor.MonitorRows)
	admin.Get("/monitor/export", r.handlers.Monitor.ExportMonitor)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	if r.cfg.Server.EnableCORS {
		r.app.Use(cors.New(cors.Config{
			AllowOrigins: r.cfg.Server.AllowedOrigins,
			AllowMethods: []string{
				"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
			},
			AllowHeaders: []string{
				"Origin",
				"Content-Type",
				"Accept",
				"Authorization",
				"X-Requested-With",
				"X-Request-ID",
				middleware.MemberTokenHeader,
				"Cache-Control",
			},
			ExposeHeaders: []string{
				"X-Request-ID",
			},
			AllowCredentials: true,
			MaxAge:           utils.CORSMaxAge,
		}))
	}

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(middleware.RequestContext())

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// Shutdown gracefully stops the HTTP server
func (r *FiberRouter) Shutdown() error {
	return r.app.Shutdown()
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.App.Version,
			"service":   r.cfg.App.Name,
		},
		Timestamp: utils.UTCNow(),
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: &dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":   c.Path(),
				"method": c.Method(),
			},
		},
		Timestamp: utils.UTCNow(),
		RequestID: requestIDFromLocals(c),
	})
}

// Rate limit response shared by all limiter groups
func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: &dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
		Timestamp: utils.UTCNow(),
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: &dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
		},
		Timestamp: utils.UTCNow(),
		RequestID: requestIDFromLocals(c),
	})
}

func requestIDFromLocals(c fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
