package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/config"
	domainRepo "github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-billing/internal/presentation/http/handler"
	"github.com/sangkips/clinic-billing/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Draft      *handler.DraftHandler
	Payment    *handler.PaymentHandler
	Service    *handler.ServiceHandler
	Preference *handler.PreferenceHandler
	Printer    *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// ActiveDrafts reports the number of open editor sessions for /health.
	ActiveDrafts func() int
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		response.InternalServerError(c, "Internal server error")
		c.Abort()
	}))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.ActiveDrafts != nil {
			body["active_drafts"] = deps.ActiveDrafts()
		}
		c.JSON(200, body)
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-doctor rate limiter
		rateLimiter := middleware.NewDoctorRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(max(deps.Cfg.RateLimit.Duration, 1)),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	registerDraftRoutes(protected, h, deps)
	registerPaymentRoutes(protected, h)
	registerServiceRoutes(protected, h, deps)
	registerPreferenceRoutes(protected, h)
	registerPrinterRoutes(protected, h)
}

func registerDraftRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	drafts := protected.Group("/invoices/drafts")
	{
		drafts.POST("", h.Draft.Open)
		drafts.GET("/:id", h.Draft.Get)
		drafts.PUT("/:id", h.Draft.UpdateDetails)
		drafts.DELETE("/:id", h.Draft.Close)
		drafts.PUT("/:id/patient", h.Draft.SelectPatient)
		drafts.GET("/:id/patients", h.Draft.SearchPatients)
		drafts.GET("/:id/catalog", h.Draft.SearchCatalog)
		drafts.POST("/:id/items", h.Draft.AddItem)
		drafts.PATCH("/:id/items/:itemId", h.Draft.UpdateItem)
		drafts.PUT("/:id/items/:itemId/catalog", h.Draft.SelectService)
		drafts.DELETE("/:id/items/:itemId", h.Draft.RemoveItem)
		drafts.POST("/:id/submit", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Draft.Submit)
		drafts.GET("/:id/preview", h.Draft.Preview)
		drafts.GET("/:id/pdf", h.Draft.PDF)
		drafts.POST("/:id/print", h.Draft.Print)
		drafts.POST("/:id/share", h.Draft.Share)
	}
}

func registerPaymentRoutes(protected *gin.RouterGroup, h *Handlers) {
	payments := protected.Group("/payments")
	{
		payments.GET("", h.Payment.List)
		payments.GET("/summary", h.Payment.Summary)
		payments.GET("/export", h.Payment.Export)
		payments.GET("/:id", h.Payment.Get)
		payments.PUT("/:id", h.Payment.Update)
		payments.DELETE("/:id", h.Payment.Delete)
		payments.GET("/:id/preview", h.Payment.Preview)
		payments.GET("/:id/pdf", h.Payment.PDF)
		payments.POST("/:id/print", h.Payment.Print)
	}
}

func registerServiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	services := protected.Group("/services")
	{
		services.GET("", h.Service.List)
		services.GET("/export", h.Service.Export)
		services.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Service.Create)
		services.PUT("/:id", h.Service.Update)
	}
}

func registerPreferenceRoutes(protected *gin.RouterGroup, h *Handlers) {
	prefs := protected.Group("/preferences")
	{
		prefs.GET("/invoice-defaults", h.Preference.GetInvoiceDefaults)
		prefs.PUT("/invoice-defaults", h.Preference.SaveInvoiceDefaults)
		prefs.GET("/suggestions", h.Preference.GetSuggestions)
		prefs.POST("/suggestions", h.Preference.AddSuggestion)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}
