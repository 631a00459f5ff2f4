package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/config"
	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	domainRepo "github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/internal/infrastructure/backend"
	"github.com/sangkips/clinic-billing/internal/infrastructure/database"
	"github.com/sangkips/clinic-billing/internal/infrastructure/repository"
	"github.com/sangkips/clinic-billing/internal/presentation/http/handler"
	"github.com/sangkips/clinic-billing/internal/presentation/http/routes"
	"github.com/sangkips/clinic-billing/pkg/email"
	"github.com/sangkips/clinic-billing/pkg/logger"
	"github.com/sangkips/clinic-billing/pkg/printer"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	mode, err := enum.ParseTotalsMode(cfg.Billing.TotalsMode)
	if err != nil {
		zl.Fatal("invalid totals mode", zap.String("mode", cfg.Billing.TotalsMode), zap.Error(err))
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	preferenceRepo := repository.NewPreferenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	practice := backend.NewClient(cfg.Backend, zl)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
		Width:   cfg.Printer.Width,
	})
	if err != nil {
		zl.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}

	defaults := entity.InvoiceDefaults{
		Currency: cfg.Billing.DefaultCurrency,
		Method:   cfg.Billing.DefaultMethod,
	}

	// Initialize services
	preferenceService := service.NewPreferenceService(preferenceRepo, defaults, zl.Named("preferences"))
	editorService := service.NewEditorService(practice, preferenceService, billing.NewCalculator(mode), service.EditorConfig{
		Defaults: defaults,
		TTL:      cfg.Billing.DraftTTL,
	}, zl.Named("editor"))
	editorService.OnSubmit(rememberServiceNames(preferenceService, zl))
	paymentService := service.NewPaymentService(practice, zl.Named("payments"))
	catalogService := service.NewCatalogService(practice, zl.Named("catalog"))
	printerService := service.NewPrinterService(thermalPrinter, service.PrinterSettings{
		Type:  cfg.Printer.Type,
		Width: cfg.Printer.Width,
		Header: entity.ReceiptHeader{
			ClinicName: cfg.Billing.ClinicName,
			Address:    cfg.Billing.ClinicAddress,
			Phone:      cfg.Billing.ClinicPhone,
		},
	}, zl.Named("printer"))
	renderService := service.NewRenderService(editorService, paymentService, printerService, emailService, cfg.Billing.ClinicName, zl.Named("render"))

	// Background maintenance stops with the server.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	editorService.StartCleanup(ctx, time.Minute)
	go purgeIdempotencyKeys(ctx, idempotencyRepo, time.Hour, zl)

	// Initialize handlers
	handlers := &routes.Handlers{
		Draft:      handler.NewDraftHandler(editorService, renderService),
		Payment:    handler.NewPaymentHandler(paymentService, renderService),
		Service:    handler.NewServiceHandler(catalogService),
		Preference: handler.NewPreferenceHandler(preferenceService),
		Printer:    handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          zl.Named("http"),
		ActiveDrafts:    editorService.Active,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.Stringer("totals_mode", mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	zl.Info("server exited")
}

// rememberServiceNames stores the free-text service names of a submitted
// invoice as suggestions for the next one.
func rememberServiceNames(prefs *service.PreferenceService, zl *zap.Logger) service.SubmitHook {
	return func(ctx context.Context, sess entity.DoctorSession, draft *entity.InvoiceDraft, _ *entity.Payment) {
		for _, item := range draft.LineItems {
			if item.CatalogRef != nil || item.Name == "" {
				continue
			}
			if _, err := prefs.AddSuggestion(ctx, sess.DoctorID, item.Name); err != nil {
				zl.Warn("failed to store suggestion", zap.String("doctor_id", sess.DoctorID), zap.Error(err))
				return
			}
		}
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, every time.Duration, zl *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				zl.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}
