package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salespulse/internal/charts"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/license"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/services"
	handlers "salespulse/internal/transport/http"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(BuildTime))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders

	metrics      *infrastructure.BusinessMetrics
	errorHandler *errors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	LicenseManager *license.Manager
	License        *services.LicenseService
	Reports        *services.ReportService
	Health         *services.HealthService
}

// NewApplication loads the configuration and the global logger, then wires
// the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		metrics:       metrics,
		errorHandler:  errors.NewErrorHandler(logger, false),
	}

	if err := a.initializeServices(); err != nil {
		return nil, err
	}
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices builds the license gate and the report pipeline
func (a *Application) initializeServices() error {
	registry := license.NewRegistry(a.Config.License.RegistryURL, a.Config.License.Timeout, a.Logger)
	store := license.NewStateStore(a.Paths.LicenseFile, a.Logger)
	manager := license.NewManager(registry, store, a.Logger)

	rules, err := loadRules(a.Config.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	cache, err := dataprocessing.NewLRUStore(a.Config.Cache.MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to create dataset cache: %w", err)
	}
	memo := dataprocessing.NewMemo(dataprocessing.NewLoader(a.Logger), cache, a.Logger)
	processor := dataprocessing.NewProcessor(rules, a.Logger)

	var renderer charts.Renderer
	if a.Config.Charts.Enabled {
		renderer = charts.NewChromeRenderer(a.Config.Charts.ChromePath, a.Config.Charts.RenderTimeout, a.Logger)
	}
	summaryExporter := exporter.NewSummaryExporter(renderer, a.Logger)

	a.Services = &ServiceContainer{
		LicenseManager: manager,
		License:        services.NewLicenseService(manager, a.metrics, a.Logger),
		Reports:        services.NewReportService(memo, processor, summaryExporter, a.metrics, a.Logger),
		Health:         services.NewHealthService(config.AppVersion, a.Paths.OutputDir, manager),
	}
	return nil
}

func loadRules(path string) (*dataprocessing.RuleSet, error) {
	if path == "" {
		return dataprocessing.DefaultRuleSet(), nil
	}
	rules, err := config.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return dataprocessing.NewRuleSet(rules)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errors.RecoveryMiddleware(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	validator := customMiddleware.NewValidator()
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	licenseHandler := handlers.NewLicenseHandler(a.Services.License, validator, a.errorHandler, a.Logger)
	datasetHandler := handlers.NewDatasetHandler(a.Services.Reports, validator, a.errorHandler, a.Logger)

	r.Get("/healthz", healthHandler.HealthCheck)
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.errorHandler,
				a.Logger,
			).Handler)
		}

		r.Get("/version", healthHandler.Version)
		r.Mount("/license", licenseHandler.Routes())

		// Reports need a valid license on every request
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.NewLicenseGate(a.Services.License, a.errorHandler, a.Logger).Handler)
			r.Mount("/datasets", datasetHandler.Routes(a.Config.Server.MaxUploadBytes))
		})
	})

	a.Router = r
}

// getCORSConfig builds the CORS policy from the security settings
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Failed-Figures",
			"X-Request-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A server failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.Bool("charts", a.Config.Charts.Enabled))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	health := a.Services.Health.HealthCheck(ctx)
	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("health", health.Status),
		slog.String("license", health.Services["license"].Status))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
