package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/billingd/backend/internal/application/billing"
	ledgerapp "github.com/billingd/backend/internal/application/ledger"
	reportapp "github.com/billingd/backend/internal/application/report"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/billingd/backend/internal/infrastructure/config"
	"github.com/billingd/backend/internal/infrastructure/logger"
	"github.com/billingd/backend/internal/infrastructure/persistence"
	"github.com/billingd/backend/internal/infrastructure/rendering"
	"github.com/billingd/backend/internal/infrastructure/telemetry"
	"github.com/billingd/backend/internal/interfaces/http/handler"
	"github.com/billingd/backend/internal/interfaces/http/middleware"
	"github.com/billingd/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20 // 1 MiB

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		ServiceName:   cfg.Telemetry.ServiceName,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		Insecure:      !cfg.IsProduction(),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 0)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if tracerProvider.IsEnabled() {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Repositories and transaction scopes
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	reportRepo := persistence.NewGormFinancialReportRepository(db.DB)
	clientDirectory := persistence.NewGormClientDirectory(db.DB)
	projectDirectory := persistence.NewGormProjectDirectory(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)

	// Application services
	clock := shared.SystemClock{}
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, paymentRepo, clientDirectory, projectDirectory, clock)
	paymentService := billingapp.NewPaymentService(billingScope, paymentRepo, clock)
	ledgerService := ledgerapp.NewLedgerService(ledgerScope, accountRepo, transactionRepo)
	reportService := reportapp.NewReportService(reportRepo, clock)

	reportRenderer, err := rendering.NewHTMLRenderer()
	if err != nil {
		log.Fatal("Failed to build report renderer", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(maxBodySize))

	handler.NewSystemHandler(db, cfg.App.Name).RegisterRoutes(engine)

	router.NewRouter(engine).
		Register(
			handler.NewInvoiceHandler(invoiceService),
			handler.NewPaymentHandler(paymentService),
			handler.NewAccountHandler(ledgerService),
			handler.NewTransactionHandler(ledgerService),
			handler.NewReportHandler(reportService, reportRenderer),
		).
		Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTP.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
