package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/handler"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/parser"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/service"
	"github.com/FACorreiaa/mtr03-counter/pkg/config"
	"github.com/FACorreiaa/mtr03-counter/pkg/cron"
	"github.com/FACorreiaa/mtr03-counter/pkg/metrics"
	"github.com/FACorreiaa/mtr03-counter/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	ExportStorage storage.Storage
	Scheduler     *cron.Scheduler

	// Services
	PDFParser       *parser.PDFParser
	AnalysisService *service.AnalysisService

	// Handlers
	ReportHandler *handler.ReportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if err := deps.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// InitAnalysis wires only what a one-off analysis needs
func InitAnalysis(logger *slog.Logger) *Dependencies {
	deps := &Dependencies{Logger: logger}
	deps.initServices()
	return deps
}

// initStorage initializes the export store and its retention sweep
func (d *Dependencies) initStorage(ctx context.Context) error {
	store, err := storage.New(ctx, &d.Config.Storage)
	if err != nil {
		return err
	}
	d.ExportStorage = store

	d.Scheduler = cron.NewScheduler(store, d.Config.Export.Retention, d.Config.Export.SweepSchedule, d.Logger).
		WithMetrics(d.Metrics)

	d.Logger.Info("export storage initialized",
		slog.String("type", string(d.Config.Storage.Type)),
		slog.Duration("retention", d.Config.Export.Retention),
	)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.PDFParser = parser.NewPDFParser(d.Logger)
	d.AnalysisService = service.NewAnalysisService(d.PDFParser, d.Logger).
		WithMetrics(d.Metrics)
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ReportHandler = handler.NewReportHandler(d.AnalysisService, d.ExportStorage, d.Logger).
		WithMetrics(d.Metrics).
		WithMaxUploadBytes(d.Config.Server.MaxUploadBytes()).
		WithDefaultYear(d.Config.Report.DefaultYear)
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
