package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvloznov/statement-pdf/internal/api"
	"github.com/dvloznov/statement-pdf/internal/api/handlers"
	"github.com/dvloznov/statement-pdf/internal/audit"
	"github.com/dvloznov/statement-pdf/internal/config"
	"github.com/dvloznov/statement-pdf/internal/delivery"
	"github.com/dvloznov/statement-pdf/internal/jobs"
	"github.com/dvloznov/statement-pdf/internal/jobs/inmemory"
	"github.com/dvloznov/statement-pdf/internal/logger"
	"github.com/dvloznov/statement-pdf/internal/metrics"
	"github.com/dvloznov/statement-pdf/internal/render"
	"github.com/dvloznov/statement-pdf/internal/statement"
	"github.com/dvloznov/statement-pdf/internal/store"
	"github.com/dvloznov/statement-pdf/internal/worker"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", "", "TOML config file (or set STATEMENT_CONFIG env)")
		port       = flag.Int("port", 0, "HTTP server port (overrides config and PORT env)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log, err := logger.NewWithConfig(cfg.Log.Level, logger.Format(cfg.Log.Format), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	renderer, err := render.NewFPDF(cfg.RenderConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create PDF renderer")
	}

	files, closeFiles, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open output store")
	}
	defer closeFiles.Close()

	recorder, closeAudit, err := openAudit(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open audit log")
	}
	defer closeAudit.Close()

	builder := statement.NewBuilder(cfg.StatementOptions())
	service := statement.NewService(builder, renderer)

	strategy, err := delivery.New(cfg.DeliveryMode(), files, cfg.Server.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure delivery")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	var jobQueue *inmemory.Queue
	var publisher jobs.Publisher
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if cfg.Jobs.Enabled {
		jobQueue = inmemory.NewQueue(cfg.Jobs.BufferSize, cfg.Jobs.Workers, jobStore)
		jobQueue.MaxRetries = cfg.Jobs.MaxRetries
		persist := delivery.NewPersist(files, cfg.Server.PublicBaseURL)
		jobHandler := worker.RenderHandler(service, persist, recorder, builder.Options().Layout, log)

		log.Info().
			Int("workers", cfg.Jobs.Workers).
			Int("max_retries", cfg.Jobs.MaxRetries).
			Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job workers")
		}
		publisher = jobQueue
	}

	h := api.Handlers{
		Statements: handlers.NewStatementsHandler(service, strategy, recorder, cfg.Server.MaxBodyBytes, log),
		Files:      handlers.NewFilesHandler(files, log),
		Audit:      handlers.NewAuditHandler(recorder, log),
		Jobs:       handlers.NewJobsHandler(jobStore, publisher, builder, cfg.Server.MaxBodyBytes, log),
	}
	if cfg.Metrics.Enabled {
		h.Metrics = metrics.Handler()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(h, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("layout", string(builder.Options().Layout)).
			Str("delivery", string(strategy.Mode())).
			Str("storage", cfg.Delivery.Storage).
			Str("font", renderer.Family()).
			Msg("Starting statement server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if jobQueue != nil {
		// Stop job queue and wait for in-flight jobs
		if err := jobQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping job queue")
		}
		cancelWorker()
	}

	log.Info().Msg("Server exited")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, cfg *config.Config) (store.Store, io.Closer, error) {
	switch cfg.Delivery.Storage {
	case config.StorageGCS:
		g, err := store.NewGCS(ctx, cfg.Delivery.Bucket, cfg.Delivery.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	default:
		l, err := store.NewLocal(cfg.Delivery.OutputDir)
		if err != nil {
			return nil, nil, err
		}
		return l, nopCloser{}, nil
	}
}

func openAudit(ctx context.Context, cfg *config.Config) (audit.Recorder, io.Closer, error) {
	switch cfg.Audit.Backend {
	case config.AuditBigQuery:
		b, err := audit.NewBigQuery(ctx, cfg.Audit.ProjectID, cfg.Audit.Dataset, cfg.Audit.Table)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		return audit.NewMemory(cfg.Audit.Capacity), nopCloser{}, nil
	}
}
