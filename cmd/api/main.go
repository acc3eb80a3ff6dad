package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/config"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	appHTTP "github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/cron"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/gemini"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/logger"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/repository/memory"
	annotationService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/annotation"
	dashboardService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/dashboard"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/service/file"
	rankingService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/ranking"
	workspaceService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App)
	slog.SetDefault(log)

	if err := cfg.ValidateServer(); err != nil {
		slog.Error("Invalid server configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fileStorage *storage.LocalStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			slog.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unsupported storage type", "type", cfg.Storage.Type)
		os.Exit(1)
	}

	metricsManager := metrics.NewManager(metrics.WithRuntimeCollectors())
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.Session.Secret, cfg.Session.TTL)

	// A nil generator keeps every annotation on the local fallback
	var generator annotation.TextGenerator
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
		if err != nil {
			slog.Error("Failed to initialize Gemini client, using local fallback", "error", err)
		} else {
			generator = client
		}
	}

	sessionRepo := memory.NewSessionRepository()
	fileService := file.NewFileService(fileStorage)
	rankingSvc := rankingService.NewRankingService(ranking.DefaultWeights(), time.Now)
	annotationSvc := annotationService.NewAnnotationService(generator, cfg.Gemini.Temperature, metricsManager, time.Now)
	dashboardSvc := dashboardService.NewDashboardService(cfg.Report.PerPage)
	workspaceSvc := workspaceService.NewWorkspaceService(workspaceService.Deps{
		Repository: sessionRepo,
		Ranking:    rankingSvc,
		Annotation: annotationSvc,
		Dashboard:  dashboardSvc,
		Files:      fileService,
		Tokens:     JWTService,
		Hub:        hub,
		Metrics:    metricsManager,
	}, workspaceService.Config{
		Year:         cfg.Report.Year,
		DefaultScore: cfg.Report.DefaultScore,
		SessionTTL:   cfg.Session.TTL,
	})

	scheduler := cron.NewScheduler()
	if err := scheduler.AddJob(cron.NewSessionEvictionJob(workspaceSvc, cfg.Session.SweepInterval)); err != nil {
		slog.Error("Failed to register cron job", "error", err)
		os.Exit(1)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	workspaceHandler := appHTTP.NewWorkspaceHandler(workspaceSvc, appHTTP.UploadLimits{
		MaxBytes: cfg.Upload.MaxBytes,
		MaxFiles: cfg.Upload.MaxFiles,
	})
	eventHandler := appHTTP.NewEventHandler(workspaceSvc, hub)

	router := appHTTP.NewRouter(
		log,
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			FilesDir:       fileStorage.BasePath(),
		},
		JWTService,
		workspaceHandler,
		eventHandler,
		metricsManager.Handler(),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "gemini", generator != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
