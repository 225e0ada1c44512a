package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"topicpulse/internal/client/algolia"
	"topicpulse/internal/config"
	cronrunner "topicpulse/internal/cron"
	"topicpulse/internal/db"
	"topicpulse/internal/handler"
	"topicpulse/internal/langdetect"
	"topicpulse/internal/logger"
	gormrepository "topicpulse/internal/repository/gorm"
	"topicpulse/internal/service"
)

func main() {
	cfgPath := os.Getenv("TP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TP_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	searchHTTP := &http.Client{Timeout: cfg.Search.Timeout}
	searchClient := algolia.NewClient(searchHTTP, cfg.Search.BaseURL)

	ingest := &service.IngestService{
		Repo:         store,
		Search:       searchClient,
		Parser:       gofeed.NewParser(),
		SearchConfig: cfg.Search,
		FeedsConfig:  cfg.Feeds,
		Logger:       logger,
	}
	clean := &service.CleanService{
		Repo:     store,
		Detector: langdetect.New(),
		Config:   cfg.Clean,
		Logger:   logger,
	}
	score := service.NewScoreService(store, cfg.Score, logger)
	aggregate := &service.AggregateService{Repo: store, Logger: logger}
	stages := []service.Stage{ingest, clean, score}
	if cfg.Aggregate.Enabled {
		stages = append(stages, aggregate)
	}
	pipeline := &service.PipelineService{
		Stages: stages,
		Logger: logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode := "run"
	if len(os.Args) > 1 {
		mode = strings.ToLower(strings.TrimSpace(os.Args[1]))
	}

	switch mode {
	case "ingest":
		exitOn(logger, ingest.RunOnce(ctx))
	case "clean":
		exitOn(logger, clean.RunOnce(ctx))
	case "score":
		exitOn(logger, score.RunOnce(ctx))
	case "aggregate":
		exitOn(logger, aggregate.RunOnce(ctx))
	case "run":
		exitOn(logger, pipeline.RunOnce(ctx))
	case "serve":
		serve(ctx, cfg, logger, dbConn, store, pipeline)
	default:
		logger.Error("unknown mode", zap.String("mode", mode))
		logger.Sync()
		os.Exit(2)
	}
}

func exitOn(logger *zap.Logger, err error) {
	if err != nil {
		logger.Error("stage failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// serve runs the read-only metrics API plus the pipeline on a cron schedule.
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger, dbConn *db.DB, store *gormrepository.Store, pipeline *service.PipelineService) {
	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	metricsHandler := &handler.MetricsHandler{Repo: store}
	metricsHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.Pipeline, func(ctx context.Context) {
			if err := pipeline.RunOnce(ctx); err != nil {
				logger.Warn("cron pipeline run failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register pipeline failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()

		// One pass on startup so a fresh deploy has data before the first tick.
		go func() {
			if err := pipeline.RunOnce(ctx); err != nil {
				logger.Warn("initial pipeline run failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
