package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"tradelog/internal/config"
	cronrunner "tradelog/internal/cron"
	"tradelog/internal/handler"
	"tradelog/internal/kv"
	"tradelog/internal/logger"
	"tradelog/internal/migration"
	"tradelog/internal/notify"
	"tradelog/internal/ratelimit"
	"tradelog/internal/repository"
	"tradelog/internal/service"

	_ "tradelog/docs"
)

func main() {
	cfgPath := os.Getenv("TL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TL_ENV_ONLY"); envOnlyRaw != "" {
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

	be, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("store open failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer be.close()

	blobs, err := openBlobs(cfg.Blob)
	if err != nil {
		logger.Fatal("blob store open failed", zap.String("backend", cfg.Blob.Backend), zap.Error(err))
	}

	store := repository.New(kv.Prefixed{Store: be.store, Prefix: cfg.Store.KeyPrefix}, logger, cfg.Store.ConflictRetries)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := migration.NewRunner(store, blobs, logger).Run(ctx)
	if err != nil {
		logger.Warn("migrations not run", zap.Error(err))
	} else {
		logger.Info("migrations done",
			zap.Int("version", report.Version),
			zap.Strings("applied", report.Applied),
			zap.Strings("adopted", report.Adopted),
			zap.Int("failed", len(report.Failed)),
		)
	}

	hub := notify.NewHub(logger)
	notifier := notify.Multi{hub}
	if cfg.Notify.WebhookURL != "" {
		notifier = append(notifier, &notify.WebhookNotifier{
			URL:     cfg.Notify.WebhookURL,
			HTTP:    &http.Client{Timeout: cfg.Notify.WebhookTimeout},
			Timeout: cfg.Notify.WebhookTimeout,
			Logger:  logger,
		})
	}

	svcs := service.New(service.Deps{
		Store:            store,
		Blobs:            blobs,
		Settings:         service.NewStaticSettings(cfg.Journal),
		Notifier:         notifier,
		Logger:           logger,
		ActivityCapacity: cfg.ActivityLog.Capacity,
	})

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		engine.Use(limiter.Middleware("/healthz", "/readyz"))
	}

	healthHandler := &handler.HealthHandler{Backend: cfg.Store.Backend, Ping: be.ping}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)
	tradeHandler := &handler.TradeHandler{Journal: svcs.Journal}
	tradeHandler.Register(engine)
	ruleHandler := &handler.RuleHandler{Rules: svcs.Rules}
	ruleHandler.Register(engine)
	statsHandler := &handler.StatsHandler{
		Journal:      svcs.Journal,
		Achievements: svcs.Achievements,
		Settings:     svcs.Settings,
	}
	statsHandler.Register(engine)
	achievementHandler := &handler.AchievementHandler{Achievements: svcs.Achievements}
	achievementHandler.Register(engine)
	eventsHandler := &handler.EventsHandler{Hub: hub}
	eventsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		retention := cfg.ActivityLog.Retention
		_, err := cronRunner.Add("activity_archive", cfg.Cron.ActivityArchive, func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			n, err := svcs.Progress.ArchiveBefore(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("archived activity entries", zap.Int("count", n))
			}
			return nil
		})
		if err != nil {
			logger.Warn("cron register activity archive failed", zap.Error(err))
		}
	}
	if limiter != nil {
		_, err := cronRunner.Add("rate_limit_sweep", "@every 5m", func(ctx context.Context) error {
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("rate limit clients swept", zap.Int("count", n))
			}
			return nil
		})
		if err != nil {
			logger.Warn("cron register rate limit sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

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
