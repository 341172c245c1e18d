package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-wellbeing-api/api/swagger"
	"github.com/noah-isme/sma-wellbeing-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-wellbeing-api/internal/middleware"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	"github.com/noah-isme/sma-wellbeing-api/internal/repository"
	"github.com/noah-isme/sma-wellbeing-api/internal/service"
	"github.com/noah-isme/sma-wellbeing-api/pkg/cache"
	"github.com/noah-isme/sma-wellbeing-api/pkg/config"
	"github.com/noah-isme/sma-wellbeing-api/pkg/database"
	"github.com/noah-isme/sma-wellbeing-api/pkg/jobs"
	"github.com/noah-isme/sma-wellbeing-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-wellbeing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-wellbeing-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title SMA Wellbeing API
// @version 1.0.0
// @description Student wellbeing insight reports and school-wide severity overview
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	var cacheClient redis.UniversalClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	cacheRepo := repository.NewCacheRepository(cacheClient)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Severity.CacheTTL, logr, cacheClient != nil)
	validate := validator.New()

	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Leeway:   30 * time.Second,
	})
	accessSvc := service.NewAccessService(repository.NewAccessRepository(db))
	insightSvc := service.NewInsightService(service.InsightServiceParams{
		Signals:   repository.NewWellbeingRepository(db),
		Profiles:  repository.NewStudentRepository(db),
		Access:    accessSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.InsightServiceConfig{
			LookbackDays:     cfg.Insights.LookbackDays,
			HistoryLimit:     cfg.Insights.HistoryLimit,
			FetchTimeout:     cfg.Insights.FetchTimeout,
			MoodHistoryLimit: cfg.Insights.MoodHistoryLimit,
			HelpExcerptLimit: cfg.Insights.HelpExcerptLimit,
		},
	})
	severitySvc := service.NewSeverityService(
		repository.NewSeverityRepository(db),
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.SeverityServiceConfig{CacheTTL: cfg.Severity.CacheTTL, DefaultLimit: cfg.Severity.DefaultLimit},
	)

	warmQueue := jobs.NewQueue("severity-warm", severitySvc.Warm, jobs.QueueConfig{
		Workers:    2,
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
		JobTimeout: 30 * time.Second,
		Logger:     logr,
	})
	warmQueue.Start(ctx)
	defer warmQueue.Stop()
	severitySvc.AttachWarmQueue(warmQueue)

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, cacheClient))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.DefaultOptions(cfg.CORS.AllowedOrigins)))
	r.Use(internalmiddleware.WithResponseMeta())
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenSvc))

	auditRepo := repository.NewAuditRepository(db)
	audit := func(action, resource string) gin.HandlerFunc {
		return internalmiddleware.Audit(auditRepo, logr, action, resource)
	}

	if cfg.Insights.Enabled {
		insightHandler := handler.NewInsightHandler(insightSvc)
		readers := api.Group("")
		readers.Use(internalmiddleware.RequireRoles(
			models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher, models.RoleParent, models.RoleStudent,
		))
		readers.GET("/insights", audit(models.AuditActionInsightView, models.AuditResourceStudentInsight), insightHandler.Report)
		readers.GET("/students/:id/insights", audit(models.AuditActionInsightView, models.AuditResourceStudentInsight), insightHandler.Report)
		readers.GET("/students/:id/insights/export", audit(models.AuditActionInsightExport, models.AuditResourceStudentInsight), insightHandler.Export)
	}

	admin := api.Group("")
	admin.Use(internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	if cfg.Severity.Enabled {
		severityHandler := handler.NewSeverityHandler(severitySvc)
		admin.GET("/wellbeing/severity", audit(models.AuditActionSeverityView, models.AuditResourceSeverity), severityHandler.Overview)
		admin.GET("/wellbeing/severity/export", audit(models.AuditActionSeverityExport, models.AuditResourceSeverity), severityHandler.Export)
		admin.POST("/wellbeing/severity/refresh", audit(models.AuditActionSeverityRefresh, models.AuditResourceSeverity), severityHandler.Refresh)
	}
	admin.GET("/system/metrics", metricsHandler.System)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, client redis.UniversalClient) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
