package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	_ "github.com/lusia-studio/grades-api/api/swagger"
	"github.com/lusia-studio/grades-api/internal/handler"
	"github.com/lusia-studio/grades-api/internal/repository"
	"github.com/lusia-studio/grades-api/internal/service"
	"github.com/lusia-studio/grades-api/pkg/cache"
	"github.com/lusia-studio/grades-api/pkg/config"
	"github.com/lusia-studio/grades-api/pkg/database"
	"github.com/lusia-studio/grades-api/pkg/export"
	"github.com/lusia-studio/grades-api/pkg/logger"
)

// @title Lusia Grades API
// @version 1.0.0
// @description Grade tracking and CFS calculation for Portuguese basic and secondary education.
// @BasePath /
// @schemes http https
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Grades.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, grades cache disabled", "error", err)
			cfg.Grades.CacheEnabled = false
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		cacheRepo,
		metrics,
		cfg.Grades.CacheTTL,
		logr,
		cfg.Grades.CacheEnabled,
	)
	validate := validator.New()

	settingsRepo := repository.NewGradeSettingsRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	annualRepo := repository.NewAnnualGradeRepository(db)

	gradeSvc := service.NewGradeService(service.GradeStores{
		Settings:    settingsRepo,
		Enrollments: enrollmentRepo,
		Periods:     repository.NewPeriodRepository(db),
		Elements:    repository.NewElementRepository(db),
		Annual:      annualRepo,
	}, cacheSvc, metrics, validate, logr)

	cfsSvc := service.NewCFSService(service.CFSStores{
		Settings:    settingsRepo,
		Enrollments: enrollmentRepo,
		Annual:      annualRepo,
		CFDs:        repository.NewCFDRepository(db),
	}, cacheSvc, metrics, validate, logr, service.CFSConfig{DefaultCohortYear: cfg.Grades.DefaultCohortYear})

	exportSvc := service.NewExportService(cfsSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	r := newRouter(cfg, logr, routerDeps{
		auth:    authSvc,
		metrics: metrics,
		grades:  handler.NewGradeHandler(gradeSvc),
		cfs:     handler.NewCFSHandler(cfsSvc, exportSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
