package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/lusia-studio/grades-api/internal/handler"
	"github.com/lusia-studio/grades-api/internal/middleware"
	"github.com/lusia-studio/grades-api/internal/models"
	"github.com/lusia-studio/grades-api/internal/service"
	"github.com/lusia-studio/grades-api/pkg/config"
	"github.com/lusia-studio/grades-api/pkg/logger"
	corsmiddleware "github.com/lusia-studio/grades-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lusia-studio/grades-api/pkg/middleware/requestid"
)

type routerDeps struct {
	auth    middleware.TokenValidator
	metrics *service.MetricsService
	grades  *handler.GradeHandler
	cfs     *handler.CFSHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	metricsHandler := handler.NewMetricsHandler(deps.metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.auth), middleware.RequireRoles(models.RoleStudent))
	api.GET("/metrics/summary", metricsHandler.Summary)

	g := api.Group("/grades")
	{
		g.GET("/settings/:id", deps.grades.GetSettings)
		g.POST("/settings", deps.grades.CreateSettings)
		g.POST("/settings/past-year", deps.grades.SetupPastYear)
		g.PATCH("/settings/:id/lock", deps.grades.LockSettings)

		g.GET("/enrollments", deps.grades.ListEnrollments)
		g.POST("/enrollments", deps.grades.CreateEnrollment)
		g.PATCH("/enrollments/:id", deps.grades.UpdateEnrollment)

		g.GET("/board/:academicYear", deps.grades.Board)

		g.PATCH("/periods/:id", deps.grades.UpdatePeriod)
		g.PATCH("/periods/:id/override", deps.grades.OverridePeriod)
		g.GET("/periods/:id/elements", deps.grades.ListElements)
		g.PUT("/periods/:id/elements", deps.grades.ReplaceElements)
		g.POST("/periods/:id/elements/copy", deps.grades.CopyElements)
		g.PATCH("/elements/:id", deps.grades.UpdateElement)

		g.GET("/annual/:academicYear", deps.grades.AnnualGrades)
		g.PUT("/annual", deps.grades.UpdateAnnual)

		g.GET("/cfs", deps.cfs.Dashboard)
		g.GET("/cfs/export", deps.cfs.Export)
		g.POST("/cfs/snapshot", deps.cfs.Snapshot)
		g.PATCH("/cfd/:id/exam", deps.cfs.UpdateExam)
		g.PATCH("/cfd/:id/basico-exam", deps.cfs.UpdateBasicoExam)
	}

	return r
}
