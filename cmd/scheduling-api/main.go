package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/oriel-mfg/factory-ops-api/api/swagger"
	"github.com/oriel-mfg/factory-ops-api/internal/handler"
	"github.com/oriel-mfg/factory-ops-api/internal/middleware"
	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/repository"
	"github.com/oriel-mfg/factory-ops-api/internal/service"
	"github.com/oriel-mfg/factory-ops-api/pkg/cache"
	"github.com/oriel-mfg/factory-ops-api/pkg/config"
	"github.com/oriel-mfg/factory-ops-api/pkg/database"
	"github.com/oriel-mfg/factory-ops-api/pkg/logger"
	corsmiddleware "github.com/oriel-mfg/factory-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/oriel-mfg/factory-ops-api/pkg/middleware/requestid"
)

// @title Factory Ops Scheduling API
// @version 0.1.0
// @description Machine assignment & scheduling for the factory operations console
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var notifier service.ChangeNotifier = service.NopNotifier{}
	if cfg.Scheduling.NotifyEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		notifier = service.NewRedisNotifier(redisClient, cfg.Scheduling.NotifyChannel, logr)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	auditRepo := repository.NewAuditRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db, auditRepo)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	machineRepo := repository.NewMachineRepository(db)

	authSvc := service.NewAuthService(cfg.JWT.Secret)
	overrideSvc := service.NewOverrideService(service.RolePolicyChecker{}, logr)
	assignmentSvc := service.NewAssignmentService(
		workOrderRepo,
		machineRepo,
		assignmentRepo,
		overrideSvc,
		notifier,
		cfg.Scheduling.OverlapPolicy,
		validate,
		logr,
		metricsSvc,
	)
	exportSvc := service.NewExportService(machineRepo, assignmentRepo, cfg.Export.DocumentTitle, logr)

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	timelineHandler := handler.NewTimelineHandler()
	exportHandler := handler.NewExportHandler(exportSvc)
	machineHandler := handler.NewMachineHandler(machineRepo)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderRepo, auditRepo)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/timeline", timelineHandler.Project)
		api.GET("/machines", machineHandler.List)
		api.GET("/machines/:id", machineHandler.Get)
		api.GET("/machines/:id/assignments", assignmentHandler.ListByMachine)
		api.GET("/work-orders/:id", workOrderHandler.Get)
		api.GET("/work-orders/:id/assignments", assignmentHandler.ListByWorkOrder)
		api.GET("/work-orders/:id/audit", workOrderHandler.AuditTrail)

		scheduling := api.Group("")
		scheduling.Use(middleware.RequireCapability(models.CapabilitySchedule))
		{
			scheduling.POST("/assignments", assignmentHandler.Create)
			scheduling.PATCH("/assignments/:id/machine", assignmentHandler.Reassign)
			scheduling.PATCH("/assignments/:id/status", assignmentHandler.UpdateStatus)
		}

		if cfg.Export.Enabled {
			api.GET("/schedule/export", exportHandler.ExportSchedule)
			api.GET("/machines/:id/schedule/export", exportHandler.ExportMachineSchedule)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "overlap_policy", cfg.Scheduling.OverlapPolicy)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
