package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ssekandi/psms-api/api/swagger"
	"github.com/ssekandi/psms-api/internal/handler"
	"github.com/ssekandi/psms-api/internal/middleware"
	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/internal/repository"
	"github.com/ssekandi/psms-api/internal/service"
	"github.com/ssekandi/psms-api/pkg/cache"
	"github.com/ssekandi/psms-api/pkg/config"
	"github.com/ssekandi/psms-api/pkg/database"
	"github.com/ssekandi/psms-api/pkg/logger"
	corsmiddleware "github.com/ssekandi/psms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ssekandi/psms-api/pkg/middleware/requestid"
)

// @title PSMS API
// @version 1.0.0
// @description Primary school management API: assessment engine and timetable generator
// @BasePath /api/v1
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

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running uncached", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient)
			defer redisClient.Close()
		}
	}

	// repositories
	pupilRepo := repository.NewPupilRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	examRepo := repository.NewExamRepository(db)
	markRepo := repository.NewMarkRepository(db)
	reportRepo := repository.NewReportRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)

	// services
	var cacheStore *service.CacheService
	if cacheRepo != nil {
		cacheStore = service.NewCacheService(cacheRepo, cfg.Cache.TTL, true, logr)
	} else {
		cacheStore = service.NewCacheService(nil, 0, false, logr)
	}
	marksSvc := service.NewMarksService(db, examRepo, markRepo, reportRepo, pupilRepo, subjectRepo, cacheStore, logr)
	termSvc := service.NewTermService(db, examRepo, pupilRepo, subjectRepo, reportRepo, cacheStore, logr)
	querySvc := service.NewAssessmentQueryService(reportRepo, examRepo, markRepo, pupilRepo, cacheStore, logr)
	timetableSvc, err := service.NewTimetableService(db, userRepo, subjectRepo, classRepo, timetableRepo, assignmentRepo, cacheStore, cfg.Timetable, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid timetable geometry", "error", err)
	}
	registrySvc := service.NewRegistryService(pupilRepo, classRepo, subjectRepo, userRepo, assignmentRepo, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, 24*time.Hour, logr)
	exportSvc := service.NewExportService(querySvc, subjectRepo, classRepo, cfg.SchoolName, logr)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsSvc := service.NewMetricsService(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// handlers
	authHandler := handler.NewAuthHandler(authSvc)
	marksHandler := handler.NewMarksHandler(marksSvc, metricsSvc)
	assessmentHandler := handler.NewAssessmentHandler(querySvc, termSvc, metricsSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, cacheStore, metricsSvc)
	registryHandler := handler.NewRegistryHandler(registrySvc)
	exportHandler := handler.NewExportHandler(exportSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(httpMetrics.Handler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleHeadteacher, models.RoleSecretary)
	teaching := middleware.RequireRoles(models.RoleAdmin, models.RoleHeadteacher, models.RoleTeacher)
	anyStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleHeadteacher,
		models.RoleSecretary, models.RoleBursar, models.RoleTeacher)

	// registry
	authed.POST("/pupils", staff, registryHandler.RegisterPupil)
	authed.GET("/pupils", anyStaff, registryHandler.Pupils)
	authed.GET("/pupils/:id", anyStaff, registryHandler.Pupil)
	authed.PUT("/pupils/:id", staff, registryHandler.UpdatePupil)
	authed.DELETE("/pupils/:id", staff, registryHandler.DeletePupil)
	authed.POST("/classes", staff, registryHandler.CreateClass)
	authed.GET("/classes", anyStaff, registryHandler.Classes)
	authed.GET("/classes/:id/pupils", anyStaff, registryHandler.ClassPupils)
	authed.GET("/classes/:id/streams", anyStaff, registryHandler.Streams)
	authed.POST("/streams", staff, registryHandler.CreateStream)
	authed.POST("/subjects", staff, registryHandler.CreateSubject)
	authed.GET("/subjects", anyStaff, registryHandler.Subjects)
	authed.POST("/users", middleware.RequireRoles(models.RoleAdmin), registryHandler.CreateUser)
	authed.GET("/teachers", anyStaff, registryHandler.Teachers)
	authed.POST("/teacher-assignments", staff, registryHandler.AssignTeacher)
	authed.GET("/teachers/:id/assignments", anyStaff, registryHandler.TeacherAssignments)

	// marks and reports
	authed.POST("/marks", teaching, marksHandler.Submit)
	authed.PUT("/marks", teaching, marksHandler.Update)
	authed.DELETE("/marks", teaching, marksHandler.Delete)
	authed.GET("/pupils/:id/reports", anyStaff, assessmentHandler.Reports)
	authed.GET("/pupils/:id/reports/:examID", anyStaff, assessmentHandler.Report)
	authed.GET("/pupils/:id/reports/:examID/pdf", anyStaff, exportHandler.ReportCard)
	authed.GET("/pupils/:id/marks", anyStaff, assessmentHandler.Marks)
	authed.GET("/pupils/:id/exam-options", anyStaff, assessmentHandler.ExamOptions)
	authed.GET("/pupils/:id/terms/:term/summary", anyStaff, assessmentHandler.TermSummary)
	authed.POST("/terms/recompute", teaching, assessmentHandler.Recompute)

	// timetables
	authed.POST("/timetables/generate", staff, timetableHandler.Generate)
	authed.POST("/timetables/generate-all", staff, timetableHandler.GenerateAll)
	authed.GET("/timetables", anyStaff, timetableHandler.Timetable)
	authed.GET("/teachers/:id/timetable", anyStaff, timetableHandler.TeacherTimetable)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
