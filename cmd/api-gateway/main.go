package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edumesh/school-ops-api/api/swagger"
	"github.com/edumesh/school-ops-api/internal/handler"
	"github.com/edumesh/school-ops-api/internal/middleware"
	"github.com/edumesh/school-ops-api/internal/models"
	"github.com/edumesh/school-ops-api/internal/repository"
	"github.com/edumesh/school-ops-api/internal/service"
	"github.com/edumesh/school-ops-api/pkg/cache"
	"github.com/edumesh/school-ops-api/pkg/config"
	"github.com/edumesh/school-ops-api/pkg/database"
	"github.com/edumesh/school-ops-api/pkg/logger"
	corsmiddleware "github.com/edumesh/school-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edumesh/school-ops-api/pkg/middleware/requestid"
)

// @title School Ops API
// @version 1.0.0
// @description Timetable, attendance and marks backend for the school operations portal
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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	classSvc := service.NewClassService(classRepo, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	teacherScheduleSvc := service.NewTeacherScheduleService(scheduleRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, classRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Classes:    classRepo,
		Attendance: attendanceSvc,
		Timetable:  teacherScheduleSvc,
		Exams:      examSvc,
		Cache:      cacheSvc,
		Logger:     logr,
		CacheTTL:   cfg.Dashboard.CacheTTL,
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(attendanceSvc, examSvc, classRepo, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, teacherScheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, exportSvc)
	examHandler := handler.NewExamHandler(examSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)

	principal := string(models.RolePrincipal)
	teacher := string(models.RoleTeacher)
	student := string(models.RoleStudent)

	staff := middleware.RBAC(principal, teacher)

	authed.GET("/classes", staff, classHandler.List)
	authed.GET("/classes/:id", staff, classHandler.Get)
	authed.GET("/classes/:id/students", staff, classHandler.Students)
	authed.GET("/classes/:id/attendance-draft", staff, classHandler.WorkingSet)

	authed.POST("/schedules", middleware.RBAC(principal), scheduleHandler.Create)
	authed.PUT("/schedules/:id", middleware.RBAC(principal), scheduleHandler.Update)
	authed.DELETE("/schedules/:id", middleware.RBAC(principal), scheduleHandler.Delete)
	authed.POST("/schedules/draft/periods", middleware.RBAC(principal), scheduleHandler.AddDraftPeriod)
	authed.POST("/schedules/draft/periods/remove", middleware.RBAC(principal), scheduleHandler.RemoveDraftPeriod)
	authed.GET("/schedules/:id", middleware.RBAC(principal, teacher, student), scheduleHandler.Get)
	authed.GET("/classes/:id/schedule", middleware.RBAC(principal, teacher, student), scheduleHandler.GetForClass)
	authed.GET("/teachers/:id/timetable", middleware.RBAC(principal, middleware.SelfRole), scheduleHandler.TeacherTimetable)

	authed.POST("/attendance", staff, attendanceHandler.Mark)
	authed.GET("/attendance-sessions/:id", staff, attendanceHandler.GetSession)
	authed.GET("/attendance-sessions/:id/records", staff, attendanceHandler.Records)
	authed.DELETE("/attendance-sessions/:id", staff, attendanceHandler.DeleteSession)
	authed.GET("/attendance-sessions/:id/export", staff, attendanceHandler.ExportRegister)
	authed.GET("/teachers/:id/attendance-sessions", middleware.RBAC(principal, middleware.SelfRole), attendanceHandler.SessionsByTeacher)
	authed.GET("/classes/:id/attendance-sessions", staff, attendanceHandler.SessionsByClass)
	authed.GET("/classes/:id/attendance-average", staff, attendanceHandler.ClassAverage)
	authed.GET("/students/:id/attendance", middleware.RBAC(principal, teacher, middleware.SelfRole), attendanceHandler.StudentSummary)

	authed.POST("/exams", staff, examHandler.Create)
	authed.PUT("/exams/:id", staff, examHandler.Update)
	authed.GET("/exams/:id", staff, examHandler.Get)
	authed.DELETE("/exams/:id", staff, examHandler.Delete)
	authed.GET("/exams/:id/stats", staff, examHandler.Stats)
	authed.GET("/exams/:id/export", staff, examHandler.Export)
	authed.GET("/classes/:id/exams", staff, examHandler.ListByClass)
	authed.GET("/classes/:id/subject-averages", staff, examHandler.SubjectAverages)
	authed.GET("/teachers/:id/exams", middleware.RBAC(principal, middleware.SelfRole), examHandler.ListByTeacher)
	authed.GET("/students/:id/subject-averages", middleware.RBAC(principal, teacher, middleware.SelfRole), examHandler.StudentSubjectAverages)

	if cfg.Dashboard.Enabled {
		authed.GET("/dashboard/principal", middleware.RBAC(principal), dashboardHandler.Principal)
		authed.GET("/dashboard/teacher", middleware.RBAC(teacher), dashboardHandler.Teacher)
		authed.GET("/dashboard/students/:id", middleware.RBAC(principal, middleware.SelfRole), dashboardHandler.Student)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
