package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"netportal/docs"
	"netportal/internal/auth"
	"netportal/internal/cache"
	"netportal/internal/config"
	"netportal/internal/db"
	"netportal/internal/handler"
	"netportal/internal/jobs"
	"netportal/internal/logger"
	"netportal/internal/model"
	"netportal/internal/radius"
	"netportal/internal/repository"
	"netportal/internal/router"
	"netportal/internal/service"
)

// @title Captive Portal API
// @version 1.0
// @description Captive portal backend with RADIUS network authentication, session logging and admin reporting.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.NewPostgres(cfg)
	if err != nil {
		zlog.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Admin{},
		&model.ConnectionLog{},
	); err != nil {
		zlog.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	adminRepo := repository.NewAdminRepository(gormDB)
	logRepo := repository.NewConnectionLogRepository(gormDB)

	// External collaborators
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	radiusClient := radius.NewClient(cfg.RadiusAddr(), cfg.RadiusSecret, cfg.RadiusTimeout)

	// Services
	authService := service.NewAuthService(userRepo, adminRepo, jwtService, radiusClient, zlog)
	userService := service.NewUserService(userRepo, logRepo, zlog)
	adminService := service.NewAdminService(userRepo, logRepo, cacheClient, zlog)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(authService, adminService)

	router.Register(e, cfg, authHandler, userHandler, adminHandler)

	// Stale session sweeper
	sweeper := jobs.NewSweeper(logRepo, cfg.MaxSessionAge, zlog)
	scheduler := cron.New()
	if err := sweeper.Schedule(scheduler, cfg.SweepInterval); err != nil {
		zlog.Fatal("schedule sweeper", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	zlog.Info("starting portal server",
		zap.String("addr", cfg.Addr()),
		zap.String("radius", cfg.RadiusAddr()))

	if err := e.Start(cfg.Addr()); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server start", zap.Error(err))
	}
}
