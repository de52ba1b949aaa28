package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"studio-api/core/cache"
	"studio-api/core/clock"
	"studio-api/core/config"
	"studio-api/core/constants"
	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/core/middleware"
	"studio-api/core/worker"
	"studio-api/modules/booking"
	"studio-api/modules/classdef"
	"studio-api/modules/member"
	"studio-api/modules/notification"
	notificationService "studio-api/modules/notification/service"
	"studio-api/modules/schedule"
	"studio-api/modules/timetable"
)

// Run boots the API server, the background worker, and every module, then
// blocks until SIGINT/SIGTERM and shuts both down gracefully.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	loc := time.UTC
	if cfg.Server.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Server.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", cfg.Server.Timezone, err)
		}
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.SQLx().Close()

	if err := cache.Init(cfg.Redis); err != nil {
		// Redis also backs the task queue, so a dead redis is fatal.
		return fmt.Errorf("init redis: %w", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORS())
	e.Use(echoMw.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware()
	clk := clock.System()
	private := e.Group("/api/v1/private")

	members := member.Init(db, true)
	notifSvc, dispatcher := notification.Init(private, db, mw, asynqClient)
	classdef.Init(private, db, mw)
	schedule.Init(private, db, mw, dispatcher)
	timetable.Init(private, db, mw, members, loc, clk)
	booking.Init(private, db, mw, dispatcher, loc, clk, cfg.Booking)

	w := worker.New(redisOpt, 10)
	w.Handle(notificationService.TaskDeliverNotification, notifSvc.HandleDeliverTask)
	w.Start()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server:Started", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server:Stopping")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()

	w.Shutdown()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	logger.Info("Server:Stopped")
	return nil
}
