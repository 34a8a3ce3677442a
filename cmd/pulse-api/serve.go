package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/pulse/backend/internal/config"
	"github.com/JonnyWalker81/pulse/backend/internal/handlers"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the reminder dispatcher.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, loader, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Flush(2 * time.Second)

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	loader.Watch(func(next *config.Config) {
		log.SetLevel(logger.ParseLevel(next.Log.Level))
		log.Info("config reloaded", logger.String("log_level", next.Log.Level))
	}, func(err error) {
		log.Warn("config reload rejected", logger.Err(err))
	})

	log.Info("starting Pulse API server",
		logger.String("env", cfg.Server.Env),
		logger.String("db_driver", cfg.Database.Driver),
	)

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	rl := middleware.RateLimitConfig{
		Window:  cfg.RateLimit.Window,
		Max:     cfg.RateLimit.Max,
		AuthMax: cfg.RateLimit.AuthMax,
	}
	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		defer rdb.Close()
		rl.Redis = rdb
		log.Info("rate limiting backed by redis", logger.String("addr", cfg.RateLimit.RedisAddr))
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, a, log, rl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcherDone := make(chan struct{})
	if cfg.Reminders.Enabled {
		dispatcher := a.newDispatcher(cfg, log)
		go func() {
			defer close(dispatcherDone)
			_ = dispatcher.Run(ctx)
		}()
	} else {
		close(dispatcherDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		<-dispatcherDone
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-dispatcherDone
	return nil
}

func newRouter(cfg *config.Config, a *app, log logger.Logger, rl middleware.RateLimitConfig) *gin.Engine {
	handlers.RegisterValidators()

	authHandler := handlers.NewAuthHandler(a.auth)
	userHandler := handlers.NewUserHandler(a.users)
	entryHandler := handlers.NewEntryHandler(a.entries)
	analyticsHandler := handlers.NewAnalyticsHandler(a.analytics, a.streaks)
	insightsHandler := handlers.NewInsightsHandler(a.insights)
	syncHandler := handlers.NewSyncHandler(a.sync)
	exportHandler := handlers.NewExportHandler(a.export)
	reminderHandler := handlers.NewReminderHandler(a.reminders)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(log))
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))

	api := router.Group("/api")
	api.GET("/health", handlers.Health(cfg.Server.Env))

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitAuth(rl))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.RateLimit(rl))
	protected.Use(middleware.Auth(a.auth))
	protected.Use(middleware.Idempotency(a.idempotencyRepo))
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me", userHandler.UpdateMe)
		protected.DELETE("/me", userHandler.DeleteMe)

		protected.GET("/entries", entryHandler.ListEntries)
		protected.POST("/entries", entryHandler.CreateEntry)
		protected.GET("/entries/:id", entryHandler.GetEntry)
		protected.PUT("/entries/:id", entryHandler.UpdateEntry)
		protected.DELETE("/entries/:id", entryHandler.DeleteEntry)

		protected.GET("/stats", analyticsHandler.GetStats)
		protected.GET("/streaks", analyticsHandler.GetStreaks)
		protected.GET("/analytics/correlation", analyticsHandler.GetCorrelations)
		protected.GET("/achievements", analyticsHandler.GetAchievements)
		protected.GET("/insights", insightsHandler.GetInsights)

		protected.GET("/export", exportHandler.Export)

		protected.PUT("/reminders", reminderHandler.UpdateReminder)
		protected.GET("/reminders/status", reminderHandler.GetReminderStatus)
		protected.DELETE("/reminders", reminderHandler.CancelReminder)

		sync := protected.Group("/sync")
		sync.POST("/devices", syncHandler.RegisterDevice)
		sync.GET("/devices", syncHandler.ListDevices)
		sync.DELETE("/devices/:deviceId", syncHandler.RemoveDevice)
		sync.GET("/data", syncHandler.GetSyncData)
		sync.GET("/status", syncHandler.GetSyncStatus)
		sync.GET("/export", exportHandler.SyncExport)
	}

	return router
}
