package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-flood-alerts/internal/api"
	"github.com/mr1hm/go-flood-alerts/internal/auth"
	"github.com/mr1hm/go-flood-alerts/internal/broadcast"
	"github.com/mr1hm/go-flood-alerts/internal/config"
	"github.com/mr1hm/go-flood-alerts/internal/events"
	"github.com/mr1hm/go-flood-alerts/internal/feed"
	"github.com/mr1hm/go-flood-alerts/internal/logging"
	"github.com/mr1hm/go-flood-alerts/internal/observability"
	"github.com/mr1hm/go-flood-alerts/internal/offline"
	"github.com/mr1hm/go-flood-alerts/internal/pwa"
	"github.com/mr1hm/go-flood-alerts/internal/repository"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logger := logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "version", version)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	// Feed simulator, fanned out to WebSocket clients
	broadcaster := broadcast.NewBroadcaster(broadcast.DefaultBuffer)
	feedOpts := []feed.Option{
		feed.WithDelays(cfg.Feed.ConnectDelay, cfg.Feed.RefreshInterval, cfg.Feed.ReconnectDelay),
		feed.WithLogger(logger.With("component", "feed")),
		feed.WithMetrics(metrics),
		feed.WithPublisher(broadcaster),
	}
	if cfg.Feed.Seed != 0 {
		feedOpts = append(feedOpts, feed.WithSeed(cfg.Feed.Seed))
	}
	sim := feed.New(feedOpts...)
	if err := sim.Start(ctx); err != nil {
		logging.Fatalf("Failed to start feed simulator: %v", err)
	}

	authenticator, err := auth.NewAuthenticator(auth.Config{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
		Token:        cfg.Auth.Token,
		Role:         cfg.Auth.Role,
	})
	if err != nil {
		logging.Fatalf("Failed to initialize auth: %v", err)
	}

	var (
		queue       offline.Queue
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = offline.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logging.Fatalf("Failed to connect to Redis: %v", err)
		}
		queue = offline.NewRedisQueue(redisClient, cfg.Offline.MaxActions)
		slog.Info("offline queue backed by redis", "addr", cfg.Redis.Addr)
	} else {
		queue = offline.NewMemoryQueue(cfg.Offline.MaxActions)
	}

	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		slog.Info("report events published to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		publisher = events.NewLogPublisher(logger.With("component", "events"))
	}
	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{
		Workers:    cfg.Worker.Count,
		BufferSize: cfg.Worker.BufferSize,
		Logger:     logger.With("component", "events"),
		Metrics:    metrics,
	})
	dispatcher.Start(ctx)

	var versionSource pwa.VersionSource = pwa.StaticVersion(version)
	if cfg.PWA.VersionFile != "" {
		versionSource = pwa.FileVersion{Path: cfg.PWA.VersionFile}
	}
	pwaManager := pwa.NewManager(
		pwa.DefaultManifest(cfg.PWA.Name, cfg.PWA.ShortName, cfg.PWA.ThemeColor),
		versionSource,
		pwa.WithPollInterval(cfg.PWA.VersionPollInterval),
		pwa.WithLogger(logger.With("component", "pwa")),
		pwa.WithMetrics(metrics),
	)
	if err := pwaManager.Start(ctx); err != nil {
		logging.Fatalf("Failed to start PWA manager: %v", err)
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(api.Deps{
		Feed:         sim,
		Stream:       broadcaster,
		Auth:         authenticator,
		Reports:      db,
		Events:       dispatcher,
		Offline:      queue,
		PWA:          pwaManager,
		Metrics:      metrics,
		Logger:       logger,
		RequireAdmin: cfg.Auth.RequireAdmin,
	})
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitRPS: cfg.Server.RateLimitRPS,
		Metrics:      metrics,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	sim.Stop()
	pwaManager.Stop()
	// Drain queued report events before the workers' context goes away.
	if err := dispatcher.Stop(); err != nil {
		slog.Error("event publisher close error", "error", err)
	}
	cancel()

	if redisClient != nil {
		redisClient.Close()
	}

	slog.Info("shutdown complete")
}
