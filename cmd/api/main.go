package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pulsechat/cmd/api/router/v1"
	"pulsechat/internal/infrastructure/config"
	"pulsechat/internal/infrastructure/database"
	presenceAdapter "pulsechat/internal/infrastructure/presence/adapter"
	presencePort "pulsechat/internal/infrastructure/presence/port"
	queueAdapter "pulsechat/internal/infrastructure/queue/adapter"
	queuePort "pulsechat/internal/infrastructure/queue/port"
	"pulsechat/internal/infrastructure/realtime"
	"pulsechat/internal/pkg/messaging/follow"
	"pulsechat/internal/pkg/messaging/notify"
	httpHandler "pulsechat/internal/pkg/messaging/presentation/http"
	storeAdapter "pulsechat/internal/pkg/messaging/store/adapter"
	storePort "pulsechat/internal/pkg/messaging/store/port"
	"pulsechat/internal/pkg/messaging/task"
)

func main() {
	// Load .env file before viper reads the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Durable store: postgres in production, memory for local hacking
	var st storePort.Store
	switch cfg.StorageBackend {
	case "memory":
		st = storeAdapter.NewMemoryStore()
		logger.Warn("using in-memory store; data will not survive a restart")
	default:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()
		pg := storeAdapter.NewPgStore(pool)
		if err := pg.InitSchema(ctx); err != nil {
			logger.Fatalf("failed to initialize schema: %v", err)
		}
		st = pg
	}

	// Presence and the offline push queue both need Redis; without it the
	// service still runs single-node with in-process presence.
	var tracker presencePort.Tracker
	var queueClient queuePort.Client
	var queueServer queuePort.Server
	if cfg.RedisURL != "" {
		rt, err := presenceAdapter.NewRedisTracker(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("failed to connect presence tracker: %v", err)
		}
		defer rt.Close()
		tracker = rt

		qc, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("failed to create queue client: %v", err)
		}
		defer qc.Close()
		queueClient = qc

		qs, err := queueAdapter.NewAsynqServer(cfg.RedisURL, cfg.QueueConcurrency, nil, logger)
		if err != nil {
			logger.Fatalf("failed to create queue server: %v", err)
		}
		queueServer = qs
	} else {
		tracker = presenceAdapter.NewMemoryTracker()
		logger.Warn("redis url not set; using in-process presence and no push queue")
	}

	hub := realtime.NewHub()
	defer hub.Close()

	notifier := notify.New(st, hub, tracker, queueClient, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if queueServer != nil {
		task.RegisterOfflinePushTask(queueServer, logger)
		go func() {
			if err := queueServer.Run(runCtx); err != nil {
				logger.WithError(err).Error("queue server stopped")
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Store:     st,
		Follows:   follow.NewHTTPChecker(cfg.FollowServiceURL),
		Presence:  tracker,
		Hub:       hub,
		Notifier:  notifier,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http shutdown failed")
	}
	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	return logger
}
