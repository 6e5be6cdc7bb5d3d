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

	"go.uber.org/zap"

	"fleetdesk/backend/config"
	"fleetdesk/backend/internal/api/handler"
	"fleetdesk/backend/internal/api/router"
	"fleetdesk/backend/internal/repository"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/broker"
	"fleetdesk/backend/pkg/database"
	"fleetdesk/backend/pkg/jwt"
	applogger "fleetdesk/backend/pkg/logger"
	"fleetdesk/backend/pkg/redis"
	"fleetdesk/backend/pkg/storage"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("FLEET_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.App.Timezone),
	)

	// 3. database + migrations
	db, err := database.Open(&cfg.DB, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.Migrate(sqlDB, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 4. optional infrastructure. Interface fields of Deps stay untyped nil
	// when a backend is missing so the services see a real nil.
	var deps service.Deps

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token revocation and calendar cache disabled", zap.Error(err))
		rdb = nil
	} else {
		deps.Cache = rdb
		deps.Blacklist = rdb
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(startCtx, &cfg.Storage, logger)
	cancelStart()
	if err != nil {
		logger.Warn("object storage unavailable, attachments disabled", zap.Error(err))
	} else if store != nil {
		deps.Store = store
	}

	var publisher *broker.Publisher
	if cfg.Broker.URL != "" {
		publisher = broker.NewPublisher(cfg.Broker.URL, logger)
		deps.Events = publisher
	} else {
		logger.Info("broker not configured, decision events disabled")
	}

	// 5. repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 6. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("close broker failed", zap.Error(err))
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	sqlDB.Close()

	logger.Info("stopped")
}
