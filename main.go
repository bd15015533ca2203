package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SmartSplit/smart-split-backend/config"
	"github.com/SmartSplit/smart-split-backend/db"
	"github.com/SmartSplit/smart-split-backend/handlers"
	"github.com/SmartSplit/smart-split-backend/internal/store/postgres"
	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/SmartSplit/smart-split-backend/router"
	"github.com/SmartSplit/smart-split-backend/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	if cfg.IsProduction() {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisOptions := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			ServerName: cfg.Redis.Address,
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		_ = redisClient.Close()
	}()

	// Stores
	groupStore := postgres.NewGroupStore(pool)
	expenseStore := postgres.NewExpenseStore(pool)
	settlementStore := postgres.NewSettlementStore(pool)
	notificationStore := postgres.NewNotificationStore(pool)

	// Services
	groupService := services.NewGroupService(groupStore)
	expenseService := services.NewExpenseService(expenseStore, groupService)
	balanceService := services.NewBalanceService(groupStore, expenseStore, settlementStore)
	notificationService := services.NewNotificationService(notificationStore)
	lockService := services.NewRedisLockService(redisClient)
	settlementService := services.NewSettlementService(
		settlementStore,
		expenseStore,
		lockService,
		notificationService,
		time.Duration(cfg.Settlement.LockTTLSeconds)*time.Second,
	)
	healthService := services.NewHealthService(pool, redisClient)

	r := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		RedisClient:         redisClient,
		HealthHandler:       handlers.NewHealthHandler(healthService),
		GroupHandler:        handlers.NewGroupHandler(groupService),
		ExpenseHandler:      handlers.NewExpenseHandler(expenseService, groupService),
		BalanceHandler:      handlers.NewBalanceHandler(balanceService, groupService),
		SettlementHandler:   handlers.NewSettlementHandler(settlementService, groupService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shut down", "error", err)
	}
}
