package services

import (
	"context"
	"time"

	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

type ComponentHealth struct {
	Status  HealthStatus `json:"status"`
	Latency string       `json:"latency,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type Health struct {
	Status     HealthStatus               `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// HealthService probes the backing stores. Postgres down means the service is
// down; Redis down only degrades it, since locking falls back to fail-fast
// errors rather than corrupting data.
type HealthService struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

func NewHealthService(pool *pgxpool.Pool, redisClient *redis.Client) *HealthService {
	return &HealthService{pool: pool, redis: redisClient}
}

func (s *HealthService) CheckHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	health := Health{
		Status:     HealthStatusUp,
		Components: make(map[string]ComponentHealth),
		Timestamp:  time.Now().UTC(),
	}

	health.Components["database"] = s.checkDatabase(ctx)
	health.Components["redis"] = s.checkRedis(ctx)

	if health.Components["database"].Status == HealthStatusDown {
		health.Status = HealthStatusDown
	} else if health.Components["redis"].Status == HealthStatusDown {
		health.Status = HealthStatusDegraded
	}

	return health
}

func (s *HealthService) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := s.pool.Ping(ctx); err != nil {
		logger.GetLogger().Errorw("Database health check failed", "error", err)
		return ComponentHealth{Status: HealthStatusDown, Error: "connection failed"}
	}
	return ComponentHealth{Status: HealthStatusUp, Latency: time.Since(start).String()}
}

func (s *HealthService) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Warnw("Redis health check failed", "error", err)
		return ComponentHealth{Status: HealthStatusDown, Error: "connection failed"}
	}
	return ComponentHealth{Status: HealthStatusUp, Latency: time.Since(start).String()}
}
