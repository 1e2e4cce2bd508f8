package main

import (
	"context"

	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/infrastructure/database/redis"
	"github.com/turtacn/simpol/internal/infrastructure/storage/minio"
	"github.com/turtacn/simpol/internal/interfaces/http/handlers"
)

// Adapters for HealthHandler
type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string {
	return "redis"
}

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type minioHealthAdapter struct {
	client *minio.MinIOClient
}

func (a *minioHealthAdapter) Name() string {
	return "minio"
}

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}

// healthCheckers returns a readiness check per enabled backend.
func healthCheckers(rt *bootstrap.Runtime) []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if rt.Redis != nil {
		checks = append(checks, &redisHealthAdapter{client: rt.Redis})
	}
	if rt.MinIO != nil {
		checks = append(checks, &minioHealthAdapter{client: rt.MinIO})
	}
	return checks
}

//Personal.AI order the ending
