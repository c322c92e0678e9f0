package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ptime/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Public job listing cache
	GetActiveJobs(ctx context.Context) ([]*models.Job, error)
	SetActiveJobs(ctx context.Context, jobs []*models.Job, ttl time.Duration) error
	InvalidateActiveJobs(ctx context.Context) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// ClaimOnce sets key if absent and reports whether this call claimed it.
	// Used for one-time OAuth state consumption.
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis:// URLs
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

const activeJobsKey = "ptime:jobs:active"

func (r *redisCacheService) GetActiveJobs(ctx context.Context) ([]*models.Job, error) {
	data, err := r.client.Get(ctx, activeJobsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var jobs []*models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *redisCacheService) SetActiveJobs(ctx context.Context, jobs []*models.Job, ttl time.Duration) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, activeJobsKey, data, ttl).Err()
}

func (r *redisCacheService) InvalidateActiveJobs(ctx context.Context) error {
	return r.client.Del(ctx, activeJobsKey).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("key not found: %s", key)
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, "1", ttl).Result()
}
