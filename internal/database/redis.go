package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/kirin765/naver-smartstore/internal/config"
)

// InitRedis connects to Redis. It returns nil when Redis is unreachable; the
// rate limiter and the logout blacklist are skipped in that case.
func InitRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Redis connection failed, continuing without Redis: %v", err)
		rdb.Close()
		return nil
	}

	log.Println("[REDIS] Redis connection established")
	return rdb
}
