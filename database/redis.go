package database

import (
	"context"

	"sleep-tips/config"

	"github.com/go-redis/redis/v8"
)

var redisClient *redis.Client

// OpenRedisConnection connects to the cache database (profile names); on failure
// no connection is kept and GetRedisConnection returns nil
func OpenRedisConnection(cfg config.Config) error {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.CacheHost + ":" + cfg.CachePort,
		Password: cfg.CachePass,
		DB:       cfg.CacheDB,
	})

	if err := c.Ping(context.Background()).Err(); err != nil {
		c.Close()
		return err
	}

	redisClient = c
	return nil
}

// GetRedisConnection returns a reference to the shared connection
func GetRedisConnection() *redis.Client {
	return redisClient
}

// CloseRedisConnection closes the connection to the store
func CloseRedisConnection() error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Close()
}
