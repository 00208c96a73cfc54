// this package manages its own connection to redis, the session registry lives in
// its own database (JWT_DB) next to the caches

package authentication

import (
	"context"

	"sleep-tips/config"

	"github.com/go-redis/redis/v8"
)

var client *redis.Client

// settings used for token and cookie verification
var settings config.Config

// OpenConnection connects to the session registry and keeps the token settings
func OpenConnection(cfg config.Config) error {
	settings = cfg

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.CacheHost + ":" + cfg.CachePort,
		Password: cfg.CachePass,
		DB:       cfg.JWTDB,
	})

	return client.Ping(context.Background()).Err()
}

// SetConnection replaces the registry connection and the settings (tests, tools)
func SetConnection(c *redis.Client, cfg config.Config) {
	client = c
	settings = cfg
}

// CloseConnection closes the connection to the store
func CloseConnection() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
