package database

import (
	"context"
	"fmt"
	"time"

	"sleep-tips/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// shared connection (private to members of this package)
var client *mongo.Client

// connectionString omits the credentials when no user is configured (local development)
func connectionString(cfg config.Config) string {
	if cfg.DBUser == "" {
		return fmt.Sprintf("mongodb://%s:%s", cfg.DBHost, cfg.DBPort)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort)
}

// OpenConnection to the document database
func OpenConnection(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(connectionString(cfg)))
	if err != nil {
		return err
	}

	// make sure a connection has actually been made
	return client.Ping(ctx, readpref.Primary())
}

// CloseConnection closes the connection to the DB (when client is shut-down)
func CloseConnection() error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// GetDatabase returns the configured database of the shared connection
func GetDatabase(cfg config.Config) *mongo.Database {
	return client.Database(cfg.DBName)
}
