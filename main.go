package main

import (
	"fmt"
	"time"

	"sleep-tips/authentication"
	"sleep-tips/config"
	"sleep-tips/controllers"
	"sleep-tips/database"
	"sleep-tips/environment"
	"sleep-tips/logger"
	"sleep-tips/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	router = gin.Default()
)

// called BEFORE main; the order of package inits is undefined
func init() {
	// a missing .env is fine, the environment may be set by the container
	if err := godotenv.Load(); err != nil {
		logger.L.Info("no .env file loaded", zap.Error(err))
	}
}

func handleRequests(cfg config.Config) {
	router.Use(middleware.CORSMiddleware(cfg.CORS))

	controllers.RegisterRoutes(router)

	var err error
	switch cfg.AppEnv {
	case "DEV":
		err = router.Run(":" + cfg.APIPort)
	case "PRD":
		err = router.RunTLS(":"+cfg.APIPort, cfg.CertFile, cfg.KeyFile)
	default:
		panic(fmt.Errorf("APP_ENV must be DEV or PRD, got %q", cfg.AppEnv))
	}
	if err != nil {
		logger.L.Fatal("server stopped", zap.Error(err))
	}
}

// flushRequests keeps the view registry small
func flushRequests(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if removed := environment.Env.Requests.Flush(); removed > 0 {
				logger.L.Debug("view registry flushed", zap.Int("removed", removed))
			}
		}
	}()
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Debug())
	defer logger.L.Sync()

	// connect to the document database (mongoDB) unless running on the in-memory store
	if cfg.DBDriver != "memory" {
		if err := database.OpenConnection(cfg); err != nil {
			logger.L.Fatal("document database not available", zap.Error(err))
		}
		defer database.CloseConnection()
	}

	// connect to the session registry (redis)
	if err := authentication.OpenConnection(cfg); err != nil {
		logger.L.Fatal("session registry not available", zap.Error(err))
	}
	defer authentication.CloseConnection()

	// the profile cache is optional
	if err := database.OpenRedisConnection(cfg); err != nil {
		logger.L.Warn("profile cache not available", zap.Error(err))
	}
	defer database.CloseRedisConnection()

	if cfg.UseAnalytics {
		if err := database.OpenInfluxConnection(cfg); err != nil {
			logger.L.Warn("analytics store not available, analytics disabled", zap.Error(err))
			cfg.UseAnalytics = false
		}
		defer database.CloseInfluxConnection()
	}

	// initialize the models
	environment.Initialize(cfg)
	flushRequests(time.Minute)

	logger.L.Info("sleep-tips running", zap.String("env", cfg.AppEnv), zap.String("port", cfg.APIPort))
	handleRequests(cfg)
}
