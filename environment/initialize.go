package environment

import (
	"sleep-tips/analytics"
	"sleep-tips/authentication"
	"sleep-tips/client"
	"sleep-tips/config"
	"sleep-tips/database"
	"sleep-tips/docstore"
	"sleep-tips/models"

	"github.com/go-redis/redis/v8"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Config     config.Config
	Store      docstore.Store
	Tracker    *analytics.Tracker
	Requests   *client.Registry
	Profiles   models.ProfileModel
	Categories models.CategoryModel
	Tips       models.TipModel
	Ratings    models.RatingModel
	Rankings   models.RankingModel
	Comments   models.CommentModel
}

// Backends are the connections the models run on; Cache and Analytics are optional
type Backends struct {
	Store     docstore.Store
	Cache     *redis.Client
	Analytics database.InfluxAPI
}

// newEnv operates as the constructor to wire the models (private)
func newEnv(cfg config.Config, b Backends) *Environment {
	env := &Environment{
		Config:   cfg,
		Store:    b.Store,
		Requests: client.NewRegistry(),
	}

	// always create the tracker so no further checking is needed in the handlers
	env.Tracker = &analytics.Tracker{
		Enabled:  cfg.UseAnalytics && b.Analytics.WriteAPI != nil,
		API:      b.Analytics,
		Requests: env.Requests,
	}

	env.Profiles = models.ProfileModel{
		Store:      b.Store,
		Collection: models.CollectionProfiles,
		Cache:      b.Cache,
		CacheTTL:   cfg.ProfileCacheTTL,
		Workers:    cfg.ProfileWorkers,
	}

	env.Categories = models.CategoryModel{
		Store:       b.Store,
		Collection:  models.CollectionCategories,
		CurrentUser: authentication.SessionUser,
	}

	env.Tips = models.TipModel{
		Store:       b.Store,
		Collection:  models.CollectionTips,
		CurrentUser: authentication.SessionUser,
	}

	env.Ratings = models.RatingModel{
		Store:             b.Store,
		Collection:        models.CollectionRatings,
		Tips:              models.CollectionTips,
		AggregateFallback: cfg.RatingFallback,
	}

	env.Rankings = models.RankingModel{
		Store:   b.Store,
		Tips:    models.CollectionTips,
		Ratings: models.CollectionRatings,
	}

	env.Comments = models.CommentModel{
		Store:      b.Store,
		Collection: models.CollectionComments,
		Tips:       models.CollectionTips,
		// inject the profile lookup into the comment model
		GetUserNames: env.Profiles.GetUserNames,
	}

	return env
}

// Env is the singleton registry
var Env *Environment

// Initialize wires the models to the opened connections
// (do not confuse with package init)
func Initialize(cfg config.Config) {
	b := Backends{}

	switch cfg.DBDriver {
	case "memory":
		b.Store = docstore.NewMemory()
	default:
		b.Store = docstore.NewMongo(database.GetDatabase(cfg))
	}

	b.Cache = database.GetRedisConnection()
	if cfg.UseAnalytics {
		b.Analytics = database.GetInfluxAPI(cfg)
	}

	Env = newEnv(cfg, b)
}

// InitializeWith wires the models to the given backends (tests, tools)
func InitializeWith(cfg config.Config, b Backends) {
	Env = newEnv(cfg, b)
}
