package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"sleep-tips/apperror"
	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"

	"github.com/go-redis/redis/v8"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	profileCachePrefix    = "profile:name:"
	defaultProfileWorkers = 8
)

// Profile is the public part of a user, only used for display names
type Profile struct {
	UserID   string `json:"userID"`
	UserName string `json:"username"`
}

// ProfileModel resolves user names; results are cached in redis when a cache is configured
type ProfileModel struct {
	Store      docstore.Store
	Collection string
	Cache      *redis.Client
	CacheTTL   time.Duration
	// Workers bounds the parallel lookups of GetUserNames
	Workers int
}

// GetUserName returns the username of a profile (apperror.ErrNoData if there is none)
func (m ProfileModel) GetUserName(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperror.ErrNoData
	}

	if m.Cache != nil {
		name, err := m.Cache.Get(ctx, profileCachePrefix+userID).Result()
		switch {
		case err == nil:
			return name, nil
		case !errors.Is(err, redis.Nil):
			logger.L.Debug("profile cache unavailable", zap.Error(err))
		}
	}

	docs, err := m.Store.List(ctx, m.Collection,
		docstore.Equal("userID", userID),
		docstore.Limit(1))
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}
	if len(docs) == 0 {
		return "", apperror.ErrNoData
	}

	name := docs[0].Data.String("username")
	if name == "" {
		return "", apperror.ErrNoData
	}

	if m.Cache != nil {
		if err := m.Cache.Set(ctx, profileCachePrefix+userID, name, m.CacheTTL).Err(); err != nil {
			logger.L.Debug("profile not cached", zap.Error(err))
		}
	}

	return name, nil
}

// GetUserNames looks up several users in parallel; users without a profile or with a
// failed lookup are missing from the result
func (m ProfileModel) GetUserNames(ctx context.Context, userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names
	}

	workers := m.Workers
	if workers <= 0 {
		workers = defaultProfileWorkers
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(workers)
	for _, id := range userIDs {
		id := id
		p.Go(func() {
			name, err := m.GetUserName(ctx, id)
			if err != nil {
				if !errors.Is(err, apperror.ErrNoData) {
					logger.L.Warn("profile lookup failed", zap.String("user", id), zap.Error(err))
				}
				return
			}
			mu.Lock()
			names[id] = name
			mu.Unlock()
		})
	}
	p.Wait()

	return names
}

// Invalidate drops the cached name, eg. after a profile was renamed
func (m ProfileModel) Invalidate(ctx context.Context, userID string) error {
	if m.Cache == nil {
		return nil
	}
	return m.Cache.Del(ctx, profileCachePrefix+userID).Err()
}
