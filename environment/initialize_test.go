package environment

import (
	"context"
	"testing"

	"sleep-tips/config"
	"sleep-tips/docstore"
	"sleep-tips/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWith(t *testing.T) {
	store := docstore.NewMemory()
	cfg := config.Config{UseAnalytics: true, RatingFallback: true, ProfileWorkers: 2}

	InitializeWith(cfg, Backends{Store: store})

	require.NotNil(t, Env)
	// analytics requested but no store connected
	assert.False(t, Env.Tracker.Enabled)
	assert.Same(t, Env.Requests, Env.Tracker.Requests)
	assert.True(t, Env.Ratings.AggregateFallback)
	assert.Equal(t, 2, Env.Profiles.Workers)
	assert.Equal(t, models.CollectionTips, Env.Tips.Collection)
	assert.Equal(t, models.CollectionRatings, Env.Rankings.Ratings)
}

func TestCommentsResolveProfileNames(t *testing.T) {
	store := docstore.NewMemory()
	store.Put(models.CollectionProfiles, docstore.Document{Data: docstore.Data{"userID": "user-1", "username": "Sleepy"}})

	InitializeWith(config.Config{}, Backends{Store: store})

	named := Env.Comments.AttachAuthorNames(context.Background(), []models.Comment{{UserID: "user-1"}})
	require.Len(t, named, 1)
	assert.Equal(t, "Sleepy", named[0].AuthorName)
}
