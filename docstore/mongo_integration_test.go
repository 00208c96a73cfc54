//go:build integration
// +build integration

package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupTestMongo(t *testing.T) *Mongo {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return NewMongo(client.Database("sleeptips_test"))
}

func TestMongoLifecycle(t *testing.T) {
	m := setupTestMongo(t)
	owner := WithUser(context.Background(), "u1")
	stranger := WithUser(context.Background(), "u2")

	doc, err := m.Create(owner, "tips", "", Data{"title": "Dark room", "status": "published"}, OwnerPermissions("u1"))
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)

	got, err := m.Get(owner, "tips", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dark room", got.Data.String("title"))
	assert.Len(t, got.Permissions, 3)
	assert.WithinDuration(t, doc.CreatedAt, got.CreatedAt, time.Second)

	_, err = m.Update(stranger, "tips", doc.ID, Data{"title": "x"})
	assert.True(t, IsUnauthorized(err))

	updated, err := m.Update(owner, "tips", doc.ID, Data{"title": "Cool room"})
	require.NoError(t, err)
	assert.Equal(t, "Cool room", updated.Data.String("title"))

	inc, err := m.Increment(stranger, "tips", doc.ID, map[string]float64{"ratingCount": 1, "ratingSum": 4})
	require.NoError(t, err)
	assert.Equal(t, 1, inc.Data.Int("ratingCount"))
	assert.Equal(t, 4.0, inc.Data.Float("ratingSum"))

	assert.True(t, IsUnauthorized(m.Delete(stranger, "tips", doc.ID)))
	require.NoError(t, m.Delete(owner, "tips", doc.ID))
	assert.ErrorIs(t, m.Delete(owner, "tips", doc.ID), ErrNotFound)

	_, err = m.Get(owner, "tips", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoList(t *testing.T) {
	m := setupTestMongo(t)
	ctx := context.Background()

	for _, d := range []Data{
		{"tipID": "t1", "userID": "a", "rating": 5},
		{"tipID": "t1", "userID": "b", "rating": 3},
		{"tipID": "t2", "userID": "a", "rating": 1},
	} {
		_, err := m.Create(ctx, "ratings", "", d, PublicRead())
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	all, err := m.List(ctx, "ratings")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t2", all[0].Data.String("tipID"))

	t1, err := m.List(ctx, "ratings", Equal("tipID", "t1"), OrderAsc("rating"), Limit(1))
	require.NoError(t, err)
	require.Len(t, t1, 1)
	assert.Equal(t, 3, t1[0].Data.Int("rating"))
}

func TestMongoLegacyStringTimestamp(t *testing.T) {
	m := setupTestMongo(t)
	ctx := context.Background()

	_, err := m.DB.Collection("tips").InsertOne(ctx, bson.M{
		"_id":         "legacy",
		"title":       "old",
		"createdAt":   "2023-01-02T03:04:05Z",
		"permissions": []string{"read(any)"},
	})
	require.NoError(t, err)

	got, err := m.Get(ctx, "tips", "legacy")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), got.CreatedAt)
}
