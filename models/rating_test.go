package models

import (
	"context"
	"testing"

	"sleep-tips/apperror"
	"sleep-tips/docstore"
	"sleep-tips/lookups"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatingFixture(t *testing.T, fallback bool) (*docstore.Memory, RatingModel, *Tip) {
	t.Helper()

	mem := newTestStore()
	tips := TipModel{Store: mem, Collection: CollectionTips}
	tip, err := tips.Create(context.Background(), "author", docstore.Data{"title": "Cool room", "status": "published"})
	require.NoError(t, err)

	return mem, RatingModel{
		Store:             mem,
		Collection:        CollectionRatings,
		Tips:              CollectionTips,
		AggregateFallback: fallback,
	}, tip
}

func TestValidateRating(t *testing.T) {
	tests := []struct {
		in      float64
		want    int
		wantErr bool
	}{
		{1, 1, false},
		{5, 5, false},
		{3, 3, false},
		{0, 0, true},
		{6, 0, true},
		{2.5, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		got, err := ValidateRating(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrRatingOutOfRange, "value %v", tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRateRejectsInvalidValueBeforeStore(t *testing.T) {
	mem, m, tip := newRatingFixture(t, true)
	ctx := context.Background()

	for _, v := range []int{0, 6, -3} {
		_, err := m.Rate(ctx, tip.ID, "userA", v)
		assert.ErrorIs(t, err, ErrRatingOutOfRange)
	}

	docs, err := mem.List(ctx, CollectionRatings)
	require.NoError(t, err)
	assert.Empty(t, docs)

	got, err := mem.Get(ctx, CollectionTips, tip.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Data.Int("ratingCount"))
}

func TestRateRequiresUser(t *testing.T) {
	_, m, tip := newRatingFixture(t, false)

	_, err := m.Rate(context.Background(), tip.ID, "", 3)
	assert.ErrorIs(t, err, apperror.ErrNotLoggedIn)
}

func TestRateUpsert(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	ctx := context.Background()

	for _, r := range []int{1, 2, 3, 4, 5} {
		res, err := m.Rate(ctx, tip.ID, "userA", r)
		require.NoError(t, err)
		require.NotNil(t, res.Rating)
		assert.False(t, res.Fallback)
		assert.Equal(t, r, res.Rating.Value)

		got, err := m.ListForUser(ctx, []string{"userA"}, []string{tip.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, r, got[tip.ID].Value)
	}

	docs, err := mem.List(ctx, CollectionRatings, docstore.Equal("userID", "userA"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.ElementsMatch(t, docstore.OwnerPermissions("userA"), docs[0].Permissions)

	// the tip's counters are untouched by per-user ratings
	got, err := mem.Get(ctx, CollectionTips, tip.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Data.Int("ratingCount"))
}

func TestRateWithoutFallback(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	mem.Lock(CollectionRatings)
	ctx := context.Background()

	_, err := m.Rate(ctx, tip.ID, "userA", 4)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	got, err := mem.Get(ctx, CollectionTips, tip.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Data.Int("ratingCount"))
}

func TestRateFallbackCounters(t *testing.T) {
	mem, m, tip := newRatingFixture(t, true)
	mem.Lock(CollectionRatings)
	ctx := context.Background()

	res, err := m.Rate(ctx, tip.ID, "userA", 4)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Nil(t, res.Rating)
	assert.Equal(t, RatingAggregate{Sum: 4, Count: 1}, res.Aggregate)

	// repeat votes are counted again on this path
	res, err = m.Rate(ctx, tip.ID, "userA", 2)
	require.NoError(t, err)
	assert.Equal(t, RatingAggregate{Sum: 6, Count: 2}, res.Aggregate)
	assert.Equal(t, 3.0, res.Aggregate.Average())

	tips := TipModel{Store: mem, Collection: CollectionTips}
	got, err := tips.Get(ctx, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RatingCount)
	assert.Equal(t, 3.0, got.AverageRating)
}

func TestRateFallbackFails(t *testing.T) {
	mem, m, _ := newRatingFixture(t, true)
	mem.Lock(CollectionRatings)

	_, err := m.Rate(context.Background(), "missing-tip", "userA", 4)
	assert.ErrorIs(t, err, ErrRatingNotRecorded)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestRemoveRating(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	ctx := context.Background()

	_, err := m.Rate(ctx, tip.ID, "userA", 5)
	require.NoError(t, err)
	_, err = m.Rate(ctx, tip.ID, "userB", 3)
	require.NoError(t, err)

	removed, err := m.Remove(ctx, tip.ID, "userB")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Remove(ctx, tip.ID, "userB")
	require.NoError(t, err)
	assert.False(t, removed)

	left, err := mem.List(ctx, CollectionRatings)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "userA", left[0].Data.String("userID"))
}

func TestRemoveRatingFromCounters(t *testing.T) {
	mem, m, tip := newRatingFixture(t, true)
	ctx := context.Background()

	_, err := mem.Update(docstore.WithUser(ctx, "author"), CollectionTips, tip.ID, docstore.Data{
		"ratingCount":   2,
		"ratingSum":     7.0,
		"averageRating": 3.5,
	})
	require.NoError(t, err)

	removed, err := m.Remove(ctx, tip.ID, "userA")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := mem.Get(ctx, CollectionTips, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Data.Int("ratingCount"))
	assert.Equal(t, 3.5, got.Data.Float("ratingSum"))

	// clamped at zero
	_, err = mem.Update(docstore.WithUser(ctx, "author"), CollectionTips, tip.ID, docstore.Data{
		"ratingCount":   1,
		"ratingSum":     1.0,
		"averageRating": 4.0,
	})
	require.NoError(t, err)

	removed, err = m.Remove(ctx, tip.ID, "userA")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = mem.Get(ctx, CollectionTips, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Data.Int("ratingCount"))
	assert.Equal(t, 0.0, got.Data.Float("ratingSum"))

	removed, err = m.Remove(ctx, tip.ID, "userA")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListForUser(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	ctx := context.Background()

	other, err := TipModel{Store: mem, Collection: CollectionTips}.Create(ctx, "author", docstore.Data{"title": "No coffee"})
	require.NoError(t, err)

	_, err = m.Rate(ctx, tip.ID, "userA", 4)
	require.NoError(t, err)
	_, err = m.Rate(ctx, other.ID, "userA", 2)
	require.NoError(t, err)
	_, err = m.Rate(ctx, tip.ID, "userB", 1)
	require.NoError(t, err)

	all, err := m.ListForUser(ctx, []string{"userA"}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, all[other.ID].Value)
	assert.NotEmpty(t, all[other.ID].RatingID)

	filtered, err := m.ListForUser(ctx, []string{"userA"}, []string{other.ID})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	none, err := m.ListForUser(ctx, []string{"nobody"}, []string{tip.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRateReplacesLegacyKeyedRating(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	ctx := context.Background()
	ranking := RankingModel{Store: mem, Tips: CollectionTips, Ratings: CollectionRatings}

	mem.Put(CollectionRatings, docstore.Document{
		Data:        docstore.Data{"tipId": tip.ID, "userID": "userA", "rating": 5},
		Permissions: docstore.OwnerPermissions("userA"),
	})

	res, err := m.Rate(ctx, tip.ID, "userA", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rating.Value)

	docs, err := mem.List(ctx, CollectionRatings)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	ranked, err := ranking.Rank(ctx, lookups.RangeAll, 10, lookups.DirectionTop)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1.0, ranked[0].AverageRating)
	assert.Equal(t, 1, ranked[0].RatingCount)

	removed, err := m.Remove(ctx, tip.ID, "userA")
	require.NoError(t, err)
	assert.True(t, removed)

	ranked, err = ranking.Rank(ctx, lookups.RangeAll, 10, lookups.DirectionTop)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Zero(t, ranked[0].RatingCount)
}

func TestRemoveCollectsEveryTipKey(t *testing.T) {
	mem, m, tip := newRatingFixture(t, false)
	ctx := context.Background()

	_, err := m.Rate(ctx, tip.ID, "userA", 4)
	require.NoError(t, err)
	mem.Put(CollectionRatings, docstore.Document{
		Data:        docstore.Data{"tipId": tip.ID, "userID": "userA", "rating": 2},
		Permissions: docstore.OwnerPermissions("userA"),
	})

	removed, err := m.Remove(ctx, tip.ID, "userA")
	require.NoError(t, err)
	assert.True(t, removed)

	left, err := mem.List(ctx, CollectionRatings)
	require.NoError(t, err)
	assert.Empty(t, left)
}
