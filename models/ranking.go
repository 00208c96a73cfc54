package models

import (
	"context"
	"sort"
	"time"

	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/lookups"
)

// fixed fetch caps, the leaderboard is only exact while both collections stay below them
const (
	rankingTipLimit    = 500
	rankingRatingLimit = 2000
	// DefaultRankingLimit is used for limit <= 0
	DefaultRankingLimit = 10
)

// RankedTip is a tip with its resolved rating
type RankedTip struct {
	Tip
	Rank int `json:"rank"`
	// FromRatings is set when the average was computed from per-user ratings
	FromRatings bool `json:"fromRatings"`
}

// RankingModel computes leaderboards on read
type RankingModel struct {
	Store   docstore.Store
	Tips    string
	Ratings string
	Now     func() time.Time
}

func (m RankingModel) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Rank returns up to limit published tips ordered by average rating
func (m RankingModel) Rank(ctx context.Context, timeRange lookups.TimeRange, limit int, direction lookups.Direction) ([]RankedTip, error) {
	if !timeRange.Valid() {
		return nil, ErrInvalidTimeRange
	}
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	candidates, err := m.candidates(ctx, timeRange)
	if err != nil {
		return nil, err
	}

	aggregates, err := m.aggregates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedTip, 0, len(candidates))
	for _, doc := range candidates {
		entry := RankedTip{Tip: tipFromDocument(doc)}

		agg, ok := aggregates[doc.ID]
		if ok {
			entry.FromRatings = true
		} else {
			agg = tipAggregate(doc)
		}
		entry.RatingCount = agg.Count
		entry.RatingSum = agg.Sum
		entry.AverageRating = agg.Average()

		ranked = append(ranked, entry)
	}

	// ties keep the newest-first order of the candidates
	sort.SliceStable(ranked, func(i, j int) bool {
		if direction == lookups.DirectionBottom {
			return ranked[i].AverageRating < ranked[j].AverageRating
		}
		return ranked[i].AverageRating > ranked[j].AverageRating
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked, nil
}

// candidates are the newest published tips, created within the range
func (m RankingModel) candidates(ctx context.Context, timeRange lookups.TimeRange) ([]*docstore.Document, error) {
	docs, err := m.Store.List(ctx, m.Tips,
		docstore.Equal("status", lookups.TipStatusPublished),
		docstore.OrderDesc(docstore.FieldCreatedAt),
		docstore.Limit(rankingTipLimit))
	if err != nil {
		return nil, readError(err, helpers.FuncName())
	}

	window := timeRange.Window()
	if window == 0 {
		return docs, nil
	}

	threshold := m.now().Add(-window)
	filtered := make([]*docstore.Document, 0, len(docs))
	for _, doc := range docs {
		// documents without a usable timestamp can not be placed in a window
		if doc.CreatedAt.IsZero() || doc.CreatedAt.Before(threshold) {
			continue
		}
		filtered = append(filtered, doc)
	}

	return filtered, nil
}

// aggregates sums up the per-user ratings of the candidates
func (m RankingModel) aggregates(ctx context.Context, candidates []*docstore.Document) (map[string]RatingAggregate, error) {
	result := make(map[string]RatingAggregate)
	if len(candidates) == 0 {
		return result, nil
	}

	wanted := make(map[string]bool, len(candidates))
	for _, doc := range candidates {
		wanted[doc.ID] = true
	}

	ratings, err := m.Store.List(ctx, m.Ratings, docstore.Limit(rankingRatingLimit))
	if err != nil {
		return nil, readError(err, helpers.FuncName())
	}

	for _, r := range ratings {
		tipID := ratingTipID(r.Data)
		if !wanted[tipID] {
			continue
		}
		agg := result[tipID]
		agg.Add(r.Data.Float("rating"))
		result[tipID] = agg
	}

	return result, nil
}

func ratingTipID(d docstore.Data) string {
	if k, ok := lookups.FirstKey(d, lookups.RatingTipKeys); ok {
		return d.String(k)
	}
	return ""
}
