package models

import (
	"context"
	"math"

	"sleep-tips/apperror"
	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"
	"sleep-tips/lookups"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// rating bounds
const (
	RatingMin = 1
	RatingMax = 5
)

// fixed result caps
const (
	ratingRemoveLimit = 50
	ratingUserLimit   = 100
)

// Rating is a single user's vote on a tip
type Rating struct {
	Header
	TipID  string `json:"tipID"`
	UserID string `json:"userID"`
	Value  int    `json:"rating"`
}

// RateResult tells which path recorded a vote
type RateResult struct {
	Rating *Rating `json:"rating,omitempty"`
	// Fallback is set when the vote went into the tip's counters instead of a Rating record
	Fallback  bool            `json:"fallback"`
	Aggregate RatingAggregate `json:"aggregate"`
}

// UserRating is a user's vote as returned by ListForUser
type UserRating struct {
	RatingID string `json:"ratingId"`
	Value    int    `json:"value"`
}

// RatingModel provides the logic to the interface and access to the document store
type RatingModel struct {
	Store      docstore.Store
	Collection string
	Tips       string
	// AggregateFallback enables the denormalized counters on the tip when per-user
	// records can not be written. Counter votes are not deduplicated per user.
	// Off by default (RATING_AGGREGATE_FALLBACK): Rate then fails when the rating
	// collection rejects the write and Remove never touches the counters.
	AggregateFallback bool
}

func ratingFromDocument(doc *docstore.Document) Rating {
	return Rating{
		Header: headerOf(doc),
		TipID:  ratingTipID(doc.Data),
		UserID: doc.Data.String("userID"),
		Value:  doc.Data.Int("rating"),
	}
}

// ValidateRating rejects everything but integers within 1..5
func ValidateRating(value float64) (int, error) {
	if value != math.Trunc(value) || value < RatingMin || value > RatingMax {
		return 0, ErrRatingOutOfRange
	}
	return int(value), nil
}

// Rate records the user's vote: an existing Rating of the user is updated, otherwise one is created
func (m RatingModel) Rate(ctx context.Context, tipID string, userID string, value int) (*RateResult, error) {
	if value < RatingMin || value > RatingMax {
		return nil, ErrRatingOutOfRange
	}
	if userID == "" {
		return nil, apperror.ErrNotLoggedIn
	}

	ctx = docstore.WithUser(ctx, userID)

	rating, err := m.upsert(ctx, tipID, userID, value)
	if err == nil {
		return &RateResult{Rating: rating}, nil
	}

	if !m.AggregateFallback {
		logger.L.Error("rating not recorded", zap.String("tip", tipID), zap.Error(err))
		if docstore.IsUnauthorized(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	logger.L.Warn("rating collection write failed, using tip counters", zap.String("tip", tipID), zap.Error(err))

	agg, fbErr := m.addToCounters(ctx, tipID, value)
	if fbErr != nil {
		logger.L.Error("rating fallback failed", zap.String("tip", tipID), zap.Error(fbErr))
		return nil, multierr.Combine(ErrRatingNotRecorded, err, fbErr)
	}

	return &RateResult{Fallback: true, Aggregate: agg}, nil
}

func (m RatingModel) upsert(ctx context.Context, tipID string, userID string, value int) (*Rating, error) {
	existing, err := m.userRatings(ctx, tipID, userID, 1)
	if err != nil {
		return nil, err
	}

	var doc *docstore.Document
	if len(existing) > 0 {
		doc, err = m.Store.Update(ctx, m.Collection, existing[0].ID, docstore.Data{"rating": value})
	} else {
		data := docstore.Data{
			lookups.RatingTipKeys[0]: tipID,
			"userID":                 userID,
			"rating":                 value,
		}
		doc, err = m.Store.Create(ctx, m.Collection, "", data, docstore.OwnerPermissions(userID))
	}
	if err != nil {
		return nil, err
	}

	rating := ratingFromDocument(doc)
	return &rating, nil
}

// userRatings collects the user's ratings on the tip under every legacy tip key, up to limit
func (m RatingModel) userRatings(ctx context.Context, tipID string, userID string, limit int) ([]*docstore.Document, error) {
	seen := make(map[string]bool)
	found := make([]*docstore.Document, 0)
	for _, key := range lookups.RatingTipKeys {
		docs, err := m.Store.List(ctx, m.Collection,
			docstore.Equal(key, tipID),
			docstore.Equal("userID", userID),
			docstore.Limit(limit))
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			found = append(found, doc)
			if len(found) >= limit {
				return found, nil
			}
		}
	}
	return found, nil
}

// addToCounters counts the vote as a new one on the tip's counters
func (m RatingModel) addToCounters(ctx context.Context, tipID string, value int) (RatingAggregate, error) {
	doc, err := m.Store.Increment(ctx, m.Tips, tipID, map[string]float64{
		"ratingCount": 1,
		"ratingSum":   float64(value),
	})
	if err != nil {
		return RatingAggregate{}, err
	}

	agg := tipAggregate(doc)
	m.rewriteAverage(ctx, tipID, agg)
	return agg, nil
}

// rewriteAverage keeps the stored averageRating in line with the counters (best effort,
// readers derive the average from the counters anyway)
func (m RatingModel) rewriteAverage(ctx context.Context, tipID string, agg RatingAggregate) {
	_, err := m.Store.Update(ctx, m.Tips, tipID, docstore.Data{"averageRating": round2(agg.Average())})
	if err != nil {
		logger.L.Debug("averageRating not rewritten", zap.String("tip", tipID), zap.Error(err))
	}
}

// Remove deletes the user's ratings on the tip. Without any Rating record the tip's counters
// lose one vote worth the current average (fallback only). Returns whether anything was removed.
func (m RatingModel) Remove(ctx context.Context, tipID string, userID string) (bool, error) {
	if userID == "" {
		return false, apperror.ErrNotLoggedIn
	}

	ctx = docstore.WithUser(ctx, userID)

	docs, err := m.userRatings(ctx, tipID, userID, ratingRemoveLimit)
	if err != nil {
		return false, readError(err, helpers.FuncName())
	}

	for _, doc := range docs {
		if err := m.Store.Delete(ctx, m.Collection, doc.ID); err != nil {
			return false, writeError(ctx, err, nil, userID, helpers.FuncName())
		}
	}
	if len(docs) > 0 {
		return true, nil
	}

	if !m.AggregateFallback {
		return false, nil
	}

	return m.removeFromCounters(ctx, tipID)
}

// removeFromCounters subtracts the current average since the original vote is not retained
func (m RatingModel) removeFromCounters(ctx context.Context, tipID string) (bool, error) {
	tip, err := m.Store.Get(ctx, m.Tips, tipID)
	if err != nil {
		return false, readError(err, helpers.FuncName())
	}

	agg := tipAggregate(tip)
	if agg.Count == 0 && agg.Sum == 0 {
		return false, nil
	}

	average := agg.Average()
	if _, stored := tip.Data["averageRating"]; stored {
		average = tip.Data.Float("averageRating")
	}
	deltas := map[string]float64{
		"ratingSum": -math.Min(average, agg.Sum),
	}
	if agg.Count > 0 {
		deltas["ratingCount"] = -1
	}

	doc, err := m.Store.Increment(ctx, m.Tips, tipID, deltas)
	if err != nil {
		logger.L.Error("rating counters not decremented", zap.String("tip", tipID), zap.Error(err))
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	m.rewriteAverage(ctx, tipID, tipAggregate(doc))
	return true, nil
}

// ListForUser maps tipID to the vote of the given users (first user wins for a tip),
// restricted to tipIDs when given
func (m RatingModel) ListForUser(ctx context.Context, userIDs []string, tipIDs []string) (map[string]UserRating, error) {
	wanted := make(map[string]bool, len(tipIDs))
	for _, id := range tipIDs {
		wanted[id] = true
	}

	result := make(map[string]UserRating)
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}

		docs, err := m.Store.List(ctx, m.Collection,
			docstore.Equal("userID", userID),
			docstore.Limit(ratingUserLimit))
		if err != nil {
			return nil, readError(err, helpers.FuncName())
		}

		for _, doc := range docs {
			rating := ratingFromDocument(doc)
			if len(wanted) > 0 && !wanted[rating.TipID] {
				continue
			}
			if _, seen := result[rating.TipID]; seen {
				continue
			}
			result[rating.TipID] = UserRating{RatingID: rating.ID, Value: rating.Value}
		}
	}

	return result, nil
}
