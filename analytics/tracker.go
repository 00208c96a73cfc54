package analytics

import (
	"context"
	"fmt"
	"time"

	"sleep-tips/client"
	"sleep-tips/database"
	"sleep-tips/helpers"
	"sleep-tips/lookups"
	"sleep-tips/models"

	influxdb2 "github.com/influxdata/influxdb-client-go"
)

// Tracker writes tip events to the analytics store (influxDB). It is always created so
// callers don't need to check for it; Enabled switches the store access.
type Tracker struct {
	Enabled bool
	API     database.InfluxAPI
	// filters page refreshes, may be nil
	Requests *client.Registry
}

// SaveView counts a visit of a tip page; returns false for a refresh of the same client
func (t *Tracker) SaveView(clientIP string, tipID string, userID string) bool {
	if t.Requests != nil && !t.Requests.Continue(clientIP, tipID) {
		return false
	}

	if !t.Enabled {
		return true
	}

	p := influxdb2.NewPoint(
		"view",
		map[string]string{"tipId": tipID},
		map[string]interface{}{"userId": userID},
		time.Now())
	t.API.WriteAPI.WritePoint(p)

	return true
}

// SaveRating records a vote; fallback marks votes that went into the tip counters
func (t *Tracker) SaveRating(tipID string, userID string, value int, fallback bool) {
	if !t.Enabled {
		return
	}

	p := influxdb2.NewPoint(
		"rating",
		map[string]string{"tipId": tipID},
		map[string]interface{}{
			"userId":   userID,
			"value":    value,
			"fallback": fallback,
		},
		time.Now())
	t.API.WriteAPI.WritePoint(p)
}

// SaveRanking stores which tips were shown on a leaderboard at which position
func (t *Tracker) SaveRanking(timeRange lookups.TimeRange, direction lookups.Direction, results []models.RankedTip) {
	if !t.Enabled {
		return
	}

	ts := time.Now()
	for _, v := range results {
		p := influxdb2.NewPoint(
			"ranking",
			map[string]string{"tipId": v.ID},
			map[string]interface{}{
				"range":     string(timeRange),
				"direction": string(direction),
				"rank":      v.Rank,
				"average":   v.AverageRating,
			},
			ts)
		t.API.WriteAPI.WritePoint(p)
	}
}

// viewsQuery counts the views of a tip since start
func viewsQuery(bucket string, tipID string, start time.Time) string {
	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "view" and r["tipId"] == "%s")
		|> count()
		|> yield(name: "count")`

	return fmt.Sprintf(flux, bucket, start.UTC().Format(time.RFC3339), tipID)
}

// GetViews counts the views of a tip since start; -1 if analytics are disabled
func (t *Tracker) GetViews(ctx context.Context, tipID string, start time.Time) (int64, error) {
	if !t.Enabled {
		return -1, nil
	}

	result, err := t.API.QueryAPI.Query(ctx, viewsQuery(t.API.Bucket, tipID, start))
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// only 1 record
	var cnt int64
	for result.Next() {
		if v, ok := result.Record().Value().(int64); ok {
			cnt = v
		}
	}
	if result.Err() != nil {
		return 0, helpers.WrapError(result.Err(), helpers.FuncName())
	}

	return cnt, nil
}
