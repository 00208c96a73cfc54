package models

// RatingAggregate is the sum and count of votes on a tip, either accumulated from
// per-user ratings or read from the tip's denormalized counters
type RatingAggregate struct {
	Sum   float64 `json:"ratingSum"`
	Count int     `json:"ratingCount"`
}

// Add accumulates a single vote
func (a *RatingAggregate) Add(value float64) {
	a.Sum += value
	a.Count++
}

// Average is Sum/Count, 0 without votes
func (a RatingAggregate) Average() float64 {
	if a.Count <= 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}
