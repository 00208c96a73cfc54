package lookups

import "time"

// TimeRange limits a leaderboard to recently created tips
type TimeRange string

// Symbols of legal values
const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeAll   TimeRange = "all"
)

// Window returns the trailing duration of the range; zero means unbounded
func (r TimeRange) Window() time.Duration {
	switch r {
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Valid reports whether r is one of the known ranges
func (r TimeRange) Valid() bool {
	return r == RangeWeek || r == RangeMonth || r == RangeAll
}

// Direction selects best-first or worst-first ordering
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

func (d Direction) Valid() bool {
	return d == DirectionTop || d == DirectionBottom
}
