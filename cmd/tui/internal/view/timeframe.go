package view

import (
	"time"
)

// Timeframe is a date range games can be narrowed to.
type Timeframe int

const (
	TimeframeAll       Timeframe = 0
	TimeframeThisWeek  Timeframe = 1
	TimeframeNextWeek  Timeframe = 2
	TimeframeThisMonth Timeframe = 3
	TimeframeLastMonth Timeframe = 4

	timeframeCount = 5
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeNextWeek:
		return "Next Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	}

	return "Unknown"
}

// Next cycles to the following timeframe.
func (t Timeframe) Next() Timeframe {
	return (t + 1) % timeframeCount
}

// Range returns the inclusive YYYY-MM-DD bounds of t relative to now. Both
// are empty for TimeframeAll. Weeks start on Monday.
func (t Timeframe) Range(now time.Time) (string, string) {
	var start, end time.Time

	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))

	switch t {
	case TimeframeThisWeek:
		start = monday
		end = monday.AddDate(0, 0, 6)
	case TimeframeNextWeek:
		start = monday.AddDate(0, 0, 7)
		end = start.AddDate(0, 0, 6)
	case TimeframeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, -1)
	case TimeframeLastMonth:
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, -1)
	default:
		return "", ""
	}

	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}
