package posture

import (
	"fmt"
	"time"
)

// Timeframe selects the trend window for an overview query.
type Timeframe string

const (
	// Last24Hours covers the current UTC calendar day, not a trailing
	// 24-hour window: shortly after midnight UTC it holds only minutes
	// of data. Windows are day-aligned so series bucket cleanly.
	Last24Hours Timeframe = "last_24_hours"

	// Last7Days covers the last 7 calendar days including today.
	Last7Days Timeframe = "last_7_days"

	// Last30Days covers the last 30 calendar days including today.
	Last30Days Timeframe = "last_30_days"

	// Last90Days covers the last 90 calendar days including today.
	Last90Days Timeframe = "last_90_days"
)

// IsValid returns true if the timeframe is a recognized value.
func (t Timeframe) IsValid() bool {
	switch t {
	case Last24Hours, Last7Days, Last30Days, Last90Days:
		return true
	default:
		return false
	}
}

// String returns the string representation of the timeframe.
func (t Timeframe) String() string {
	return string(t)
}

// Days returns the number of calendar days the timeframe spans.
func (t Timeframe) Days() int {
	switch t {
	case Last24Hours:
		return 1
	case Last7Days:
		return 7
	case Last30Days:
		return 30
	case Last90Days:
		return 90
	default:
		return 7
	}
}

// Window returns the inclusive start of the timeframe relative to now.
// The start is aligned to a UTC calendar day boundary so a series over N
// days yields at most N daily buckets.
func (t Timeframe) Window(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(t.Days() - 1))
}

// ParseTimeframe converts a string into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	t := Timeframe(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid timeframe: %s", s)
	}
	return t, nil
}

// AllTimeframes returns all valid timeframes.
func AllTimeframes() []Timeframe {
	return []Timeframe{Last24Hours, Last7Days, Last30Days, Last90Days}
}
