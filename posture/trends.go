package posture

import (
	"sort"
	"time"
)

// TrendPoint is one daily data point in a trend series. Date is the UTC
// calendar day boundary.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Trends holds the daily series backing the dashboard charts. Series are
// sparse: days with no matching events are omitted, not zero-filled, so
// callers must not assume contiguous daily points. Every series is sorted
// ascending by date.
type Trends struct {
	// Violations counts violations detected per day.
	Violations []TrendPoint `json:"violations"`

	// RiskScore averages the risk score of resources scanned per day.
	RiskScore []TrendPoint `json:"risk_score"`

	// Compliance averages compliance report scores generated per day.
	Compliance []TrendPoint `json:"compliance"`

	// Resources counts resources scanned per day.
	Resources []TrendPoint `json:"resources"`

	// Evaluations counts evaluations started per day.
	Evaluations []TrendPoint `json:"evaluations"`
}

// dayBucket truncates an event time to its UTC calendar day.
func dayBucket(at time.Time) time.Time {
	return at.UTC().Truncate(24 * time.Hour)
}

// countByDay buckets event timestamps at or after start into daily counts.
func countByDay(times []time.Time, start time.Time) []TrendPoint {
	counts := make(map[time.Time]int)
	for _, at := range times {
		if at.Before(start) {
			continue
		}
		counts[dayBucket(at)]++
	}
	points := make([]TrendPoint, 0, len(counts))
	for day, n := range counts {
		points = append(points, TrendPoint{Date: day, Value: float64(n)})
	}
	sortPoints(points)
	return points
}

// sample pairs an event time with a value for averaged series.
type sample struct {
	at    time.Time
	value float64
}

// averageByDay buckets samples at or after start into daily means.
func averageByDay(samples []sample, start time.Time) []TrendPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, s := range samples {
		if s.at.Before(start) {
			continue
		}
		day := dayBucket(s.at)
		sums[day] += s.value
		counts[day]++
	}
	points := make([]TrendPoint, 0, len(sums))
	for day, sum := range sums {
		points = append(points, TrendPoint{Date: day, Value: sum / float64(counts[day])})
	}
	sortPoints(points)
	return points
}

func sortPoints(points []TrendPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}
