package posture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

const testTenant = "tenant-a"

func seedViolation(t *testing.T, store *graph.MemoryStore, severity risk.Severity, at time.Time) {
	t.Helper()
	v := graph.NewViolation(testTenant, "pol-1", "res-1", severity)
	v.Timestamp = at
	require.NoError(t, store.AddViolation(*v))
}

func seedEvaluation(t *testing.T, store *graph.MemoryStore, at time.Time) {
	t.Helper()
	e := graph.Evaluation{
		ID:        uuid.New().String(),
		TenantID:  testTenant,
		Type:      "scheduled",
		Status:    graph.EvaluationPending,
		Timestamp: at,
	}
	require.NoError(t, store.AddEvaluation(e))
}

func seedResource(t *testing.T, store *graph.MemoryStore, riskScore float64, scannedAt time.Time) {
	t.Helper()
	r := graph.NewResource(testTenant, "vm").WithRiskScore(riskScore)
	r.LastScanned = scannedAt
	require.NoError(t, store.AddResource(*r))
}

func TestOverviewEmptyTenant(t *testing.T) {
	store := graph.NewMemoryStore()
	agg := NewAggregator(graph.NewSelector(store))

	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	assert.Equal(t, 0, o.TotalResources)
	assert.Equal(t, 0, o.TotalViolations)
	assert.Equal(t, 0, o.ActivePolicies)
	assert.Equal(t, 0.0, o.ComplianceScore)
	assert.Equal(t, 0.0, o.RiskScore)
	assert.False(t, o.LastScan.IsZero())
	assert.Empty(t, o.RecentViolations)
	assert.Empty(t, o.RecentEvaluations)
	for _, sev := range risk.AllSeverities() {
		assert.Equal(t, 0, o.ViolationsBySeverity[sev])
	}
}

func TestOverviewSeverityCountsSumToTotal(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	seedViolation(t, store, risk.SeverityCritical, now)
	seedViolation(t, store, risk.SeverityCritical, now.Add(-time.Hour))
	seedViolation(t, store, risk.SeverityHigh, now.Add(-2*time.Hour))
	seedViolation(t, store, risk.SeverityMedium, now.Add(-3*time.Hour))
	seedViolation(t, store, risk.SeverityInfo, now.Add(-4*time.Hour))

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	assert.Equal(t, 5, o.TotalViolations)
	sum := 0
	for _, n := range o.ViolationsBySeverity {
		sum += n
	}
	assert.Equal(t, o.TotalViolations, sum)
	assert.Equal(t, 2, o.ViolationsBySeverity[risk.SeverityCritical])
	assert.Equal(t, 1, o.ViolationsBySeverity[risk.SeverityHigh])
	assert.Equal(t, 0, o.ViolationsBySeverity[risk.SeverityLow])
}

func TestOverviewScoresAndLastScan(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	seedResource(t, store, 0.2, now.Add(-2*time.Hour))
	seedResource(t, store, 0.8, now.Add(-time.Hour))
	// A resource without a risk score stays out of the mean.
	r := graph.NewResource(testTenant, "bucket")
	r.LastScanned = now.Add(-30 * time.Minute)
	require.NoError(t, store.AddResource(*r))

	store.AddComplianceReport(graph.ComplianceReport{
		TenantID: testTenant, OverallScore: 80, Status: "passing", GeneratedAt: now.Add(-time.Hour),
	})
	store.AddComplianceReport(graph.ComplianceReport{
		TenantID: testTenant, OverallScore: 60, Status: "failing", GeneratedAt: now,
	})

	store.AddPolicy(graph.Policy{ID: "p1", Name: "encrypt-at-rest", Severity: risk.SeverityHigh, Enabled: true})
	store.AddPolicy(graph.Policy{ID: "p2", Name: "deprecated", Severity: risk.SeverityLow, Enabled: false})

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	assert.Equal(t, 3, o.TotalResources)
	assert.InDelta(t, 0.5, o.RiskScore, 1e-9)
	assert.InDelta(t, 70.0, o.ComplianceScore, 1e-9)
	assert.Equal(t, 1, o.ActivePolicies)
	assert.WithinDuration(t, now.Add(-30*time.Minute), o.LastScan, time.Second)
}

func TestOverviewRecentListsCappedAtTen(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	for i := 0; i < 15; i++ {
		seedViolation(t, store, risk.SeverityLow, now.Add(-time.Duration(i)*time.Minute))
		seedEvaluation(t, store, now.Add(-time.Duration(i)*time.Minute))
	}

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	assert.Equal(t, 15, o.TotalViolations)
	require.Len(t, o.RecentViolations, 10)
	require.Len(t, o.RecentEvaluations, 10)
	for i := 1; i < len(o.RecentViolations); i++ {
		assert.False(t, o.RecentViolations[i].Timestamp.After(o.RecentViolations[i-1].Timestamp))
	}
}

func TestTrendsSevenDayWindow(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	// Events across 14 days; only the last 7 calendar days may appear.
	for day := 0; day < 14; day++ {
		seedViolation(t, store, risk.SeverityMedium, now.AddDate(0, 0, -day))
	}

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	series := o.Trends.Violations
	assert.LessOrEqual(t, len(series), 7)
	start := Last7Days.Window(now)
	for _, p := range series {
		assert.False(t, p.Date.Before(start), "point %v precedes window start %v", p.Date, start)
	}
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.Before(series[i].Date))
	}
}

func TestTrendsAreSparse(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	// Two active days with a gap between them.
	seedViolation(t, store, risk.SeverityHigh, now)
	seedViolation(t, store, risk.SeverityHigh, now)
	seedViolation(t, store, risk.SeverityHigh, now.AddDate(0, 0, -4))

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)

	series := o.Trends.Violations
	require.Len(t, series, 2)
	assert.Equal(t, 1.0, series[0].Value)
	assert.Equal(t, 2.0, series[1].Value)
}

func TestTrendsAverageRiskPerDay(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	seedResource(t, store, 0.4, now)
	seedResource(t, store, 0.8, now)

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last24Hours)
	require.NoError(t, err)

	require.Len(t, o.Trends.RiskScore, 1)
	assert.InDelta(t, 0.6, o.Trends.RiskScore[0].Value, 1e-9)
	require.Len(t, o.Trends.Resources, 1)
	assert.Equal(t, 2.0, o.Trends.Resources[0].Value)
}

func TestOverviewInvalidTimeframeDefaults(t *testing.T) {
	agg := NewAggregator(graph.NewSelector(graph.NewMemoryStore()))
	o, err := agg.Overview(context.Background(), testTenant, Timeframe("bogus"))
	require.NoError(t, err)
	assert.Equal(t, Last7Days, o.Timeframe)
}

func TestOverviewIsolatedPerTenant(t *testing.T) {
	store := graph.NewMemoryStore()
	now := time.Now().UTC()
	seedViolation(t, store, risk.SeverityCritical, now)
	other := graph.NewViolation("tenant-b", "pol-9", "res-9", risk.SeverityCritical)
	require.NoError(t, store.AddViolation(*other))

	agg := NewAggregator(graph.NewSelector(store))
	o, err := agg.Overview(context.Background(), testTenant, Last7Days)
	require.NoError(t, err)
	assert.Equal(t, 1, o.TotalViolations)
}

func TestTimeframeParsing(t *testing.T) {
	for _, tf := range AllTimeframes() {
		parsed, err := ParseTimeframe(tf.String())
		require.NoError(t, err)
		assert.Equal(t, tf, parsed)
	}
	_, err := ParseTimeframe("last_year")
	assert.Error(t, err)
}

func TestTimeframeWindowAlignment(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		timeframe Timeframe
		want      time.Time
	}{
		{Last24Hours, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{Last7Days, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{Last30Days, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.timeframe.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.timeframe.Window(now))
		})
	}
}

func ExampleAggregator_Overview() {
	store := graph.NewMemoryStore()
	agg := NewAggregator(graph.NewSelector(store))

	o, err := agg.Overview(context.Background(), "tenant-a", Last7Days)
	if err != nil {
		panic(err)
	}
	fmt.Println(o.TotalResources, o.TotalViolations)
	// Output: 0 0
}
