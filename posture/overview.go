package posture

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

// recentLimit is how many recent violations and evaluations an overview
// carries.
const recentLimit = 10

// Overview is the tenant-wide posture summary backing the dashboard.
// Counts and scores default to zero when a tenant has no data.
type Overview struct {
	// TenantID identifies the summarized tenant.
	TenantID string `json:"tenant_id"`

	// Timeframe is the trend window the overview was computed with.
	Timeframe Timeframe `json:"timeframe"`

	// GeneratedAt is when the overview was computed.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalResources counts the tenant's currently-valid resources.
	TotalResources int `json:"total_resources"`

	// TotalViolations counts the tenant's violations. It always equals
	// the sum of ViolationsBySeverity.
	TotalViolations int `json:"total_violations"`

	// ViolationsBySeverity breaks TotalViolations down per severity.
	// Every valid severity is present, zero when empty.
	ViolationsBySeverity map[risk.Severity]int `json:"violations_by_severity"`

	// ActivePolicies counts enabled platform policies.
	ActivePolicies int `json:"active_policies"`

	// ComplianceScore is the mean overall score across the tenant's
	// compliance reports, 0.0 when there are none.
	ComplianceScore float64 `json:"compliance_score"`

	// RiskScore is the mean risk score over resources that carry one,
	// 0.0 when none do.
	RiskScore float64 `json:"risk_score"`

	// LastScan is the most recent resource scan time, or GeneratedAt
	// when no resource has been scanned.
	LastScan time.Time `json:"last_scan"`

	// RecentViolations holds the newest violations, timestamp descending.
	RecentViolations []graph.Violation `json:"recent_violations"`

	// RecentEvaluations holds the newest evaluations, timestamp
	// descending.
	RecentEvaluations []graph.Evaluation `json:"recent_evaluations"`

	// Trends holds the daily series for the requested timeframe.
	Trends Trends `json:"trends"`
}

// Aggregator computes tenant posture summaries. Every query is stateless
// and read-only: results are re-derived from currently-valid graph state
// on each call, never cached, since the graph mutates between calls.
type Aggregator struct {
	selector *graph.Selector
	logger   *zap.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// NewAggregator creates an Aggregator reading through the given selector.
func NewAggregator(selector *graph.Selector, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		selector: selector,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Overview computes the tenant's posture summary for the timeframe. The
// independent sub-queries fan out concurrently and are joined before the
// result is assembled.
func (a *Aggregator) Overview(ctx context.Context, tenantID string, timeframe Timeframe) (Overview, error) {
	if !timeframe.IsValid() {
		timeframe = Last7Days
	}
	now := time.Now().UTC()
	scope := graph.NewScope(tenantID).At(now)

	var (
		resources   []graph.Resource
		violations  []graph.Violation
		policies    []graph.Policy
		reports     []graph.ComplianceReport
		evaluations []graph.Evaluation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resources, err = a.selector.Resources(gctx, scope, graph.ResourceFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		violations, err = a.selector.Violations(gctx, scope, graph.ViolationFilter{})
		return err
	})
	g.Go(func() error {
		enabled := true
		var err error
		policies, err = a.selector.Policies(gctx, graph.PolicyFilter{Enabled: &enabled})
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = a.selector.ComplianceReports(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		evaluations, err = a.selector.Evaluations(gctx, scope, graph.EvaluationFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	o := Overview{
		TenantID:             tenantID,
		Timeframe:            timeframe,
		GeneratedAt:          now,
		TotalResources:       len(resources),
		TotalViolations:      len(violations),
		ViolationsBySeverity: countBySeverity(violations),
		ActivePolicies:       len(policies),
		ComplianceScore:      meanReportScore(reports),
		RiskScore:            meanRiskScore(resources),
		LastScan:             lastScan(resources, now),
		RecentViolations:     violations[:min(recentLimit, len(violations))],
		RecentEvaluations:    evaluations[:min(recentLimit, len(evaluations))],
		Trends:               a.trends(timeframe, now, resources, violations, reports, evaluations),
	}

	a.logger.Debug("computed posture overview",
		zap.String("tenant_id", tenantID),
		zap.String("timeframe", timeframe.String()),
		zap.Int("resources", o.TotalResources),
		zap.Int("violations", o.TotalViolations))
	return o, nil
}

func (a *Aggregator) trends(timeframe Timeframe, now time.Time, resources []graph.Resource, violations []graph.Violation, reports []graph.ComplianceReport, evaluations []graph.Evaluation) Trends {
	start := timeframe.Window(now)

	violationTimes := make([]time.Time, len(violations))
	for i := range violations {
		violationTimes[i] = violations[i].Timestamp
	}
	evaluationTimes := make([]time.Time, len(evaluations))
	for i := range evaluations {
		evaluationTimes[i] = evaluations[i].Timestamp
	}

	var scanTimes []time.Time
	var riskSamples []sample
	for i := range resources {
		if resources[i].LastScanned.IsZero() {
			continue
		}
		scanTimes = append(scanTimes, resources[i].LastScanned)
		if resources[i].RiskScore != nil {
			riskSamples = append(riskSamples, sample{at: resources[i].LastScanned, value: *resources[i].RiskScore})
		}
	}

	complianceSamples := make([]sample, len(reports))
	for i := range reports {
		complianceSamples[i] = sample{at: reports[i].GeneratedAt, value: reports[i].OverallScore}
	}

	return Trends{
		Violations:  countByDay(violationTimes, start),
		RiskScore:   averageByDay(riskSamples, start),
		Compliance:  averageByDay(complianceSamples, start),
		Resources:   countByDay(scanTimes, start),
		Evaluations: countByDay(evaluationTimes, start),
	}
}

func countBySeverity(violations []graph.Violation) map[risk.Severity]int {
	counts := make(map[risk.Severity]int, len(risk.AllSeverities()))
	for _, sev := range risk.AllSeverities() {
		counts[sev] = 0
	}
	for i := range violations {
		counts[violations[i].Severity]++
	}
	return counts
}

func meanReportScore(reports []graph.ComplianceReport) float64 {
	if len(reports) == 0 {
		return 0.0
	}
	var sum float64
	for i := range reports {
		sum += reports[i].OverallScore
	}
	return sum / float64(len(reports))
}

func meanRiskScore(resources []graph.Resource) float64 {
	var sum float64
	var n int
	for i := range resources {
		if resources[i].RiskScore != nil {
			sum += *resources[i].RiskScore
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

func lastScan(resources []graph.Resource, fallback time.Time) time.Time {
	last := time.Time{}
	for i := range resources {
		if resources[i].LastScanned.After(last) {
			last = resources[i].LastScanned
		}
	}
	if last.IsZero() {
		return fallback
	}
	return last
}
