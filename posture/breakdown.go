package posture

import (
	"context"
	"sort"
	"time"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

// ComplianceBreakdownResult is the per-framework compliance view.
type ComplianceBreakdownResult struct {
	// TenantID identifies the assessed tenant.
	TenantID string `json:"tenant_id"`

	// OverallScore is the mean overall score across the tenant's
	// reports, matching the score an Overview reports.
	OverallScore float64 `json:"overall_score"`

	// Status is the status of the most recent report, "unknown" when
	// the tenant has none.
	Status string `json:"status"`

	// Frameworks holds the per-framework scores from the most recent
	// report.
	Frameworks []graph.FrameworkCompliance `json:"frameworks"`
}

// QueryOption narrows a breakdown query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	environment string
}

// InEnvironment restricts a breakdown to resources in one deployment
// environment. The zero value matches every environment.
func InEnvironment(environment string) QueryOption {
	return func(q *queryOptions) { q.environment = environment }
}

// CloudCount is one entry of a resource distribution.
type CloudCount struct {
	Cloud string `json:"cloud"`
	Count int    `json:"count"`
}

// RiskLevelCount is one entry of a risk distribution.
type RiskLevelCount struct {
	Level risk.Severity `json:"level"`
	Count int           `json:"count"`
}

// ComplianceBreakdown returns the tenant's compliance posture broken down
// by framework. It reads through the same validity-scoped selector as
// Overview so the two views of one tenant never diverge on filtering.
func (a *Aggregator) ComplianceBreakdown(ctx context.Context, tenantID string) (ComplianceBreakdownResult, error) {
	scope := graph.NewScope(tenantID)
	reports, err := a.selector.ComplianceReports(ctx, scope)
	if err != nil {
		return ComplianceBreakdownResult{}, err
	}

	result := ComplianceBreakdownResult{
		TenantID:     tenantID,
		OverallScore: meanReportScore(reports),
		Status:       "unknown",
	}
	if latest := latestReport(reports); latest != nil {
		result.Status = latest.Status
		result.Frameworks = latest.Frameworks
	}
	return result, nil
}

// ResourceDistribution returns the count of currently-valid resources per
// cloud provider, ordered by count descending with ties broken by name.
func (a *Aggregator) ResourceDistribution(ctx context.Context, tenantID string, opts ...QueryOption) ([]CloudCount, error) {
	resources, err := a.validResources(ctx, tenantID, opts)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := range resources {
		counts[resources[i].Cloud]++
	}
	distribution := make([]CloudCount, 0, len(counts))
	for cloud, n := range counts {
		distribution = append(distribution, CloudCount{Cloud: cloud, Count: n})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Cloud < distribution[j].Cloud
	})
	return distribution, nil
}

// RiskDistribution returns the count of currently-valid resources per
// risk level, ordered from critical to minimal. Resources without a risk
// score count as minimal so levels always sum to the resource total.
func (a *Aggregator) RiskDistribution(ctx context.Context, tenantID string, opts ...QueryOption) ([]RiskLevelCount, error) {
	resources, err := a.validResources(ctx, tenantID, opts)
	if err != nil {
		return nil, err
	}

	counts := make(map[risk.Severity]int)
	for i := range resources {
		level := risk.SeverityMinimal
		if resources[i].RiskScore != nil {
			level = risk.ClassifyResourceRisk(*resources[i].RiskScore)
		}
		counts[level]++
	}

	levels := []risk.Severity{
		risk.SeverityCritical,
		risk.SeverityHigh,
		risk.SeverityMedium,
		risk.SeverityLow,
		risk.SeverityMinimal,
	}
	distribution := make([]RiskLevelCount, 0, len(levels))
	for _, level := range levels {
		distribution = append(distribution, RiskLevelCount{Level: level, Count: counts[level]})
	}
	return distribution, nil
}

func (a *Aggregator) validResources(ctx context.Context, tenantID string, opts []QueryOption) ([]graph.Resource, error) {
	var q queryOptions
	for _, opt := range opts {
		opt(&q)
	}
	scope := graph.NewScope(tenantID).At(time.Now().UTC())
	return a.selector.Resources(ctx, scope, graph.ResourceFilter{Environment: q.environment})
}

func latestReport(reports []graph.ComplianceReport) *graph.ComplianceReport {
	var latest *graph.ComplianceReport
	for i := range reports {
		if latest == nil || reports[i].GeneratedAt.After(latest.GeneratedAt) {
			latest = &reports[i]
		}
	}
	return latest
}
