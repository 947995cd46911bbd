// Package posture aggregates a tenant's security state into dashboard
// views: the tenant-wide overview, compliance and resource breakdowns,
// and calendar-day trend series.
//
// All queries are stateless and read-only. Each call re-derives validity
// through the graph selector, so two breakdowns of the same tenant taken
// at nearly the same instant agree on which resource versions they saw.
// Missing data defaults safely: a tenant with no resources, violations,
// or reports gets an overview of zeros rather than an error.
//
//	agg := posture.NewAggregator(selector)
//	o, err := agg.Overview(ctx, tenant, posture.Last7Days)
//
// Trend series are sparse. Days with no matching events are omitted, not
// zero-filled.
package posture
