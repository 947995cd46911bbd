// Package delta computes incremental "what changed since T" summaries
// for live dashboard updates, and pushes them over Redis pub/sub.
//
// The Computer answers checkpoint queries with four counts: new and
// resolved violations, new and completed evaluations. Every bound is
// inclusive, so polling with the timestamp of the last observed change
// counts that change once more; callers advance their checkpoint past it.
//
// The Notifier persists per-tenant checkpoints in Redis and publishes
// non-empty summaries to the tenant's channel:
//
//	summary, err := notifier.Push(ctx, computer, tenant)
package delta
