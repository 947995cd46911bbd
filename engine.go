package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skysentinel/engine/attackpath"
	"github.com/skysentinel/engine/delta"
	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/posture"
)

// Engine is the facade over the posture platform core. One Engine serves
// many tenants concurrently; every method is a stateless, tenant-scoped,
// read-only query.
type Engine struct {
	selector   *graph.Selector
	finder     *attackpath.Finder
	aggregator *posture.Aggregator
	computer   *delta.Computer
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *engineMetrics
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		limits: attackpath.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.fileConfig != nil {
		if err := cfg.fileConfig.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		applyFileConfig(cfg)
		if cfg.logger == nil && cfg.fileConfig.LogLevel != "" {
			logger, err := NewLogger(cfg.fileConfig.LogLevel)
			if err != nil {
				return nil, err
			}
			cfg.logger = logger
		}
	}
	if cfg.store == nil {
		cfg.store = graph.NewMemoryStore()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	metrics, err := initMetrics(cfg.meter)
	if err != nil {
		return nil, err
	}

	selector := graph.NewSelector(cfg.store)

	finderOpts := []attackpath.FinderOption{
		attackpath.WithLimits(cfg.limits),
		attackpath.WithLogger(cfg.logger.Named("attackpath")),
	}
	if cfg.stepRisk != nil {
		finderOpts = append(finderOpts, attackpath.WithStepRisk(cfg.stepRisk))
	}
	if cfg.mitigation != nil {
		finderOpts = append(finderOpts, attackpath.WithMitigations(cfg.mitigation))
	}

	return &Engine{
		selector:   selector,
		finder:     attackpath.NewFinder(selector, finderOpts...),
		aggregator: posture.NewAggregator(selector, posture.WithLogger(cfg.logger.Named("posture"))),
		computer:   delta.NewComputer(selector),
		logger:     cfg.logger,
		tracer:     cfg.tracer,
		metrics:    metrics,
	}, nil
}

// applyFileConfig fills unset options from the loaded engine.yaml.
// Explicit options win: a WithSearchLimits call makes the file's search
// section inert, and WithLogger suppresses the file's log level.
func applyFileConfig(cfg *engineConfig) {
	search := cfg.fileConfig.Search
	if search == nil || cfg.limitsSet {
		return
	}
	if search.MaxDepth > 0 {
		cfg.limits.DefaultDepth = search.MaxDepth
	}
	if search.DepthCeiling > 0 {
		cfg.limits.DepthCeiling = search.DepthCeiling
	}
	if search.StepBudget > 0 {
		cfg.limits.StepBudget = search.StepBudget
	}
	if search.MaxPaths > 0 {
		cfg.limits.MaxPaths = search.MaxPaths
	}
	if timeout := search.GetTimeout(); timeout > 0 {
		cfg.limits.Timeout = timeout
	}
}

// Selector exposes the tenant-scoped read layer for callers composing
// their own queries.
func (e *Engine) Selector() *graph.Selector {
	return e.selector
}

// ValidResources returns the tenant's currently-valid resource versions
// at the given instant.
func (e *Engine) ValidResources(ctx context.Context, tenantID string, asOf time.Time) ([]graph.Resource, error) {
	ctx, span := e.startSpan(ctx, "engine.valid_resources", tenantID)
	defer span.End()
	start := time.Now()

	resources, err := e.selector.Valid(ctx, tenantID, asOf)
	e.finish(ctx, span, "valid_resources", tenantID, start, err)
	return resources, err
}

// Overview computes the tenant's posture summary for the timeframe.
func (e *Engine) Overview(ctx context.Context, tenantID string, timeframe posture.Timeframe) (posture.Overview, error) {
	ctx, span := e.startSpan(ctx, "engine.overview", tenantID)
	defer span.End()
	start := time.Now()

	overview, err := e.aggregator.Overview(ctx, tenantID, timeframe)
	e.finish(ctx, span, "overview", tenantID, start, err)
	return overview, err
}

// ComplianceBreakdown returns the tenant's per-framework compliance view.
func (e *Engine) ComplianceBreakdown(ctx context.Context, tenantID string) (posture.ComplianceBreakdownResult, error) {
	ctx, span := e.startSpan(ctx, "engine.compliance_breakdown", tenantID)
	defer span.End()
	start := time.Now()

	breakdown, err := e.aggregator.ComplianceBreakdown(ctx, tenantID)
	e.finish(ctx, span, "compliance_breakdown", tenantID, start, err)
	return breakdown, err
}

// ResourceDistribution returns resource counts per cloud provider.
func (e *Engine) ResourceDistribution(ctx context.Context, tenantID string, opts ...posture.QueryOption) ([]posture.CloudCount, error) {
	ctx, span := e.startSpan(ctx, "engine.resource_distribution", tenantID)
	defer span.End()
	start := time.Now()

	distribution, err := e.aggregator.ResourceDistribution(ctx, tenantID, opts...)
	e.finish(ctx, span, "resource_distribution", tenantID, start, err)
	return distribution, err
}

// RiskDistribution returns resource counts per risk level.
func (e *Engine) RiskDistribution(ctx context.Context, tenantID string, opts ...posture.QueryOption) ([]posture.RiskLevelCount, error) {
	ctx, span := e.startSpan(ctx, "engine.risk_distribution", tenantID)
	defer span.End()
	start := time.Now()

	distribution, err := e.aggregator.RiskDistribution(ctx, tenantID, opts...)
	e.finish(ctx, span, "risk_distribution", tenantID, start, err)
	return distribution, err
}

// AttackPaths discovers attack paths for the request.
func (e *Engine) AttackPaths(ctx context.Context, req attackpath.Request) (attackpath.Result, error) {
	ctx, span := e.startSpan(ctx, "engine.attack_paths", req.TenantID)
	defer span.End()
	start := time.Now()

	result, err := e.finder.Find(ctx, req)
	if err == nil {
		span.SetAttributes(
			attribute.Int("paths", len(result.Paths)),
			attribute.Bool("truncated", result.Truncated),
		)
		e.metrics.recordSearch(ctx, len(result.Paths), result.Truncated)
	}
	e.finish(ctx, span, "attack_paths", req.TenantID, start, err)
	return result, err
}

// DeltaSince computes the tenant's change counts since a checkpoint.
func (e *Engine) DeltaSince(ctx context.Context, tenantID string, since time.Time) (delta.Summary, error) {
	ctx, span := e.startSpan(ctx, "engine.delta_since", tenantID)
	defer span.End()
	start := time.Now()

	summary, err := e.computer.Since(ctx, tenantID, since)
	e.finish(ctx, span, "delta_since", tenantID, start, err)
	return summary, err
}

func (e *Engine) startSpan(ctx context.Context, name, tenantID string) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("tenant_id", tenantID),
	))
}

func (e *Engine) finish(ctx context.Context, span trace.Span, operation, tenantID string, start time.Time, err error) {
	e.metrics.record(ctx, operation, start, err)
	if err != nil {
		span.RecordError(err)
		e.logger.Error("engine query failed",
			zap.String("operation", operation),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return
	}
	e.logger.Debug("engine query served",
		zap.String("operation", operation),
		zap.String("tenant_id", tenantID),
		zap.Duration("elapsed", time.Since(start)))
}
