package engine

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skysentinel/engine/attackpath"
	"github.com/skysentinel/engine/config"
	"github.com/skysentinel/engine/graph"
)

// engineConfig collects the options applied during New.
type engineConfig struct {
	store      graph.Store
	logger     *zap.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	limits     attackpath.Limits
	limitsSet  bool
	stepRisk   attackpath.StepRisk
	mitigation attackpath.Generator
	fileConfig *config.Config
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithStore sets the graph store the engine reads from. Without this
// option the engine runs on an empty in-memory store, which is useful
// for tests and local development only.
func WithStore(store graph.Store) Option {
	return func(c *engineConfig) { c.store = store }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) { c.logger = logger }
}

// WithTracer sets the OpenTelemetry tracer for query spans. Without it
// no spans are recorded.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) { c.tracer = tracer }
}

// WithMeter sets the OpenTelemetry meter for query metrics. Without it
// no metrics are recorded.
func WithMeter(meter metric.Meter) Option {
	return func(c *engineConfig) { c.meter = meter }
}

// WithSearchLimits sets the attack path search limits. The file's
// search section is ignored when this option is present.
func WithSearchLimits(limits attackpath.Limits) Option {
	return func(c *engineConfig) {
		c.limits = limits
		c.limitsSet = true
	}
}

// WithStepRisk sets the per-edge risk strategy for attack path search.
func WithStepRisk(s attackpath.StepRisk) Option {
	return func(c *engineConfig) { c.stepRisk = s }
}

// WithMitigations sets the mitigation generator for attack path search.
func WithMitigations(g attackpath.Generator) Option {
	return func(c *engineConfig) { c.mitigation = g }
}

// WithConfig applies settings from a loaded engine.yaml: search limits
// and log level. Explicit options take precedence over the file.
func WithConfig(cfg *config.Config) Option {
	return func(c *engineConfig) { c.fileConfig = cfg }
}
