package attackpath

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skysentinel/engine/graph"
)

// Limits bound one attack path query. Zero values fall back to the
// defaults below.
type Limits struct {
	// DefaultDepth is the traversal depth used when a request does not
	// specify one.
	DefaultDepth int

	// DepthCeiling is the hard maximum depth. Requests asking for more
	// are clamped, not rejected.
	DepthCeiling int

	// StepBudget is the maximum number of edge expansions across the
	// whole query. Exhausting it truncates the search.
	StepBudget int

	// MaxPaths caps the number of paths returned from an auto-discovery
	// query.
	MaxPaths int

	// Timeout bounds the wall-clock time of one query. Zero disables
	// the time bound.
	Timeout time.Duration
}

// Default limit values.
const (
	DefaultDepth    = 5
	DefaultCeiling  = 10
	DefaultBudget   = 10000
	DefaultMaxPaths = 20
)

// DefaultLimits returns the standard query limits.
func DefaultLimits() Limits {
	return Limits{
		DefaultDepth: DefaultDepth,
		DepthCeiling: DefaultCeiling,
		StepBudget:   DefaultBudget,
		MaxPaths:     DefaultMaxPaths,
	}
}

func (l Limits) withDefaults() Limits {
	if l.DefaultDepth <= 0 {
		l.DefaultDepth = DefaultDepth
	}
	if l.DepthCeiling <= 0 {
		l.DepthCeiling = DefaultCeiling
	}
	if l.StepBudget <= 0 {
		l.StepBudget = DefaultBudget
	}
	if l.MaxPaths <= 0 {
		l.MaxPaths = DefaultMaxPaths
	}
	return l
}

// Request describes one attack path query.
//
// Three modes are supported:
//   - From and To set: shortest path between the two resources.
//   - Only From set: blast radius, everything reachable from the source.
//   - Neither set: auto-discovery from internet-exposed entry points to
//     critical assets.
type Request struct {
	// TenantID scopes the query. Required.
	TenantID string `json:"tenant_id"`

	// From is the source resource ID. Optional.
	From string `json:"from,omitempty"`

	// To is the target resource ID. Optional.
	To string `json:"to,omitempty"`

	// MaxDepth overrides the default traversal depth. Values above the
	// ceiling are clamped.
	MaxDepth int `json:"max_depth,omitempty"`

	// AsOf selects the graph snapshot to search. Zero means now.
	AsOf time.Time `json:"as_of,omitempty"`
}

// Finder discovers attack paths over a tenant's resource graph.
type Finder struct {
	selector *graph.Selector
	limits   Limits
	stepRisk StepRisk
	gen      Generator
	logger   *zap.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithLimits sets the query limits.
func WithLimits(l Limits) FinderOption {
	return func(f *Finder) { f.limits = l }
}

// WithStepRisk sets the per-edge risk strategy.
func WithStepRisk(s StepRisk) FinderOption {
	return func(f *Finder) { f.stepRisk = s }
}

// WithMitigations sets the mitigation generator.
func WithMitigations(g Generator) FinderOption {
	return func(f *Finder) { f.gen = g }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) FinderOption {
	return func(f *Finder) { f.logger = logger }
}

// NewFinder creates a Finder reading through the given selector.
func NewFinder(selector *graph.Selector, opts ...FinderOption) *Finder {
	f := &Finder{
		selector: selector,
		limits:   DefaultLimits(),
		stepRisk: ConstantStepRisk{Value: 1.0},
		gen:      NewTemplateGenerator(nil),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.limits = f.limits.withDefaults()
	return f
}

// Find executes the query. A source or target that does not exist in the
// current graph yields an empty result, not an error. Exhausting the
// step budget or the time budget sets Result.Truncated; context
// cancellation returns the context error.
func (f *Finder) Find(ctx context.Context, req Request) (Result, error) {
	if req.TenantID == "" {
		return Result{}, fmt.Errorf("attack path request requires a tenant id")
	}

	depth := req.MaxDepth
	if depth <= 0 {
		depth = f.limits.DefaultDepth
	}
	if depth > f.limits.DepthCeiling {
		f.logger.Debug("clamping requested depth",
			zap.Int("requested", depth),
			zap.Int("ceiling", f.limits.DepthCeiling))
		depth = f.limits.DepthCeiling
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	scope := graph.NewScope(req.TenantID).At(asOf)

	resources, err := f.selector.Resources(ctx, scope, graph.ResourceFilter{})
	if err != nil {
		return Result{}, err
	}
	relationships, err := f.selector.Relationships(ctx, scope, graph.RelationshipFilter{})
	if err != nil {
		return Result{}, err
	}

	s := newSearch(resources, relationships, f.limits.StepBudget, f.limits.Timeout)

	var paths []Path
	switch {
	case req.From != "" && req.To != "":
		paths, err = f.targeted(ctx, s, req, depth)
	case req.From != "":
		paths, err = f.blastRadius(ctx, s, req, depth)
	default:
		paths, err = f.autoDiscover(ctx, s, req, depth)
	}
	if err != nil {
		return Result{}, err
	}

	if s.truncated {
		f.logger.Warn("attack path search truncated",
			zap.String("tenant_id", req.TenantID),
			zap.Int("depth", depth),
			zap.Int("paths", len(paths)))
	}
	return Result{Paths: paths, Truncated: s.truncated}, nil
}

func (f *Finder) targeted(ctx context.Context, s *search, req Request, depth int) ([]Path, error) {
	if _, ok := s.nodes[req.From]; !ok {
		return nil, nil
	}
	if _, ok := s.nodes[req.To]; !ok {
		return nil, nil
	}
	nodes, edges, found, err := s.shortest(ctx, req.From, req.To, depth)
	if err != nil || !found {
		return nil, err
	}
	return []Path{newPath(req.TenantID, nodes, edges, f.stepRisk, f.gen)}, nil
}

func (f *Finder) blastRadius(ctx context.Context, s *search, req Request, depth int) ([]Path, error) {
	if _, ok := s.nodes[req.From]; !ok {
		return nil, nil
	}
	nodes, edges, err := s.expand(ctx, req.From, depth)
	if err != nil {
		return nil, err
	}
	return []Path{newPath(req.TenantID, nodes, edges, f.stepRisk, f.gen)}, nil
}

func (f *Finder) autoDiscover(ctx context.Context, s *search, req Request, depth int) ([]Path, error) {
	var sources, targets []string
	for id, node := range s.nodes {
		if node.IsEntryPoint() {
			sources = append(sources, id)
		}
		if node.IsCriticalAsset() {
			targets = append(targets, id)
		}
	}
	// Deterministic pair order so budget exhaustion truncates the same
	// way on identical inputs.
	sort.Strings(sources)
	sort.Strings(targets)

	seen := make(map[string]struct{})
	var paths []Path
	for _, src := range sources {
		for _, dst := range targets {
			if src == dst {
				continue
			}
			nodes, edges, found, err := s.shortest(ctx, src, dst, depth)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			key := pathKey(nodes)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			paths = append(paths, newPath(req.TenantID, nodes, edges, f.stepRisk, f.gen))
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].RiskScore != paths[j].RiskScore {
			return paths[i].RiskScore > paths[j].RiskScore
		}
		return paths[i].Length() < paths[j].Length()
	})
	if len(paths) > f.limits.MaxPaths {
		paths = paths[:f.limits.MaxPaths]
		s.truncated = true
	}
	return paths, nil
}

func pathKey(nodes []graph.Resource) string {
	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].ID
	}
	return strings.Join(ids, "\x1f")
}

// search holds the in-memory snapshot and the shared budgets for one
// query. The step budget counts edge expansions across every traversal
// the query performs.
type search struct {
	nodes     map[string]graph.Resource
	adj       map[string][]graph.Relationship
	steps     int
	deadline  time.Time
	truncated bool
}

func newSearch(resources []graph.Resource, relationships []graph.Relationship, budget int, timeout time.Duration) *search {
	s := &search{
		nodes: make(map[string]graph.Resource, len(resources)),
		adj:   make(map[string][]graph.Relationship),
		steps: budget,
	}
	if timeout > 0 {
		s.deadline = time.Now().Add(timeout)
	}
	for _, r := range resources {
		s.nodes[r.ID] = r
	}
	for _, rel := range relationships {
		// Edges referencing resources outside the valid snapshot are
		// not traversable.
		if _, ok := s.nodes[rel.FromID]; !ok {
			continue
		}
		if _, ok := s.nodes[rel.ToID]; !ok {
			continue
		}
		s.adj[rel.FromID] = append(s.adj[rel.FromID], rel)
	}
	return s
}

// spend consumes one edge expansion, reporting whether the search may
// continue.
func (s *search) spend() bool {
	if s.steps <= 0 {
		s.truncated = true
		return false
	}
	s.steps--
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.truncated = true
		return false
	}
	return true
}

// hop records how a node was first reached during a traversal.
type hop struct {
	from string
	edge graph.Relationship
}

// shortest runs a breadth-first search from src to dst, returning the
// minimum-hop path within maxDepth edges. A src equal to dst yields a
// single-node path.
func (s *search) shortest(ctx context.Context, src, dst string, maxDepth int) ([]graph.Resource, []graph.Relationship, bool, error) {
	if src == dst {
		return []graph.Resource{s.nodes[src]}, nil, true, nil
	}

	parents := map[string]hop{src: {}}
	depths := map[string]int{src: 0}
	queue := []string{src}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, false, err
		}
		cur := queue[0]
		queue = queue[1:]
		if depths[cur] >= maxDepth {
			continue
		}
		for _, rel := range s.adj[cur] {
			if !s.spend() {
				return nil, nil, false, nil
			}
			next := rel.ToID
			if _, visited := depths[next]; visited {
				continue
			}
			depths[next] = depths[cur] + 1
			parents[next] = hop{from: cur, edge: rel}
			if next == dst {
				return s.assemble(src, dst, parents)
			}
			queue = append(queue, next)
		}
	}
	return nil, nil, false, nil
}

func (s *search) assemble(src, dst string, parents map[string]hop) ([]graph.Resource, []graph.Relationship, bool, error) {
	var nodes []graph.Resource
	var edges []graph.Relationship
	for cur := dst; ; {
		nodes = append(nodes, s.nodes[cur])
		if cur == src {
			break
		}
		p := parents[cur]
		edges = append(edges, p.edge)
		cur = p.from
	}
	reverseNodes(nodes)
	reverseEdges(edges)
	return nodes, edges, true, nil
}

// expand runs a breadth-first traversal from src, returning the reached
// resources in discovery order along with the traversal tree edges.
func (s *search) expand(ctx context.Context, src string, maxDepth int) ([]graph.Resource, []graph.Relationship, error) {
	depths := map[string]int{src: 0}
	order := []graph.Resource{s.nodes[src]}
	var tree []graph.Relationship
	queue := []string{src}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		if depths[cur] >= maxDepth {
			continue
		}
		for _, rel := range s.adj[cur] {
			if !s.spend() {
				return order, tree, nil
			}
			next := rel.ToID
			if _, visited := depths[next]; visited {
				continue
			}
			depths[next] = depths[cur] + 1
			order = append(order, s.nodes[next])
			tree = append(tree, rel)
			queue = append(queue, next)
		}
	}
	return order, tree, nil
}

func reverseNodes(s []graph.Resource) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseEdges(s []graph.Relationship) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
