package attackpath

import (
	"github.com/google/uuid"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

// Path represents one discovered attack path: an ordered sequence of
// resources from an entry point toward a critical asset. Paths are derived
// results; they are never persisted and are recomputed per query, since
// the underlying graph may have changed between calls.
type Path struct {
	// ID is a unique identifier for this derived path instance.
	ID string `json:"id"`

	// TenantID identifies the tenant the path belongs to.
	TenantID string `json:"tenant_id"`

	// Nodes is the ordered sequence of resources on the path (length >= 1).
	Nodes []graph.Resource `json:"nodes"`

	// Edges holds the relationships traversed between consecutive nodes.
	// For blast radius results these are the traversal tree edges.
	Edges []graph.Relationship `json:"edges,omitempty"`

	// RiskScore is the additive path risk: the sum of per-node severity
	// weights (default 1.0 per node). This is a ranking magnitude on the
	// path scale, not a probability; see the risk package documentation.
	RiskScore float64 `json:"risk_score"`

	// Severity is the classification of RiskScore on the path scale.
	Severity risk.Severity `json:"severity"`

	// StepRisk is the sum of per-edge risk contributions produced by the
	// configured step risk strategy. It is reported alongside RiskScore
	// as an input to future scoring refinement and does not affect
	// ranking.
	StepRisk float64 `json:"step_risk"`

	// EntryPoints lists the IDs of nodes on the path that are internet
	// exposed.
	EntryPoints []string `json:"entry_points,omitempty"`

	// CriticalAssets lists the IDs of nodes on the path that carry a
	// high or critical confidentiality classification.
	CriticalAssets []string `json:"critical_assets,omitempty"`

	// Mitigations holds the suggestions produced by the configured
	// mitigation generator.
	Mitigations []Mitigation `json:"mitigations,omitempty"`
}

// Length returns the number of nodes on the path.
func (p Path) Length() int {
	return len(p.Nodes)
}

// Result is the outcome of one attack path query.
type Result struct {
	// Paths holds the discovered paths, ordered by RiskScore descending
	// with ties broken by path length ascending.
	Paths []Path `json:"paths"`

	// Truncated is set when the search hit its depth, step, or time
	// budget before exhausting the graph. The returned paths are valid
	// but possibly incomplete. Truncation is a signal, not an error.
	Truncated bool `json:"truncated"`
}

// newPath assembles a Path from an ordered node sequence and the edges
// traversed between them, computing scores and classifications.
func newPath(tenantID string, nodes []graph.Resource, edges []graph.Relationship, stepRisk StepRisk, gen Generator) Path {
	weights := make([]float64, len(nodes))
	var entryPoints, criticalAssets []string
	for i := range nodes {
		weights[i] = risk.NodeWeight(nodes[i].SeverityWeight)
		if nodes[i].IsEntryPoint() {
			entryPoints = append(entryPoints, nodes[i].ID)
		}
		if nodes[i].IsCriticalAsset() {
			criticalAssets = append(criticalAssets, nodes[i].ID)
		}
	}

	var edgeRisk float64
	for i := range edges {
		edgeRisk += stepRisk.Weight(edges[i])
	}

	score := risk.PathRiskScore(weights)
	p := Path{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		Nodes:          nodes,
		Edges:          edges,
		RiskScore:      score,
		Severity:       risk.ClassifyPathRisk(score),
		StepRisk:       edgeRisk,
		EntryPoints:    entryPoints,
		CriticalAssets: criticalAssets,
	}
	if gen != nil {
		p.Mitigations = gen.Suggest(nodes, edges)
	}
	return p
}
