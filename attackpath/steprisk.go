package attackpath

import "github.com/skysentinel/engine/graph"

// StepRisk computes the risk contribution of traversing one relationship.
// It is the pluggable axis of the path search: strategies weigh edges by
// relationship type and properties (trust boundary crossings, credential
// reuse, public exposure) without touching the traversal algorithm.
//
// Implementations must be safe for concurrent use and must not perform
// I/O; Weight is called once per traversed edge on the query path.
type StepRisk interface {
	// Weight returns the risk contribution of the relationship.
	Weight(rel graph.Relationship) float64
}

// ConstantStepRisk weighs every relationship the same. It is the naive
// default: a placeholder until edge semantics are weighted properly.
type ConstantStepRisk struct {
	// Value is the weight assigned to every edge.
	Value float64
}

// NewConstantStepRisk creates a ConstantStepRisk with the given value.
func NewConstantStepRisk(value float64) ConstantStepRisk {
	return ConstantStepRisk{Value: value}
}

// Weight returns the constant value regardless of the relationship.
func (c ConstantStepRisk) Weight(graph.Relationship) float64 {
	return c.Value
}

// TableStepRisk weighs relationships by type from a lookup table, falling
// back to a default weight for unknown types.
type TableStepRisk struct {
	// Weights maps relationship types to their risk contribution.
	Weights map[string]float64

	// Default is used for relationship types missing from Weights.
	Default float64
}

// NewTableStepRisk creates a TableStepRisk over the given table.
func NewTableStepRisk(weights map[string]float64, fallback float64) TableStepRisk {
	return TableStepRisk{Weights: weights, Default: fallback}
}

// Weight returns the table entry for the relationship type, or Default.
func (t TableStepRisk) Weight(rel graph.Relationship) float64 {
	if w, ok := t.Weights[rel.Type]; ok {
		return w
	}
	return t.Default
}
