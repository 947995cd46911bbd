// Package risk provides the pure scoring functions of the posture engine:
// severity classification for resources and attack paths, and additive
// path risk scoring.
//
// Two distinct scales are in play and must not be mixed:
//
//   - Resource risk is a probability-like score in [0.0, 1.0], classified
//     by ClassifyResourceRisk.
//   - Path risk is an unbounded additive magnitude (the sum of per-node
//     severity weights), classified by ClassifyPathRisk.
//
// The additive path model ranks paths relative to each other; it is not a
// calibrated probability. Many medium-severity hops can outrank one
// critical hop, which is intentional current behavior.
package risk

// Resource risk classification thresholds over the [0,1] scale.
const (
	resourceCriticalThreshold = 0.8
	resourceHighThreshold     = 0.6
	resourceMediumThreshold   = 0.4
	resourceLowThreshold      = 0.2
)

// Path risk classification thresholds over the additive scale.
const (
	pathCriticalThreshold = 8.0
	pathHighThreshold     = 6.0
	pathMediumThreshold   = 4.0
	pathLowThreshold      = 2.0
)

// DefaultNodeWeight is the severity weight assumed for a node that carries
// no explicit severity weight.
const DefaultNodeWeight = 1.0

// ClassifyResourceRisk classifies a resource risk score in [0.0, 1.0] into
// a severity bucket:
//
//	>= 0.8 critical
//	>= 0.6 high
//	>= 0.4 medium
//	>= 0.2 low
//	otherwise minimal
func ClassifyResourceRisk(score float64) Severity {
	switch {
	case score >= resourceCriticalThreshold:
		return SeverityCritical
	case score >= resourceHighThreshold:
		return SeverityHigh
	case score >= resourceMediumThreshold:
		return SeverityMedium
	case score >= resourceLowThreshold:
		return SeverityLow
	default:
		return SeverityMinimal
	}
}

// ClassifyPathRisk classifies an additive path risk score into a severity
// bucket:
//
//	>= 8 critical
//	>= 6 high
//	>= 4 medium
//	>= 2 low
//	otherwise info
//
// Note this operates on the additive path scale, not the [0,1] resource
// scale; see the package documentation.
func ClassifyPathRisk(score float64) Severity {
	switch {
	case score >= pathCriticalThreshold:
		return SeverityCritical
	case score >= pathHighThreshold:
		return SeverityHigh
	case score >= pathMediumThreshold:
		return SeverityMedium
	case score >= pathLowThreshold:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// NodeWeight returns the severity weight to use for a node. A node with no
// explicit weight contributes DefaultNodeWeight.
func NodeWeight(weight *float64) float64 {
	if weight == nil {
		return DefaultNodeWeight
	}
	return *weight
}

// PathRiskScore computes the additive risk score of a path as the sum of
// its per-node severity weights.
func PathRiskScore(nodeWeights []float64) float64 {
	var total float64
	for _, w := range nodeWeights {
		total += w
	}
	return total
}
