package attackpath

import (
	"fmt"

	"github.com/skysentinel/engine/graph"
	"github.com/skysentinel/engine/risk"
)

// Mitigation is one remediation suggestion attached to an attack path.
type Mitigation struct {
	// NodeID is the resource the suggestion applies to.
	NodeID string `json:"node_id"`

	// ResourceType is the type of that resource.
	ResourceType string `json:"resource_type"`

	// Description is the suggestion text.
	Description string `json:"description"`

	// Priority is the remediation priority.
	Priority risk.Severity `json:"priority"`
}

// Generator produces mitigation suggestions for a discovered path.
// Generators are keyed by (resource type, relationship type) so
// heuristics evolve independently of the traversal algorithm.
type Generator interface {
	// Suggest returns suggestions for the path's nodes and edges.
	Suggest(nodes []graph.Resource, edges []graph.Relationship) []Mitigation
}

// SuggestionKey selects a templated suggestion by the resource type and
// the type of the relationship leaving that resource (empty for the last
// node on a path).
type SuggestionKey struct {
	ResourceType     string
	RelationshipType string
}

// TemplateGenerator emits suggestions from a template table keyed by
// (resource type, relationship type), falling back to one generic
// "review configuration" suggestion per node. The first hop is
// prioritized high and later hops medium.
//
// The fallback is a placeholder, not a security recommendation engine.
type TemplateGenerator struct {
	// Templates maps keys to suggestion text. The text may contain one
	// %s verb that receives the resource ID.
	Templates map[SuggestionKey]string
}

// NewTemplateGenerator creates a TemplateGenerator with the given
// template table. A nil table yields the generic fallback for every node.
func NewTemplateGenerator(templates map[SuggestionKey]string) *TemplateGenerator {
	return &TemplateGenerator{Templates: templates}
}

// Suggest emits one suggestion per node on the path.
func (g *TemplateGenerator) Suggest(nodes []graph.Resource, edges []graph.Relationship) []Mitigation {
	suggestions := make([]Mitigation, 0, len(nodes))
	for i, node := range nodes {
		relType := ""
		if i < len(edges) {
			relType = edges[i].Type
		}

		description := ""
		if g.Templates != nil {
			if tmpl, ok := g.Templates[SuggestionKey{ResourceType: node.Type, RelationshipType: relType}]; ok {
				description = fmt.Sprintf(tmpl, node.ID)
			}
		}
		if description == "" {
			description = fmt.Sprintf("Review the configuration of %s %s", node.Type, node.ID)
		}

		priority := risk.SeverityMedium
		if i == 0 {
			priority = risk.SeverityHigh
		}

		suggestions = append(suggestions, Mitigation{
			NodeID:       node.ID,
			ResourceType: node.Type,
			Description:  description,
			Priority:     priority,
		})
	}
	return suggestions
}
