package attackpath

import (
	"fmt"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/skysentinel/engine/graph"
)

// celProgramCacheSize bounds the number of compiled expressions kept
// resident. Deployments rarely configure more than a handful of
// per-relationship-type expressions.
const celProgramCacheSize = 64

// CELStepRisk evaluates CEL expressions against relationship type and
// properties to produce per-edge risk contributions. Expressions are
// configured per relationship type with a default expression for the
// rest, so operators can weigh trust-boundary crossings or public
// exposure heavier than same-VPC traffic without a code change.
//
// Expressions see two variables:
//
//	type       string                  the relationship type
//	properties map<string, dyn>        the relationship properties
//
// and must evaluate to a numeric value. Example:
//
//	properties["crosses_trust_boundary"] == true ? 3.0 : 1.0
//
// Compiled programs are cached in an LRU keyed by expression text.
// Evaluation failures fall back to the configured fallback weight: a bad
// expression must degrade scoring, never break the search.
type CELStepRisk struct {
	env         *cel.Env
	programs    *lru.Cache[string, cel.Program]
	byType      map[string]string
	defaultExpr string
	fallback    float64
}

// NewCELStepRisk creates a CELStepRisk. byType maps relationship types to
// expression text; defaultExpr applies to types without an entry (empty
// means the fallback weight applies directly). All configured expressions
// are compiled eagerly so configuration errors surface at construction.
func NewCELStepRisk(byType map[string]string, defaultExpr string, fallback float64) (*CELStepRisk, error) {
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("properties", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	programs, err := lru.New[string, cel.Program](celProgramCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}

	s := &CELStepRisk{
		env:         env,
		programs:    programs,
		byType:      byType,
		defaultExpr: defaultExpr,
		fallback:    fallback,
	}

	for relType, expr := range byType {
		if _, err := s.program(expr); err != nil {
			return nil, fmt.Errorf("invalid expression for relationship type %q: %w", relType, err)
		}
	}
	if defaultExpr != "" {
		if _, err := s.program(defaultExpr); err != nil {
			return nil, fmt.Errorf("invalid default expression: %w", err)
		}
	}

	return s, nil
}

// Weight evaluates the expression configured for the relationship type.
// Returns the fallback weight when no expression applies or evaluation
// fails.
func (s *CELStepRisk) Weight(rel graph.Relationship) float64 {
	expr, ok := s.byType[rel.Type]
	if !ok {
		expr = s.defaultExpr
	}
	if expr == "" {
		return s.fallback
	}

	prg, err := s.program(expr)
	if err != nil {
		return s.fallback
	}

	props := rel.Properties
	if props == nil {
		props = map[string]any{}
	}

	out, _, err := prg.Eval(map[string]any{
		"type":       rel.Type,
		"properties": props,
	})
	if err != nil {
		return s.fallback
	}

	switch v := out.Value().(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return s.fallback
	}
}

// program returns the compiled program for the expression, compiling and
// caching it on first use.
func (s *CELStepRisk) program(expr string) (cel.Program, error) {
	if prg, ok := s.programs.Get(expr); ok {
		return prg, nil
	}

	ast, iss := s.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}

	prg, err := s.env.Program(ast)
	if err != nil {
		return nil, err
	}

	s.programs.Add(expr, prg)
	return prg, nil
}
