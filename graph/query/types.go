// Package query builds parameterized Cypher text for Neo4j-compatible
// graph stores. The posture engine never talks to the store directly; the
// excluded store driver consumes the text and parameter maps produced
// here. Every builder that touches resources stamps the tenant predicate
// and the temporal validity window so a query without them cannot be
// expressed by accident.
package query

import "fmt"

// Op represents a comparison or filter operation in a query predicate.
type Op int

const (
	// Eq represents equality comparison (=)
	Eq Op = iota
	// Neq represents inequality comparison (<>)
	Neq
	// Lt represents less than comparison (<)
	Lt
	// Lte represents less than or equal comparison (<=)
	Lte
	// Gt represents greater than comparison (>)
	Gt
	// Gte represents greater than or equal comparison (>=)
	Gte
	// Contains represents string containment check (CONTAINS)
	Contains
	// In represents membership check (IN)
	In
	// IsNull represents null check (IS NULL)
	IsNull
	// IsNotNull represents non-null check (IS NOT NULL)
	IsNotNull
)

// String returns the string representation of the operation for debugging.
func (o Op) String() string {
	switch o {
	case Eq:
		return "="
	case Neq:
		return "<>"
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Contains:
		return "CONTAINS"
	case In:
		return "IN"
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Predicate represents a filter condition in a graph query.
// It combines a field name, comparison operator, and value.
type Predicate struct {
	// Field is the property name to filter on
	Field string
	// Op is the comparison operation to perform
	Op Op
	// Value is the comparison value (may be nil for IsNull/IsNotNull)
	Value any
}

// Aggregate names a Cypher aggregate function over a filtered node set.
type Aggregate string

const (
	// Count counts matching rows.
	Count Aggregate = "count"
	// Avg averages a numeric property over matching rows.
	Avg Aggregate = "avg"
	// Max takes the maximum of a property over matching rows.
	Max Aggregate = "max"
)

// IsValid returns true if the aggregate is one of the supported functions.
func (a Aggregate) IsValid() bool {
	switch a {
	case Count, Avg, Max:
		return true
	default:
		return false
	}
}
