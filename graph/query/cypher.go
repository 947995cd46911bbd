package query

import (
	"fmt"
	"strings"
	"time"
)

// BuildMatch generates a MATCH clause for a node with the given label and
// alias. Returns a Cypher MATCH clause like: MATCH (alias:Label)
//
// Example:
//
//	BuildMatch("Resource", "r") // Returns: "MATCH (r:Resource)"
func BuildMatch(label string, alias string) string {
	return fmt.Sprintf("MATCH (%s:%s)", alias, label)
}

// BuildWhere generates a WHERE clause from predicates with parameterized
// values. Returns the WHERE clause string and a map of parameter names to
// values. Parameters are named $p0, $p1, etc. to prevent Cypher injection.
//
// Returns empty string and nil params if predicates is empty or nil.
//
// Example:
//
//	predicates := []Predicate{
//	    {Field: "cloud", Op: Eq, Value: "aws"},
//	    {Field: "risk_score", Op: Gte, Value: 0.8},
//	}
//	where, params := BuildWhere(predicates, "r")
//	// Returns: "WHERE r.cloud = $p0 AND r.risk_score >= $p1"
func BuildWhere(predicates []Predicate, alias string) (string, map[string]any) {
	if len(predicates) == 0 {
		return "", nil
	}

	params := make(map[string]any)
	var conditions []string

	for i, pred := range predicates {
		paramName := fmt.Sprintf("p%d", i)
		conditions = append(conditions, buildCondition(pred, alias, paramName))
		if requiresValue(pred.Op) {
			params[paramName] = pred.Value
		}
	}

	return "WHERE " + strings.Join(conditions, " AND "), params
}

// buildCondition constructs a single WHERE condition for a predicate.
func buildCondition(pred Predicate, alias string, paramName string) string {
	fieldRef := fmt.Sprintf("%s.%s", alias, pred.Field)

	switch pred.Op {
	case Eq:
		return fmt.Sprintf("%s = $%s", fieldRef, paramName)
	case Neq:
		return fmt.Sprintf("%s <> $%s", fieldRef, paramName)
	case Lt:
		return fmt.Sprintf("%s < $%s", fieldRef, paramName)
	case Lte:
		return fmt.Sprintf("%s <= $%s", fieldRef, paramName)
	case Gt:
		return fmt.Sprintf("%s > $%s", fieldRef, paramName)
	case Gte:
		return fmt.Sprintf("%s >= $%s", fieldRef, paramName)
	case Contains:
		return fmt.Sprintf("%s CONTAINS $%s", fieldRef, paramName)
	case In:
		return fmt.Sprintf("%s IN $%s", fieldRef, paramName)
	case IsNull:
		return fmt.Sprintf("%s IS NULL", fieldRef)
	case IsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", fieldRef)
	default:
		// Unknown operation - fall back to equality
		return fmt.Sprintf("%s = $%s", fieldRef, paramName)
	}
}

// requiresValue returns true if the operation requires a parameter value.
// IsNull and IsNotNull operations do not require values.
func requiresValue(op Op) bool {
	return op != IsNull && op != IsNotNull
}

// BuildTenantClause generates the tenant isolation condition for a node
// alias with a parameterized tenant id.
//
// Example:
//
//	clause, params := BuildTenantClause("r", "t1")
//	// Returns: "r.tenant_id = $tenant_id", {"tenant_id": "t1"}
func BuildTenantClause(alias string, tenantID string) (string, map[string]any) {
	return fmt.Sprintf("%s.tenant_id = $tenant_id", alias),
		map[string]any{"tenant_id": tenantID}
}

// BuildValidityClause generates the temporal validity condition selecting
// resource versions valid at the given instant: validFrom <= asOf and
// (validTo is null or validTo > asOf).
//
// Example:
//
//	clause, params := BuildValidityClause("r", asOf)
//	// Returns: "r.valid_from <= $as_of AND (r.valid_to IS NULL OR r.valid_to > $as_of)"
func BuildValidityClause(alias string, asOf time.Time) (string, map[string]any) {
	clause := fmt.Sprintf("%s.valid_from <= $as_of AND (%s.valid_to IS NULL OR %s.valid_to > $as_of)",
		alias, alias, alias)
	return clause, map[string]any{"as_of": asOf.UTC()}
}

// BuildScopedMatch composes a MATCH over resources of one tenant at one
// instant: the MATCH clause, the mandatory tenant and validity conditions,
// any extra predicates, and the merged parameter map.
//
// Example:
//
//	cypher, params := BuildScopedMatch("r", "t1", asOf, []Predicate{{Field: "cloud", Op: Eq, Value: "aws"}})
//	// MATCH (r:Resource)
//	// WHERE r.tenant_id = $tenant_id AND r.valid_from <= $as_of AND (...) AND r.cloud = $p0
func BuildScopedMatch(alias string, tenantID string, asOf time.Time, extra []Predicate) (string, map[string]any) {
	tenantClause, params := BuildTenantClause(alias, tenantID)
	validityClause, validityParams := BuildValidityClause(alias, asOf)
	for k, v := range validityParams {
		params[k] = v
	}

	conditions := []string{tenantClause, validityClause}
	if len(extra) > 0 {
		extraClause, extraParams := BuildWhere(extra, alias)
		conditions = append(conditions, strings.TrimPrefix(extraClause, "WHERE "))
		for k, v := range extraParams {
			params[k] = v
		}
	}

	cypher := fmt.Sprintf("%s WHERE %s", BuildMatch("Resource", alias), strings.Join(conditions, " AND "))
	return cypher, params
}

// BuildShortestPath generates a bounded-hop shortest path pattern between
// two already-matched node aliases. The bound is a hop count, so the
// caller is responsible for clamping maxDepth first.
//
// Example:
//
//	BuildShortestPath("a", "b", "p", 5)
//	// Returns: "MATCH p = shortestPath((a)-[*..5]-(b))"
func BuildShortestPath(fromAlias, toAlias, pathAlias string, maxDepth int) string {
	return fmt.Sprintf("MATCH %s = shortestPath((%s)-[*..%d]-(%s))",
		pathAlias, fromAlias, maxDepth, toAlias)
}

// BuildExpand generates a variable-length expansion pattern from one
// matched alias outward, used for blast radius queries.
//
// Example:
//
//	BuildExpand("a", "n", 3)
//	// Returns: "MATCH (a)-[*1..3]-(n)"
func BuildExpand(fromAlias, nodeAlias string, maxDepth int) string {
	return fmt.Sprintf("MATCH (%s)-[*1..%d]-(%s)", fromAlias, maxDepth, nodeAlias)
}

// BuildAggregate generates a RETURN clause applying an aggregate function
// over a matched alias. For Count the field may be empty to count rows.
//
// Examples:
//
//	BuildAggregate(Count, "r", "")           // Returns: "RETURN count(r)"
//	BuildAggregate(Avg, "r", "risk_score")   // Returns: "RETURN avg(r.risk_score)"
//	BuildAggregate(Max, "r", "last_scanned") // Returns: "RETURN max(r.last_scanned)"
func BuildAggregate(fn Aggregate, alias string, field string) string {
	if fn == Count && field == "" {
		return fmt.Sprintf("RETURN count(%s)", alias)
	}
	return fmt.Sprintf("RETURN %s(%s.%s)", fn, alias, field)
}

// BuildReturn generates a RETURN clause with the specified alias and
// optional fields. If fields is empty, returns the entire node.
//
// Examples:
//
//	BuildReturn("r", nil)                       // Returns: "RETURN r"
//	BuildReturn("r", []string{"id", "cloud"})   // Returns: "RETURN r.id, r.cloud"
func BuildReturn(alias string, fields []string) string {
	if len(fields) == 0 {
		return fmt.Sprintf("RETURN %s", alias)
	}

	var fieldRefs []string
	for _, field := range fields {
		fieldRefs = append(fieldRefs, fmt.Sprintf("%s.%s", alias, field))
	}

	return "RETURN " + strings.Join(fieldRefs, ", ")
}
