package query_test

import (
	"fmt"
	"time"

	"github.com/skysentinel/engine/graph/query"
)

// A store driver assembles the statement it sends to the graph database
// from these fragments: a tenant- and validity-scoped MATCH plus a
// projection, with every value parameterized.
func Example() {
	asOf := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	match, params := query.BuildScopedMatch("r", "tenant-a", asOf, []query.Predicate{
		{Field: "cloud", Op: query.Eq, Value: "aws"},
	})
	stmt := match + " " + query.BuildReturn("r", []string{"id", "risk_score"})

	fmt.Println(stmt)
	fmt.Println(params["tenant_id"], params["p0"])
	// Output:
	// MATCH (r:Resource) WHERE r.tenant_id = $tenant_id AND r.valid_from <= $as_of AND (r.valid_to IS NULL OR r.valid_to > $as_of) AND r.cloud = $p0 RETURN r.id, r.risk_score
	// tenant-a aws
}
