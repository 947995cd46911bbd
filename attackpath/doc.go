// Package attackpath discovers attack paths across a tenant's resource
// graph: ordered chains of resources an attacker could traverse from an
// internet-exposed entry point toward a critical asset.
//
// The Finder supports three query modes. With both endpoints it returns
// the shortest path between them; with only a source it returns the
// blast radius reachable from that resource; with neither it discovers
// paths from every entry point to every critical asset, ranked by risk.
//
//	finder := attackpath.NewFinder(selector)
//	result, err := finder.Find(ctx, attackpath.Request{TenantID: tenant})
//	if err != nil {
//	    return err
//	}
//	for _, p := range result.Paths {
//	    fmt.Println(p.Severity, p.RiskScore, p.Length())
//	}
//
// Every search is bounded by a depth ceiling, a step budget, and an
// optional timeout. Hitting a bound sets Result.Truncated rather than
// failing the query.
package attackpath
