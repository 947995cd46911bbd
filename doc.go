// Package engine is the core of the SkySentinel cloud security posture
// platform: attack path discovery and posture aggregation over a
// multi-tenant, temporally versioned resource graph.
//
// The Engine facade wires the sub-packages together behind one handle:
//
//	eng, err := engine.New(
//	    engine.WithStore(store),
//	    engine.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	overview, err := eng.Overview(ctx, tenant, posture.Last7Days)
//	paths, err := eng.AttackPaths(ctx, attackpath.Request{TenantID: tenant})
//	delta, err := eng.DeltaSince(ctx, tenant, checkpoint)
//
// Sub-packages can also be used directly:
//
//   - graph: the resource graph model, bitemporal validity, and the
//     tenant-scoped selector every read goes through
//   - risk: severity classification on the resource and path scales
//   - attackpath: bounded-depth path search with risk ranking
//   - posture: overview, breakdowns, and trend aggregation
//   - delta: incremental change summaries and Redis push
//   - registry: engine instance registration and discovery in etcd
//   - config: engine.yaml loading
//
// Every query is stateless, tenant-scoped, and read-only. Results are
// derived from the graph state at call time and never cached across
// calls.
package engine
