// Package inflow distributes the yearly staff inflow of a scenario across roles.
//
// Two allocation strategies are available:
//
//   - SharedPoolStrategy splits one yearly pool evenly across every projected role.
//   - PerRoleStrategy gives each role an explicit yearly amount; unlisted roles get zero.
//
// Allocators are built with NewAllocator, or from the scenario inflow spec with
// FromSpec, which also resolves per-role amounts from role assumptions and the
// shared pool from the scenario defaults.
//
//	alloc, err := inflow.FromSpec(assumptions.Inflow, roles, cfg.Scenario, roleData)
//	if err != nil {
//	    return err
//	}
//	amounts, err := alloc.Allocate(ctx, roles, years)
package inflow
