package inflow

import (
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
)

// StrategyForMode maps an input inflow mode to an allocator strategy.
// An empty mode selects the shared pool.
func StrategyForMode(mode v1alpha1.InflowMode) (Strategy, error) {
	switch mode {
	case "", v1alpha1.InflowSharedPool:
		return SharedPoolStrategy, nil
	case v1alpha1.InflowPerRole:
		return PerRoleStrategy, nil
	default:
		return 0, fmt.Errorf("unsupported inflow mode %q", mode)
	}
}

// FromSpec builds the allocator described by spec. Per-role amounts missing from
// spec fall back to the inflow of the role assumptions, and the shared pool falls
// back to the scenario default.
func FromSpec(
	spec v1alpha1.InflowSpec,
	roles []string,
	defaults config.ScenarioConfig,
	roleData config.RoleAssumptionsData,
) (Allocator, error) {
	strategy, err := StrategyForMode(spec.Mode)
	if err != nil {
		return nil, err
	}
	cfg := &AllocatorConfig{
		SharedPool: ptr.Deref(spec.SharedPool, defaults.SharedPool),
		PerRole:    make(map[string]float64, len(roles)),
	}
	for _, role := range roles {
		if v, ok := spec.PerRole[role]; ok {
			cfg.PerRole[role] = v
		} else if v, ok := roleData.InflowFor(role); ok {
			cfg.PerRole[role] = v
		}
	}
	return NewAllocator(strategy, cfg)
}
