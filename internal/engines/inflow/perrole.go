package inflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/people-analytics/workforce-planner/internal/logging"
)

// PerRoleAllocator uses an explicit yearly inflow per role. Unlisted roles receive zero.
type PerRoleAllocator struct {
	amounts map[string]float64
}

// NewPerRoleAllocator creates a PerRoleAllocator.
func NewPerRoleAllocator(config *AllocatorConfig) (*PerRoleAllocator, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	names := make([]string, 0, len(config.PerRole))
	for role := range config.PerRole {
		names = append(names, role)
	}
	sort.Strings(names)
	amounts := make(map[string]float64, len(config.PerRole))
	for _, role := range names {
		v := config.PerRole[role]
		if v < 0 {
			return nil, fmt.Errorf("inflow for role %s must be >= 0, got %.1f", role, v)
		}
		amounts[role] = v
	}
	return &PerRoleAllocator{amounts: amounts}, nil
}

// Allocate returns the configured amount of each role in every year.
func (a *PerRoleAllocator) Allocate(ctx context.Context, roles []string, years []int) (map[string][]float64, error) {
	logger := logging.FromContext(ctx)
	out := make(map[string][]float64, len(roles))
	for _, role := range roles {
		v, ok := a.amounts[role]
		if !ok {
			logger.V(logging.DEBUG).Info("No inflow configured for role", "role", role)
		}
		amounts := make([]float64, len(years))
		for i := range amounts {
			amounts[i] = v
		}
		out[role] = amounts
	}
	return out, nil
}
