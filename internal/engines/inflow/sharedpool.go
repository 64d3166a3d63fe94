package inflow

import (
	"context"
	"fmt"

	"github.com/people-analytics/workforce-planner/internal/logging"
)

// SharedPoolAllocator splits one yearly pool evenly across every projected role.
type SharedPoolAllocator struct {
	pool float64
}

// NewSharedPoolAllocator creates a SharedPoolAllocator.
func NewSharedPoolAllocator(config *AllocatorConfig) (*SharedPoolAllocator, error) {
	if config == nil {
		return nil, fmt.Errorf("shared pool allocator config cannot be nil")
	}
	if config.SharedPool < 0 {
		return nil, fmt.Errorf("shared pool must be >= 0, got %.1f", config.SharedPool)
	}
	return &SharedPoolAllocator{pool: config.SharedPool}, nil
}

// Allocate gives each role pool/len(roles) in every year.
func (a *SharedPoolAllocator) Allocate(ctx context.Context, roles []string, years []int) (map[string][]float64, error) {
	out := make(map[string][]float64, len(roles))
	if len(roles) == 0 {
		return out, nil
	}
	share := a.pool / float64(len(roles))
	for _, role := range roles {
		amounts := make([]float64, len(years))
		for i := range amounts {
			amounts[i] = share
		}
		out[role] = amounts
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Shared inflow allocated",
		"pool", a.pool, "roles", len(roles), "share", share)
	return out, nil
}
