package inflow

import (
	"context"
	"fmt"
)

// Allocator distributes the yearly hiring inflow among roles.
type Allocator interface {
	// Allocate returns the inflow of each role for each year, indexed like years.
	Allocate(ctx context.Context, roles []string, years []int) (map[string][]float64, error)
}

// Strategy is an enumeration of the different strategies that can be used by the Allocator
type Strategy int

// enumeration of Strategy
const (
	SharedPoolStrategy Strategy = iota
	PerRoleStrategy
)

func (s Strategy) String() string {
	switch s {
	case SharedPoolStrategy:
		return "SharedPool"
	case PerRoleStrategy:
		return "PerRole"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// AllocatorConfig holds the amounts used by the allocators.
type AllocatorConfig struct {
	// SharedPool is the yearly inflow split evenly across roles.
	SharedPool float64
	// PerRole is the yearly inflow of each role.
	PerRole map[string]float64
}

// NewAllocator is a factory that creates a new Allocator based on the provided strategy
func NewAllocator(strategy Strategy, config *AllocatorConfig) (Allocator, error) {
	switch strategy {
	case SharedPoolStrategy:
		return NewSharedPoolAllocator(config)
	case PerRoleStrategy:
		return NewPerRoleAllocator(config)
	default:
		return nil, fmt.Errorf("unsupported inflow strategy: %v", strategy)
	}
}
