package pipeline

import (
	"context"
	"time"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

// Reader provides read access to a session.
// Reading a derived table recomputes it when any of its dependencies changed.
type Reader interface {
	// Inputs returns a copy of the current input tables.
	Inputs() v1alpha1.PlanInputs

	// Version returns the current version of table. Zero means never set or computed.
	Version(table Table) uint64

	// Snapshot returns the current snapshot of a derived table, recomputing it if stale.
	// The returned error is non-nil only when ctx is done; stage failures are carried
	// in Snapshot.Err.
	Snapshot(ctx context.Context, table Table) (*Snapshot, error)

	// IsStale reports whether reading table would recompute it.
	IsStale(table Table) bool

	// LastComputed returns when table was last published, or the zero time.
	LastComputed(table Table) time.Time
}

// Writer provides write access to the input tables of a session.
// Every write bumps the version of the tables it touches.
type Writer interface {
	// SetInputs replaces every input table.
	SetInputs(in *v1alpha1.PlanInputs)

	SetDrivers(drivers []v1alpha1.Driver)
	SetFunctionUnits(units []v1alpha1.FunctionUnit)
	SetRoles(roles []v1alpha1.Role)
	SetForecastMethod(method v1alpha1.ForecastMethod)
	SetScenario(assumptions v1alpha1.ScenarioAssumptions)
	SetStrategicImpact(role string, impact float64)

	// SetModelOverride selects the elasticity model of driver. A nil model clears the override.
	SetModelOverride(driver string, model *v1alpha1.ModelType)

	// SetStrategyOverride selects the strategy of role. A nil strategy clears the override.
	SetStrategyOverride(role string, strategy *v1alpha1.Strategy)

	// Invalidate drops the snapshot of a derived table so the next read recomputes it.
	Invalidate(table Table)
}

// ReadWriter combines both read and write access to a session.
type ReadWriter interface {
	Reader
	Writer
}
