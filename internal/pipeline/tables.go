package pipeline

import (
	"time"

	"github.com/people-analytics/workforce-planner/internal/correlation"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/elasticity"
	"github.com/people-analytics/workforce-planner/internal/forecast"
	"github.com/people-analytics/workforce-planner/internal/gap"
	"github.com/people-analytics/workforce-planner/internal/scenario"
	"github.com/people-analytics/workforce-planner/internal/strategy"
)

// Table names an input table or a derived table of a session.
type Table string

// Input tables.
const (
	TableDrivers           Table = "drivers"
	TableFunctionUnits     Table = "functionUnits"
	TableRoles             Table = "roles"
	TableForecastMethod    Table = "forecastMethod"
	TableAssumptions       Table = "assumptions"
	TableStrategicImpact   Table = "strategicImpact"
	TableModelOverrides    Table = "modelOverrides"
	TableStrategyOverrides Table = "strategyOverrides"
)

// Derived tables, one per stage.
const (
	TableCorrelation Table = correlation.StageName
	TableElasticity  Table = elasticity.StageName
	TableForecast    Table = forecast.StageName
	TableScenario    Table = scenario.StageName
	TableGap         Table = gap.StageName
	TableStrategy    Table = strategy.StageName
)

// InputTables lists every input table.
var InputTables = []Table{
	TableDrivers, TableFunctionUnits, TableRoles, TableForecastMethod,
	TableAssumptions, TableStrategicImpact, TableModelOverrides, TableStrategyOverrides,
}

// Stages lists the derived tables in pipeline order.
var Stages = []Table{
	TableCorrelation, TableElasticity, TableForecast, TableScenario, TableGap, TableStrategy,
}

// dependencies maps a derived table to the tables it reads.
var dependencies = map[Table][]Table{
	TableCorrelation: {TableDrivers, TableFunctionUnits},
	TableElasticity:  {TableCorrelation, TableModelOverrides},
	TableForecast:    {TableElasticity, TableDrivers, TableFunctionUnits, TableRoles, TableForecastMethod},
	TableScenario:    {TableForecast, TableAssumptions},
	TableGap:         {TableScenario},
	TableStrategy:    {TableGap, TableStrategicImpact, TableStrategyOverrides},
}

// Dependencies returns the tables table is computed from. Input tables have none.
func Dependencies(table Table) []Table {
	return append([]Table(nil), dependencies[table]...)
}

// IsDerived reports whether table is produced by a stage.
func IsDerived(table Table) bool {
	_, ok := dependencies[table]
	return ok
}

// Snapshot is one published, immutable version of a derived table.
type Snapshot struct {
	Table Table
	// Version is assigned on publish from the session clock.
	Version uint64
	// DependsOn records the version of every dependency the snapshot was computed from.
	DependsOn map[Table]uint64
	// ComputedAt is the publish time.
	ComputedAt time.Time
	// Value is the stage result, or nil when Err is set.
	Value any
	// Report holds the per-item diagnostics of the stage.
	Report diagnostics.Report
	// Err is the stage-level failure, typically an InputIncompleteError.
	Err error
}

func valueOf[T any](snap *Snapshot) (T, diagnostics.Report, error) {
	v, _ := snap.Value.(T)
	return v, snap.Report, snap.Err
}
