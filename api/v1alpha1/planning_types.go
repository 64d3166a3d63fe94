/*
Copyright 2025 The Workforce Planner Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package v1alpha1 contains the tabular types exchanged between the planning
// pipeline and its collaborators: the input tables supplied by data entry and
// the output tables published by each pipeline stage.
package v1alpha1

import (
	"math"
	"sort"
)

// YearValue is one observation of a per-year series.
// A nil Value marks a missing (null) entry.
type YearValue struct {
	// Year is the calendar year of the observation.
	Year int `json:"year" yaml:"year"`

	// Value is the observed value, or nil when the entry is missing.
	// +optional
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Series is an ordered per-year sequence of values.
type Series []YearValue

// Lookup returns the value recorded for year and whether it is present and finite.
func (s Series) Lookup(year int) (float64, bool) {
	for _, p := range s {
		if p.Year == year {
			if p.Value == nil || math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0) {
				return 0, false
			}
			return *p.Value, true
		}
	}
	return 0, false
}

// Years returns the years of the series in ascending order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for _, p := range s {
		years = append(years, p.Year)
	}
	sort.Ints(years)
	return years
}

// Valid returns the years and values of all present, finite entries in ascending year order.
func (s Series) Valid() (years []int, values []float64) {
	for _, y := range s.Years() {
		if v, ok := s.Lookup(y); ok {
			years = append(years, y)
			values = append(values, v)
		}
	}
	return years, values
}

// Mean returns the mean of the valid entries; ok is false if there are none.
func (s Series) Mean() (mean float64, ok bool) {
	_, values := s.Valid()
	if len(values) == 0 {
		return 0, false
	}
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values)), true
}

// LastYear returns the latest year on the series axis, whether or not its value is present.
func (s Series) LastYear() (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	years := s.Years()
	return years[len(years)-1], true
}

// Driver is a business KPI hypothesized to drive workforce demand.
type Driver struct {
	// Name identifies the driver (e.g. "E-Commerce growth").
	Name string `json:"name" yaml:"name"`

	// History holds the per-year historical KPI values.
	History Series `json:"history" yaml:"history"`

	// FunctionUnits lists the function units whose headcount this driver is mapped to.
	// +optional
	FunctionUnits []string `json:"functionUnits,omitempty" yaml:"functionUnits,omitempty"`
}

// FunctionUnit is an organizational unit with a per-year headcount history.
type FunctionUnit struct {
	// Name identifies the function unit (e.g. "Supply Chain").
	Name string `json:"name" yaml:"name"`

	// Headcount holds the per-year headcount.
	Headcount Series `json:"headcount" yaml:"headcount"`
}

// Role is a critical role whose demand is forecast.
type Role struct {
	// Name identifies the role (e.g. "Data Scientist").
	Name string `json:"name" yaml:"name"`

	// FunctionUnit is the unit whose headcount is the role's baseline.
	FunctionUnit string `json:"functionUnit" yaml:"functionUnit"`

	// DriverWeights maps a driver name to the percentage of that driver's
	// demand allocated to this role. Weights of all roles under one driver
	// must sum to 100.
	// +optional
	DriverWeights map[string]float64 `json:"driverWeights,omitempty" yaml:"driverWeights,omitempty"`
}

// ForecastMethod selects how driver KPIs are projected forward.
type ForecastMethod string

const (
	// ForecastLinearTrend fits a least-squares line on (year, value) and extrapolates.
	ForecastLinearTrend ForecastMethod = "LinearTrend"
	// ForecastCAGR compounds the growth rate between the first and last observation.
	ForecastCAGR ForecastMethod = "CAGR"
)

// InflowMode selects how hiring inflow is distributed across roles.
type InflowMode string

const (
	// InflowSharedPool splits one yearly pool evenly across all projected roles.
	InflowSharedPool InflowMode = "SharedPool"
	// InflowPerRole uses an explicit yearly amount per role.
	InflowPerRole InflowMode = "PerRole"
)

// InflowSpec describes the yearly inflow of staff into the supply projection.
type InflowSpec struct {
	// Mode selects shared-pool or per-role inflow. Defaults to SharedPool.
	// +optional
	Mode InflowMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// SharedPool is the yearly FTE pipeline split evenly across roles.
	// +optional
	SharedPool *float64 `json:"sharedPool,omitempty" yaml:"sharedPool,omitempty"`

	// PerRole is the yearly FTE inflow per role. Roles not listed receive zero.
	// +optional
	PerRole map[string]float64 `json:"perRole,omitempty" yaml:"perRole,omitempty"`
}

// RoleRates holds the yearly attrition and retirement rates of one role as fractions.
type RoleRates struct {
	// Attrition is the yearly voluntary attrition rate (0.05 = 5%).
	// +optional
	Attrition *float64 `json:"attrition,omitempty" yaml:"attrition,omitempty"`

	// Retirement is the yearly retirement rate (0.02 = 2%).
	// +optional
	Retirement *float64 `json:"retirement,omitempty" yaml:"retirement,omitempty"`
}

// ScenarioAssumptions is a named set of growth, attrition, retirement and inflow
// assumptions producing one forecast variant.
type ScenarioAssumptions struct {
	// Name labels the scenario in outputs.
	// +optional
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Preset selects a configured growth preset (e.g. "Optimistic").
	// Ignored when GrowthRate is set.
	// +optional
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`

	// GrowthRate is the yearly demand growth multiplier (0.05 = +5%).
	// +optional
	GrowthRate *float64 `json:"growthRate,omitempty" yaml:"growthRate,omitempty"`

	// Rates holds per-role attrition and retirement overrides.
	// +optional
	Rates map[string]RoleRates `json:"rates,omitempty" yaml:"rates,omitempty"`

	// Inflow describes the yearly inflow.
	// +optional
	Inflow InflowSpec `json:"inflow,omitempty" yaml:"inflow,omitempty"`
}

// PlanInputs bundles every input table handed to the pipeline by data entry.
type PlanInputs struct {
	Drivers       []Driver       `json:"drivers" yaml:"drivers"`
	FunctionUnits []FunctionUnit `json:"functionUnits" yaml:"functionUnits"`
	Roles         []Role         `json:"roles" yaml:"roles"`

	// ForecastMethod selects the KPI projection. Defaults to LinearTrend.
	// +optional
	ForecastMethod ForecastMethod `json:"forecastMethod,omitempty" yaml:"forecastMethod,omitempty"`

	// Scenario holds the supply assumptions.
	// +optional
	Scenario ScenarioAssumptions `json:"scenario,omitempty" yaml:"scenario,omitempty"`

	// StrategicImpact maps a role to its strategic importance score (1-5).
	// +optional
	StrategicImpact map[string]float64 `json:"strategicImpact,omitempty" yaml:"strategicImpact,omitempty"`

	// ModelOverrides maps a driver to a manually selected elasticity model.
	// +optional
	ModelOverrides map[string]ModelType `json:"modelOverrides,omitempty" yaml:"modelOverrides,omitempty"`

	// StrategyOverrides maps a role to a manually selected strategy.
	// +optional
	StrategyOverrides map[string]Strategy `json:"strategyOverrides,omitempty" yaml:"strategyOverrides,omitempty"`
}

// DriverByName returns the driver with the given name.
func (in *PlanInputs) DriverByName(name string) (Driver, bool) {
	for _, d := range in.Drivers {
		if d.Name == name {
			return d, true
		}
	}
	return Driver{}, false
}

// FunctionUnitByName returns the function unit with the given name.
func (in *PlanInputs) FunctionUnitByName(name string) (FunctionUnit, bool) {
	for _, f := range in.FunctionUnits {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionUnit{}, false
}
