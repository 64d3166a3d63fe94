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

// Package collector loads the plan input tables handed to the pipeline by its
// data-entry collaborators.
package collector

import (
	"context"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

// TableCategory names one of the input tables a source provides.
type TableCategory string

const (
	// CategoryDrivers is the business driver KPI history table.
	CategoryDrivers TableCategory = "drivers"

	// CategoryFunctionUnits is the function unit headcount history table.
	CategoryFunctionUnits TableCategory = "functionUnits"

	// CategoryRoles is the critical role table with driver weights.
	CategoryRoles TableCategory = "roles"

	// CategoryAssumptions covers the scenario, impact and override tables.
	CategoryAssumptions TableCategory = "assumptions"
)

// Source is the interface for pluggable plan input sources.
// Implementations include FileSource and StaticSource; TimeoutSource and
// FallbackSource decorate another Source.
type Source interface {
	// Name returns the unique name of this source (e.g., "file:plan.yaml").
	Name() string

	// Collect returns the plan inputs.
	// A nil error with a partially filled PlanInputs is valid; the pipeline
	// reports the missing tables when a stage needs them.
	Collect(ctx context.Context) (*v1alpha1.PlanInputs, error)
}

// Present returns the categories for which inputs hold at least one row.
func Present(in *v1alpha1.PlanInputs) []TableCategory {
	if in == nil {
		return nil
	}
	var out []TableCategory
	if len(in.Drivers) > 0 {
		out = append(out, CategoryDrivers)
	}
	if len(in.FunctionUnits) > 0 {
		out = append(out, CategoryFunctionUnits)
	}
	if len(in.Roles) > 0 {
		out = append(out, CategoryRoles)
	}
	if in.Scenario.Name != "" || in.Scenario.Preset != "" || in.Scenario.GrowthRate != nil ||
		len(in.StrategicImpact) > 0 || len(in.ModelOverrides) > 0 || len(in.StrategyOverrides) > 0 {
		out = append(out, CategoryAssumptions)
	}
	return out
}
