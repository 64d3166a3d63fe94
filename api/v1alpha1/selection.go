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

package v1alpha1

import "math"

// Selection pairs an automatically computed value with an optional manual override.
// The auto value is never overwritten; Resolve picks the override when one is set.
type Selection[T comparable] struct {
	// Auto is the computed value.
	Auto T `json:"auto"`

	// Override is the manually selected value, if any.
	// +optional
	Override *T `json:"override,omitempty"`
}

// AutoSelection returns a selection carrying only a computed value.
func AutoSelection[T comparable](v T) Selection[T] {
	return Selection[T]{Auto: v}
}

// WithOverride returns a copy of s overridden with v.
func (s Selection[T]) WithOverride(v T) Selection[T] {
	s.Override = &v
	return s
}

// Resolve returns the override when set, otherwise the auto value.
func (s Selection[T]) Resolve() T {
	if s.Override != nil {
		return *s.Override
	}
	return s.Auto
}

// Overridden reports whether an override replaces the auto value.
func (s Selection[T]) Overridden() bool {
	return s.Override != nil && *s.Override != s.Auto
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Output precision conventions.
const (
	// HeadcountPlaces applies to demand, supply, gap, gap% and impact values.
	HeadcountPlaces = 1
	// CoefficientPlaces applies to elasticity, correlation and R² values.
	CoefficientPlaces = 3
	// PValuePlaces applies to p-values.
	PValuePlaces = 4
	// KPIPlaces applies to projected driver KPI values.
	KPIPlaces = 2
)
