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

package collector

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

// PlanFile is the on-disk layout of a plan. Driver and function unit histories
// may be given in wide form, as a values list aligned with Years, or in long form
// as a list of year/value pairs.
type PlanFile struct {
	// Years is the shared axis of every wide-form values list.
	Years []int `yaml:"years,omitempty"`

	Drivers       []WideDriver            `yaml:"drivers"`
	FunctionUnits []WideFunctionUnit      `yaml:"functionUnits"`
	Roles         []v1alpha1.Role         `yaml:"roles"`
	Method        v1alpha1.ForecastMethod `yaml:"forecastMethod,omitempty"`

	Scenario          v1alpha1.ScenarioAssumptions  `yaml:"scenario,omitempty"`
	StrategicImpact   map[string]float64            `yaml:"strategicImpact,omitempty"`
	ModelOverrides    map[string]v1alpha1.ModelType `yaml:"modelOverrides,omitempty"`
	StrategyOverrides map[string]v1alpha1.Strategy  `yaml:"strategyOverrides,omitempty"`
}

// WideDriver is a driver row of a plan file.
type WideDriver struct {
	Name          string          `yaml:"name"`
	Values        []*float64      `yaml:"values,omitempty"`
	History       v1alpha1.Series `yaml:"history,omitempty"`
	FunctionUnits []string        `yaml:"functionUnits,omitempty"`
}

// WideFunctionUnit is a function unit row of a plan file.
type WideFunctionUnit struct {
	Name      string          `yaml:"name"`
	Values    []*float64      `yaml:"values,omitempty"`
	Headcount v1alpha1.Series `yaml:"headcount,omitempty"`
}

// DecodePlan decodes a YAML or JSON plan file into plan inputs.
func DecodePlan(data []byte) (*v1alpha1.PlanInputs, error) {
	var f PlanFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.ToInputs()
}

// ToInputs converts the file layout into plan inputs.
func (f *PlanFile) ToInputs() (*v1alpha1.PlanInputs, error) {
	in := &v1alpha1.PlanInputs{
		Roles:             f.Roles,
		ForecastMethod:    f.Method,
		Scenario:          f.Scenario,
		StrategicImpact:   f.StrategicImpact,
		ModelOverrides:    f.ModelOverrides,
		StrategyOverrides: f.StrategyOverrides,
	}
	for _, d := range f.Drivers {
		history, err := f.series(d.Name, d.Values, d.History)
		if err != nil {
			return nil, err
		}
		in.Drivers = append(in.Drivers, v1alpha1.Driver{Name: d.Name, History: history, FunctionUnits: d.FunctionUnits})
	}
	for _, u := range f.FunctionUnits {
		headcount, err := f.series(u.Name, u.Values, u.Headcount)
		if err != nil {
			return nil, err
		}
		in.FunctionUnits = append(in.FunctionUnits, v1alpha1.FunctionUnit{Name: u.Name, Headcount: headcount})
	}
	return in, nil
}

func (f *PlanFile) series(name string, values []*float64, long v1alpha1.Series) (v1alpha1.Series, error) {
	if len(values) == 0 {
		return long, nil
	}
	if len(long) > 0 {
		return nil, fmt.Errorf("%s: values and long-form series are mutually exclusive", name)
	}
	if len(values) != len(f.Years) {
		return nil, fmt.Errorf("%s: %d values for %d years", name, len(values), len(f.Years))
	}
	out := make(v1alpha1.Series, len(values))
	for i, v := range values {
		out[i] = v1alpha1.YearValue{Year: f.Years[i], Value: v}
	}
	return out, nil
}
