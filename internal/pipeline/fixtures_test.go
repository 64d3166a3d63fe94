package pipeline

import (
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

func series(start int, values ...float64) v1alpha1.Series {
	out := make(v1alpha1.Series, len(values))
	for i, v := range values {
		out[i] = v1alpha1.YearValue{Year: start + i, Value: ptr.To(v)}
	}
	return out
}

// fixtureInputs returns a plan with one driver mapped by name to the Orders Fulfilment unit and
// one driver that matches no unit.
func fixtureInputs() *v1alpha1.PlanInputs {
	return &v1alpha1.PlanInputs{
		Drivers: []v1alpha1.Driver{
			{Name: "Orders", History: series(2019, 10, 11, 12, 13, 14)},
			{Name: "Web traffic", History: series(2019, 5, 7, 6, 9, 8)},
		},
		FunctionUnits: []v1alpha1.FunctionUnit{
			{Name: "Orders Fulfilment", Headcount: series(2019, 100, 112, 119, 131, 140)},
		},
		Roles: []v1alpha1.Role{
			{Name: "Analyst", FunctionUnit: "Orders Fulfilment", DriverWeights: map[string]float64{"Orders": 60}},
			{Name: "Engineer", FunctionUnit: "Orders Fulfilment", DriverWeights: map[string]float64{"Orders": 40}},
		},
		ForecastMethod: v1alpha1.ForecastLinearTrend,
		Scenario:       v1alpha1.ScenarioAssumptions{Preset: "Baseline"},
	}
}
