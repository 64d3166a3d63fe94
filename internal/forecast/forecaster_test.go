package forecast

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
)

func series(start int, values ...*float64) v1alpha1.Series {
	s := make(v1alpha1.Series, len(values))
	for i, v := range values {
		s[i] = v1alpha1.YearValue{Year: start + i, Value: v}
	}
	return s
}

func vals(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = ptr.To(v)
	}
	return out
}

func linearRecord(driver string, elasticity float64) v1alpha1.ElasticityRecord {
	return v1alpha1.ElasticityRecord{
		Driver: driver,
		Linear: v1alpha1.RegressionFit{Model: v1alpha1.ModelLinear, Elasticity: elasticity},
		Choice: v1alpha1.AutoSelection(v1alpha1.ModelLinear),
	}
}

func testInputs() *v1alpha1.PlanInputs {
	return &v1alpha1.PlanInputs{
		Drivers: []v1alpha1.Driver{
			{Name: "Sales", History: series(2020, vals(100, 110, 120, 130)...)},
			{Name: "Claims", History: series(2020, vals(10, 20, 30, 40)...)},
		},
		FunctionUnits: []v1alpha1.FunctionUnit{
			{Name: "Ops", Headcount: series(2020, vals(40, 50, 60)...)},
		},
		Roles: []v1alpha1.Role{
			{Name: "Analyst", FunctionUnit: "Ops", DriverWeights: map[string]float64{"Sales": 60, "Claims": 60}},
			{Name: "Engineer", FunctionUnit: "Ops", DriverWeights: map[string]float64{"Sales": 40, "Claims": 30}},
		},
	}
}

func TestDemand(t *testing.T) {
	assert.InDelta(t, 60, Demand(100, 1, 120, 100, 50), 1e-9)
	assert.InDelta(t, 100, Demand(100, 2, 100, 100, 100), 1e-9, "no KPI growth keeps the baseline")
}

func TestForecast(t *testing.T) {
	elasticities := &v1alpha1.ElasticityResult{Records: []v1alpha1.ElasticityRecord{
		linearRecord("Sales", 0.5),
		linearRecord("Claims", 1.2),
	}}
	result, report, err := Forecast(context.Background(), testInputs(), elasticities, config.Default().Forecast)
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2025, 2026, 2027}, result.Years)
	assert.Equal(t, v1alpha1.ForecastLinearTrend, result.Method)
	require.Len(t, result.Projections, 1)
	assert.Equal(t, []float64{140, 150, 160, 170}, result.Projections[0].Values)

	// Claims weights sum to 90 and block only that driver.
	require.Len(t, report.Items, 1)
	assert.Equal(t, "Claims", report.Items[0].Item)
	assert.Equal(t, diagnostics.KindValidation, report.Items[0].Kind)

	require.Len(t, result.Rows, 8)
	first := result.Rows[0]
	assert.Equal(t, "Analyst", first.Role)
	assert.Equal(t, 2024, first.Year)
	assert.InDelta(t, 50*(1+0.5*(140.0-115)/115)*0.6, first.Demand, 1e-9)

	byRole := result.DemandByRole()
	require.Len(t, byRole, 2)
	assert.Equal(t, "Engineer", byRole[1].Role)
	assert.InDelta(t, 50*(1+0.5*(170.0-115)/115)*0.4, byRole[1].Demand[3], 1e-9)
}

func TestForecastMultipleDriversSum(t *testing.T) {
	in := testInputs()
	// Analyst carries 60 under Claims, Engineer 40.
	in.Roles[1].DriverWeights["Claims"] = 40
	elasticities := &v1alpha1.ElasticityResult{Records: []v1alpha1.ElasticityRecord{
		linearRecord("Sales", 0.5),
		linearRecord("Claims", 1.2),
	}}
	result, report, err := Forecast(context.Background(), in, elasticities, config.Default().Forecast)
	require.NoError(t, err)
	assert.True(t, report.Empty())

	var analyst2024 float64
	for _, row := range result.Rows {
		if row.Role == "Analyst" && row.Year == 2024 {
			analyst2024 += row.Demand
		}
	}
	byRole := result.DemandByRole()
	assert.InDelta(t, analyst2024, byRole[0].Demand[0], 1e-9)
}

func TestForecastMissingInputs(t *testing.T) {
	_, _, err := Forecast(context.Background(), testInputs(), nil, config.Default().Forecast)
	require.Error(t, err)
	assert.True(t, diagnostics.IsInputIncomplete(err))
}

func TestProjectCAGR(t *testing.T) {
	d := v1alpha1.Driver{Name: "Sales", History: series(2020, ptr.To(100.0), nil, ptr.To(121.0))}
	proj, err := Project(d, v1alpha1.ForecastCAGR, []int{2023, 2024})
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{133.1, 146.41}, proj.Values, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}

	zero := v1alpha1.Driver{Name: "Fresh", History: series(2020, vals(0, 5, 10)...)}
	_, err = Project(zero, v1alpha1.ForecastCAGR, []int{2023})
	assert.Equal(t, diagnostics.KindInsufficientData, diagnostics.KindOf(err))
}

func TestDriverWeights(t *testing.T) {
	tests := []struct {
		name    string
		roles   []v1alpha1.Role
		wantErr diagnostics.Kind
	}{
		{
			name: "Test case 1: exact sum",
			roles: []v1alpha1.Role{
				{Name: "A", DriverWeights: map[string]float64{"D": 33.3}},
				{Name: "B", DriverWeights: map[string]float64{"D": 33.3}},
				{Name: "C", DriverWeights: map[string]float64{"D": 33.4}},
			},
		},
		{
			name: "Test case 2: weight above 100",
			roles: []v1alpha1.Role{
				{Name: "A", DriverWeights: map[string]float64{"D": 120}},
				{Name: "B", DriverWeights: map[string]float64{"D": -20}},
			},
			wantErr: diagnostics.KindValidation,
		},
		{
			name:    "Test case 3: no weighted roles",
			roles:   []v1alpha1.Role{{Name: "A"}},
			wantErr: diagnostics.KindInsufficientData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := driverWeights("D", tt.roles, config.DefaultWeightTolerance)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, diagnostics.KindOf(err))
		})
	}
}
