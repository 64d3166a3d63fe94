package v1alpha1

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"k8s.io/utils/ptr"
)

// helper: build a series from consecutive years
func makeSeries(start int, values ...*float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = YearValue{Year: start + i, Value: v}
	}
	return s
}

func TestSeries(t *testing.T) {
	s := Series{
		{Year: 2022, Value: ptr.To(30.0)},
		{Year: 2020, Value: ptr.To(10.0)},
		{Year: 2021},
		{Year: 2023, Value: ptr.To(math.NaN())},
	}

	if got := s.Years(); !reflect.DeepEqual(got, []int{2020, 2021, 2022, 2023}) {
		t.Errorf("Years() = %v", got)
	}
	years, values := s.Valid()
	if !reflect.DeepEqual(years, []int{2020, 2022}) || !reflect.DeepEqual(values, []float64{10, 30}) {
		t.Errorf("Valid() = %v, %v", years, values)
	}
	if mean, ok := s.Mean(); !ok || mean != 20 {
		t.Errorf("Mean() = %v, %v; want 20, true", mean, ok)
	}
	if last, ok := s.LastYear(); !ok || last != 2023 {
		t.Errorf("LastYear() = %v, %v; want 2023, true", last, ok)
	}
	if _, ok := s.Lookup(2021); ok {
		t.Error("Lookup of a null entry should report missing")
	}
	if _, ok := s.Lookup(2023); ok {
		t.Error("Lookup of a NaN entry should report missing")
	}

	var empty Series
	if _, ok := empty.Mean(); ok {
		t.Error("Mean of an empty series should report missing")
	}
	if _, ok := empty.LastYear(); ok {
		t.Error("LastYear of an empty series should report missing")
	}
}

func TestSelection(t *testing.T) {
	auto := AutoSelection(StrategyBuy)
	if auto.Resolve() != StrategyBuy || auto.Overridden() {
		t.Fatalf("auto selection resolved to %s, overridden=%v", auto.Resolve(), auto.Overridden())
	}

	over := auto.WithOverride(StrategyBorrow)
	if over.Resolve() != StrategyBorrow || !over.Overridden() {
		t.Errorf("override resolved to %s, overridden=%v", over.Resolve(), over.Overridden())
	}
	if auto.Override != nil {
		t.Error("WithOverride must not modify the receiver")
	}
	if over.Auto != StrategyBuy {
		t.Errorf("override replaced the auto value: %s", over.Auto)
	}

	same := auto.WithOverride(StrategyBuy)
	if same.Overridden() {
		t.Error("override equal to the auto value should not count as overridden")
	}

	data, err := json.Marshal(auto)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"auto":"Buy"}` {
		t.Errorf("unexpected json %s", data)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		places int
		want   float64
	}{
		{"Test case 1: headcount", 12.345, HeadcountPlaces, 12.3},
		{"Test case 2: half away from zero", -2.25, HeadcountPlaces, -2.3},
		{"Test case 3: coefficient", 0.98765, CoefficientPlaces, 0.988},
		{"Test case 4: p-value", 0.000049, PValuePlaces, 0},
		{"Test case 5: kpi", 101.006, KPIPlaces, 101.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.v, tt.places); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
			}
		})
	}
	if !math.IsNaN(Round(math.NaN(), 1)) {
		t.Error("Round should keep NaN")
	}
}

func TestIntercorrelationMatrixAt(t *testing.T) {
	m := IntercorrelationMatrix{
		Drivers: []string{"a", "b"},
		Values:  [][]*float64{{ptr.To(1.0), ptr.To(0.4)}, {ptr.To(0.4), nil}},
	}
	if r, ok := m.At("a", "b"); !ok || r != 0.4 {
		t.Errorf("At(a, b) = %v, %v", r, ok)
	}
	if _, ok := m.At("b", "b"); ok {
		t.Error("undefined pair should report missing")
	}
	if _, ok := m.At("a", "c"); ok {
		t.Error("unknown driver should report missing")
	}
}

func TestElasticityRecordActive(t *testing.T) {
	rec := ElasticityRecord{
		Driver: "orders",
		Linear: RegressionFit{Model: ModelLinear, Elasticity: 0.81234, RSquared: 0.9, PValue: 0.01},
		LogLog: &RegressionFit{Model: ModelLogLog, Elasticity: 0.5, RSquared: 0.95, PValue: 0.2},
		Choice: AutoSelection(ModelLinear),
	}
	if got := rec.Active().Model; got != ModelLinear {
		t.Errorf("Active() = %s, want Linear", got)
	}

	rec.Choice = rec.Choice.WithOverride(ModelLogLog)
	row := rec.Row(0.05)
	want := ElasticityRow{
		Driver:           "orders",
		RecommendedModel: ModelLinear,
		SelectedModel:    ModelLogLog,
		Elasticity:       0.5,
		RSquared:         0.95,
		PValue:           0.2,
		Significant:      false,
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("Row() = %+v, want %+v", row, want)
	}

	rec.LogLog = nil
	if got := rec.Active().Model; got != ModelLinear {
		t.Errorf("Active() without a log-log fit = %s, want Linear", got)
	}
}

func TestDemandByRole(t *testing.T) {
	f := &ForecastResult{
		Years: []int{2024, 2025},
		Rows: []ForecastRow{
			{Role: "analyst", Driver: "a", Year: 2024, Demand: 10},
			{Role: "engineer", Driver: "a", Year: 2024, Demand: 5},
			{Role: "analyst", Driver: "b", Year: 2024, Demand: 2},
			{Role: "analyst", Driver: "a", Year: 2025, Demand: 11},
			{Role: "analyst", Driver: "a", Year: 2030, Demand: 99},
		},
	}
	want := []RoleDemand{
		{Role: "analyst", Demand: []float64{12, 11}},
		{Role: "engineer", Demand: []float64{5, 0}},
	}
	if got := f.DemandByRole(); !reflect.DeepEqual(got, want) {
		t.Errorf("DemandByRole() = %+v, want %+v", got, want)
	}
}

func TestStrategyIsValid(t *testing.T) {
	for _, s := range Strategies {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Strategy("Bribe").IsValid() {
		t.Error("unknown strategy should be invalid")
	}
}

func TestPlanInputsLookup(t *testing.T) {
	in := &PlanInputs{
		Drivers:       []Driver{{Name: "orders", History: makeSeries(2020, ptr.To(1.0))}},
		FunctionUnits: []FunctionUnit{{Name: "ops"}},
	}
	if d, ok := in.DriverByName("orders"); !ok || len(d.History) != 1 {
		t.Errorf("DriverByName(orders) = %+v, %v", d, ok)
	}
	if _, ok := in.DriverByName("missing"); ok {
		t.Error("unknown driver should not be found")
	}
	if _, ok := in.FunctionUnitByName("ops"); !ok {
		t.Error("function unit ops should be found")
	}
}
