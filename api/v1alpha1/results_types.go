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

// CorrelationMethod names the correlation statistic reported for a driver.
type CorrelationMethod string

const (
	MethodPearson  CorrelationMethod = "Pearson"
	MethodSpearman CorrelationMethod = "Spearman"
)

// CorrelationRow is the driver-to-headcount correlation of one driver.
type CorrelationRow struct {
	Driver        string            `json:"driver"`
	FunctionUnits []string          `json:"functionUnits"`
	Method        CorrelationMethod `json:"method"`
	Correlation   float64           `json:"correlation"`
	PValue        float64           `json:"pValue"`
	Significant   bool              `json:"significant"`
	Points        int               `json:"points"`
}

// Rounded returns the row with output precision applied.
func (r CorrelationRow) Rounded() CorrelationRow {
	r.Correlation = Round(r.Correlation, CoefficientPlaces)
	r.PValue = Round(r.PValue, PValuePlaces)
	return r
}

// IntercorrelationMatrix is the pairwise Pearson correlation between drivers.
// Values[i][j] is nil when the pair has no defined correlation.
type IntercorrelationMatrix struct {
	Drivers []string     `json:"drivers"`
	Values  [][]*float64 `json:"values"`
}

// At returns the correlation between drivers a and b.
func (m IntercorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, d := range m.Drivers {
		if d == a {
			i = k
		}
		if d == b {
			j = k
		}
	}
	if i < 0 || j < 0 || m.Values[i][j] == nil {
		return 0, false
	}
	return *m.Values[i][j], true
}

// AlignedVector holds the year-aligned driver and headcount values of one driver.
type AlignedVector struct {
	Driver        string    `json:"driver"`
	FunctionUnits []string  `json:"functionUnits"`
	Years         []int     `json:"years"`
	DriverValues  []float64 `json:"driverValues"`
	Headcount     []float64 `json:"headcount"`
}

// CorrelationResult is the table published by the correlation stage.
type CorrelationResult struct {
	Rows        []CorrelationRow       `json:"rows"`
	Matrix      IntercorrelationMatrix `json:"matrix"`
	Threshold   float64                `json:"threshold"`
	Independent []AlignedVector        `json:"independent"`
}

// IndependentDrivers returns the names of the independent drivers in order.
func (r *CorrelationResult) IndependentDrivers() []string {
	names := make([]string, 0, len(r.Independent))
	for _, v := range r.Independent {
		names = append(names, v.Driver)
	}
	return names
}

// ModelType names an elasticity regression model.
type ModelType string

const (
	ModelLinear ModelType = "Linear"
	ModelLogLog ModelType = "LogLog"
)

// RegressionFit is one fitted elasticity model.
type RegressionFit struct {
	Model      ModelType `json:"model"`
	Intercept  float64   `json:"intercept"`
	Slope      float64   `json:"slope"`
	Elasticity float64   `json:"elasticity"`
	RSquared   float64   `json:"rSquared"`
	PValue     float64   `json:"pValue"`
	Points     int       `json:"points"`
}

// ElasticityRecord holds both candidate fits of a driver and the model choice.
type ElasticityRecord struct {
	Driver string        `json:"driver"`
	Linear RegressionFit `json:"linear"`

	// LogLog is nil when the log transform is undefined for the data.
	// +optional
	LogLog *RegressionFit `json:"logLog,omitempty"`

	// Choice is the recommended model plus an optional manual override.
	Choice Selection[ModelType] `json:"choice"`

	// Note records why a candidate was unavailable.
	// +optional
	Note string `json:"note,omitempty"`
}

// Active returns the fit selected by Choice.
func (r ElasticityRecord) Active() RegressionFit {
	if r.Choice.Resolve() == ModelLogLog && r.LogLog != nil {
		return *r.LogLog
	}
	return r.Linear
}

// ElasticityRow is the flattened view of an elasticity record.
type ElasticityRow struct {
	Driver           string    `json:"driver"`
	RecommendedModel ModelType `json:"recommendedModel"`
	SelectedModel    ModelType `json:"selectedModel"`
	Elasticity       float64   `json:"elasticity"`
	RSquared         float64   `json:"rSquared"`
	PValue           float64   `json:"pValue"`
	Significant      bool      `json:"significant"`
}

// Row flattens the record using its active fit, with output precision applied.
func (r ElasticityRecord) Row(alpha float64) ElasticityRow {
	fit := r.Active()
	return ElasticityRow{
		Driver:           r.Driver,
		RecommendedModel: r.Choice.Auto,
		SelectedModel:    fit.Model,
		Elasticity:       Round(fit.Elasticity, CoefficientPlaces),
		RSquared:         Round(fit.RSquared, CoefficientPlaces),
		PValue:           Round(fit.PValue, PValuePlaces),
		Significant:      fit.PValue < alpha,
	}
}

// ElasticityResult is the table published by the elasticity stage.
type ElasticityResult struct {
	Records []ElasticityRecord `json:"records"`
}

// Lookup returns the record of the named driver.
func (r *ElasticityResult) Lookup(driver string) (ElasticityRecord, bool) {
	for _, rec := range r.Records {
		if rec.Driver == driver {
			return rec, true
		}
	}
	return ElasticityRecord{}, false
}

// KPIProjection is the forward projection of one driver's KPI.
type KPIProjection struct {
	Driver         string         `json:"driver"`
	Method         ForecastMethod `json:"method"`
	HistoricalMean float64        `json:"historicalMean"`
	Years          []int          `json:"years"`
	Values         []float64      `json:"values"`
}

// ForecastRow is the projected demand of one role from one driver in one year.
type ForecastRow struct {
	Role         string  `json:"role"`
	FunctionUnit string  `json:"functionUnit"`
	Driver       string  `json:"driver"`
	Weight       float64 `json:"weight"`
	Elasticity   float64 `json:"elasticity"`
	Year         int     `json:"year"`
	KPI          float64 `json:"kpi"`
	Demand       float64 `json:"demand"`
}

// Rounded returns the row with output precision applied.
func (r ForecastRow) Rounded() ForecastRow {
	r.Weight = Round(r.Weight, HeadcountPlaces)
	r.Elasticity = Round(r.Elasticity, CoefficientPlaces)
	r.KPI = Round(r.KPI, KPIPlaces)
	r.Demand = Round(r.Demand, HeadcountPlaces)
	return r
}

// RoleDemand is the total demand of one role per forecast year.
type RoleDemand struct {
	Role   string    `json:"role"`
	Demand []float64 `json:"demand"`
}

// ForecastResult is the table published by the demand forecast stage.
type ForecastResult struct {
	Years       []int           `json:"years"`
	Method      ForecastMethod  `json:"method"`
	Projections []KPIProjection `json:"projections"`
	Rows        []ForecastRow   `json:"rows"`
}

// DemandByRole sums the rows of each role across drivers, per forecast year.
// Roles appear in the order they are first seen.
func (f *ForecastResult) DemandByRole() []RoleDemand {
	index := make(map[int]int, len(f.Years))
	for i, y := range f.Years {
		index[y] = i
	}
	var out []RoleDemand
	pos := make(map[string]int)
	for _, row := range f.Rows {
		i, ok := pos[row.Role]
		if !ok {
			i = len(out)
			pos[row.Role] = i
			out = append(out, RoleDemand{Role: row.Role, Demand: make([]float64, len(f.Years))})
		}
		if y, ok := index[row.Year]; ok {
			out[i].Demand[y] += row.Demand
		}
	}
	return out
}

// SupplyRow is the demand and projected supply of one role in one year.
type SupplyRow struct {
	Role           string  `json:"role"`
	Year           int     `json:"year"`
	BaseDemand     float64 `json:"baseDemand"`
	ScenarioDemand float64 `json:"scenarioDemand"`
	Supply         float64 `json:"supply"`
	Inflow         float64 `json:"inflow"`
}

// ScenarioSummaryRow aggregates all roles for one year.
type ScenarioSummaryRow struct {
	Year           int     `json:"year"`
	BaseDemand     float64 `json:"baseDemand"`
	ScenarioDemand float64 `json:"scenarioDemand"`
	Supply         float64 `json:"supply"`
}

// Rounded returns the row with output precision applied.
func (r ScenarioSummaryRow) Rounded() ScenarioSummaryRow {
	r.BaseDemand = Round(r.BaseDemand, HeadcountPlaces)
	r.ScenarioDemand = Round(r.ScenarioDemand, HeadcountPlaces)
	r.Supply = Round(r.Supply, HeadcountPlaces)
	return r
}

// ScenarioResult is the table published by the supply projection stage.
type ScenarioResult struct {
	Name       string               `json:"name"`
	GrowthRate float64              `json:"growthRate"`
	Years      []int                `json:"years"`
	Rows       []SupplyRow          `json:"rows"`
	Summary    []ScenarioSummaryRow `json:"summary"`
}

// GapStatus classifies the sign of a gap.
type GapStatus string

const (
	StatusShortfall GapStatus = "Shortfall"
	StatusSurplus   GapStatus = "Surplus"
	StatusBalanced  GapStatus = "Balanced"
)

// GapRow is the demand-supply differential of one role in one year.
type GapRow struct {
	Role       string    `json:"role"`
	Year       int       `json:"year"`
	Demand     float64   `json:"demand"`
	Supply     float64   `json:"supply"`
	Gap        float64   `json:"gap"`
	GapPercent float64   `json:"gapPercent"`
	Status     GapStatus `json:"status"`
}

// Rounded returns the row with output precision applied.
func (r GapRow) Rounded() GapRow {
	r.Demand = Round(r.Demand, HeadcountPlaces)
	r.Supply = Round(r.Supply, HeadcountPlaces)
	r.Gap = Round(r.Gap, HeadcountPlaces)
	r.GapPercent = Round(r.GapPercent, HeadcountPlaces)
	return r
}

// GapResult is the table published by the gap stage.
type GapResult struct {
	Rows []GapRow `json:"rows"`
}

// Strategy is one of the 4Bs remediation strategies.
type Strategy string

const (
	// StrategyBuy hires externally.
	StrategyBuy Strategy = "Buy"
	// StrategyBuild upskills internally.
	StrategyBuild Strategy = "Build"
	// StrategyBorrow uses contractors or redeployment.
	StrategyBorrow Strategy = "Borrow"
	// StrategyBoost retains and optimizes existing staff.
	StrategyBoost Strategy = "Boost"
)

// Strategies lists the 4Bs in display order.
var Strategies = []Strategy{StrategyBuy, StrategyBuild, StrategyBorrow, StrategyBoost}

// IsValid reports whether s is one of the 4Bs.
func (s Strategy) IsValid() bool {
	for _, v := range Strategies {
		if s == v {
			return true
		}
	}
	return false
}

// StrategyAssignment is the strategy decision for one role in one year.
type StrategyAssignment struct {
	GapRow `json:",inline"`

	Impact float64             `json:"impact"`
	Choice Selection[Strategy] `json:"choice"`
}

// FinalStrategy returns the override if set, otherwise the auto strategy.
func (a StrategyAssignment) FinalStrategy() Strategy {
	return a.Choice.Resolve()
}

// StrategyRow is the prioritized strategy of one role.
type StrategyRow struct {
	Role              string    `json:"role"`
	PeakYear          int       `json:"peakYear"`
	TotalGap          float64   `json:"totalGap"`
	MeanImpact        float64   `json:"meanImpact"`
	AutoStrategy      Strategy  `json:"autoStrategy"`
	Override          *Strategy `json:"override,omitempty"`
	FinalStrategy     Strategy  `json:"finalStrategy"`
	RecommendedAction string    `json:"recommendedAction"`
	PriorityScore     float64   `json:"priorityScore"`
}

// Rounded returns the row with output precision applied.
func (r StrategyRow) Rounded() StrategyRow {
	r.TotalGap = Round(r.TotalGap, HeadcountPlaces)
	r.MeanImpact = Round(r.MeanImpact, HeadcountPlaces)
	r.PriorityScore = Round(r.PriorityScore, HeadcountPlaces)
	return r
}

// StrategyDistributionRow counts roles and sums gaps per strategy and year.
type StrategyDistributionRow struct {
	Strategy Strategy `json:"strategy"`
	Year     int      `json:"year"`
	Roles    int      `json:"roles"`
	TotalGap float64  `json:"totalGap"`
}

// StrategyMixRow sums absolute gaps per final strategy.
type StrategyMixRow struct {
	Strategy Strategy `json:"strategy"`
	TotalGap float64  `json:"totalGap"`
}

// StrategyResult is the table published by the strategy stage.
type StrategyResult struct {
	Assignments  []StrategyAssignment      `json:"assignments"`
	Priorities   []StrategyRow             `json:"priorities"`
	Distribution []StrategyDistributionRow `json:"distribution"`
	Mix          []StrategyMixRow          `json:"mix"`
}
