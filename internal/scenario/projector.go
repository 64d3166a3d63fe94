// Package scenario applies a growth scenario to forecast demand and simulates the
// supply of each role year by year under attrition, retirement and inflow.
package scenario

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/engines/inflow"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// StageName identifies this stage in diagnostics and metrics.
const StageName = "scenario"

type roleProjection struct {
	rows []v1alpha1.SupplyRow
	err  error
}

// Project computes scenario demand and supply for every role of the forecast.
// Roles are projected concurrently up to cfg.Parallelism; the result is assembled
// in role order once every role has finished.
func Project(
	ctx context.Context,
	forecast *v1alpha1.ForecastResult,
	assumptions v1alpha1.ScenarioAssumptions,
	cfg config.ScenarioConfig,
	roleData config.RoleAssumptionsData,
) (*v1alpha1.ScenarioResult, diagnostics.Report, error) {
	logger := logging.FromContext(ctx).WithValues("stage", StageName)
	var report diagnostics.Report

	if forecast == nil || len(forecast.Rows) == 0 || len(forecast.Years) == 0 {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: []string{"forecast"}}
	}

	name, growth, err := ResolveGrowth(assumptions, cfg)
	if err != nil {
		report.Add(StageName, "growthRate", err)
		name, growth = config.BaselinePreset, 0
	}

	demand := forecast.DemandByRole()
	roles := make([]string, len(demand))
	for i, d := range demand {
		roles[i] = d.Role
	}

	allocator, err := inflow.FromSpec(assumptions.Inflow, roles, cfg, roleData)
	if err != nil {
		report.Add(StageName, "inflow", diagnostics.NewValidationError("inflow", field.ErrorList{
			field.Invalid(field.NewPath("scenario", "inflow"), assumptions.Inflow.Mode, err.Error()),
		}))
		allocator, _ = inflow.NewAllocator(inflow.PerRoleStrategy, &inflow.AllocatorConfig{})
	}
	inflows, err := allocator.Allocate(ctx, roles, forecast.Years)
	if err != nil {
		return nil, report, fmt.Errorf("allocating inflow: %w", err)
	}

	parallelism := cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	results := make([]roleProjection, len(demand))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range demand {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rd := demand[i]
			attrition, retirement := roleData.RatesFor(rd.Role, cfg, assumptions.Rates[rd.Role])
			rows, err := projectRole(rd, forecast.Years, growth, attrition, retirement, inflows[rd.Role])
			results[i] = roleProjection{rows: rows, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, fmt.Errorf("projecting supply: %w", err)
	}

	result := &v1alpha1.ScenarioResult{
		Name:       scenarioName(assumptions, name),
		GrowthRate: growth,
		Years:      append([]int(nil), forecast.Years...),
	}
	for i, rp := range results {
		if rp.err != nil {
			report.Add(StageName, demand[i].Role, rp.err)
			continue
		}
		result.Rows = append(result.Rows, rp.rows...)
	}
	result.Summary = Summarize(result.Years, result.Rows)

	logger.Info("Supply projection completed",
		"scenario", result.Name, "growthRate", growth, "roles", len(demand), "rows", len(result.Rows))
	return result, report, nil
}

// ResolveGrowth returns the scenario name and growth rate. An explicit rate wins over a preset.
func ResolveGrowth(a v1alpha1.ScenarioAssumptions, cfg config.ScenarioConfig) (string, float64, error) {
	path := field.NewPath("scenario")
	if a.GrowthRate != nil {
		g := *a.GrowthRate
		if g <= -1 || math.IsNaN(g) || math.IsInf(g, 0) {
			return "", 0, diagnostics.NewValidationError("growthRate", field.ErrorList{
				field.Invalid(path.Child("growthRate"), g, "must be greater than -1"),
			})
		}
		return "Custom", g, nil
	}
	preset := a.Preset
	if preset == "" {
		preset = config.BaselinePreset
	}
	g, ok := cfg.Preset(preset)
	if !ok {
		return "", 0, diagnostics.NewValidationError("growthRate", field.ErrorList{
			field.NotFound(path.Child("preset"), preset),
		})
	}
	return preset, g, nil
}

func scenarioName(a v1alpha1.ScenarioAssumptions, resolved string) string {
	if a.Name != "" {
		return a.Name
	}
	return resolved
}

// projectRole seeds supply with the first year's demand, so the first forecast
// year never shows a gap.
func projectRole(rd v1alpha1.RoleDemand, years []int, growth, attrition, retirement float64, inflow []float64) ([]v1alpha1.SupplyRow, error) {
	if err := config.ValidateRates(attrition, retirement); err != nil {
		return nil, diagnostics.NewValidationError(rd.Role, field.ErrorList{
			field.Invalid(field.NewPath("scenario", "rates").Key(rd.Role), attrition+retirement, err.Error()),
		})
	}
	if len(inflow) != len(years) {
		inflow = make([]float64, len(years))
	}

	scenarioDemand := ApplyGrowth(rd.Demand, growth)
	supply := Supply(scenarioDemand[0], attrition+retirement, inflow)

	rows := make([]v1alpha1.SupplyRow, len(years))
	for i, year := range years {
		rows[i] = v1alpha1.SupplyRow{
			Role:           rd.Role,
			Year:           year,
			BaseDemand:     rd.Demand[i],
			ScenarioDemand: scenarioDemand[i],
			Supply:         supply[i],
			Inflow:         inflow[i],
		}
	}
	return rows, nil
}

// ApplyGrowth compounds growth over the forecast years: base[i] × (1+growth)^i.
func ApplyGrowth(base []float64, growth float64) []float64 {
	out := make([]float64, len(base))
	for i, v := range base {
		out[i] = v * math.Pow(1+growth, float64(i))
	}
	return out
}

// Supply folds the yearly supply recursion starting from initial:
// supply[i] = supply[i-1] × (1 − loss) + inflow[i]. inflow[0] is not applied.
func Supply(initial, loss float64, inflow []float64) []float64 {
	if len(inflow) == 0 {
		return nil
	}
	return fold(inflow[1:], initial, func(prev, in float64) float64 {
		return prev*(1-loss) + in
	})
}

// fold returns the running accumulation of step over xs, seeded with init.
func fold(xs []float64, init float64, step func(acc, x float64) float64) []float64 {
	out := make([]float64, 0, len(xs)+1)
	out = append(out, init)
	acc := init
	for _, x := range xs {
		acc = step(acc, x)
		out = append(out, acc)
	}
	return out
}

// Summarize totals base demand, scenario demand and supply per year across roles.
func Summarize(years []int, rows []v1alpha1.SupplyRow) []v1alpha1.ScenarioSummaryRow {
	index := make(map[int]int, len(years))
	out := make([]v1alpha1.ScenarioSummaryRow, len(years))
	for i, y := range years {
		index[y] = i
		out[i].Year = y
	}
	for _, r := range rows {
		i, ok := index[r.Year]
		if !ok {
			continue
		}
		out[i].BaseDemand += r.BaseDemand
		out[i].ScenarioDemand += r.ScenarioDemand
		out[i].Supply += r.Supply
	}
	return out
}
