// Package forecast projects driver KPIs forward and converts them into yearly
// role demand using the active elasticity of each driver and the role weights.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/logging"
	"github.com/people-analytics/workforce-planner/internal/stats"
)

// StageName identifies this stage in diagnostics and metrics.
const StageName = "forecast"

// Forecast projects every estimated driver and emits one demand row per role, driver and year.
func Forecast(
	ctx context.Context,
	in *v1alpha1.PlanInputs,
	elasticities *v1alpha1.ElasticityResult,
	cfg config.ForecastConfig,
) (*v1alpha1.ForecastResult, diagnostics.Report, error) {
	logger := logging.FromContext(ctx).WithValues("stage", StageName)
	var report diagnostics.Report

	if missing := missingInputs(in, elasticities); len(missing) > 0 {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: missing}
	}

	method := in.ForecastMethod
	if method == "" {
		method = cfg.Method
	}
	years, err := ForecastYears(in.Drivers, cfg.Horizon)
	if err != nil {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: []string{"driver history years"}}
	}

	result := &v1alpha1.ForecastResult{Years: years, Method: method}
	for _, rec := range elasticities.Records {
		driver, ok := in.DriverByName(rec.Driver)
		if !ok {
			report.Add(StageName, rec.Driver, &diagnostics.InsufficientDataError{Item: rec.Driver, Reason: "driver history not found"})
			continue
		}

		proj, err := Project(driver, method, years)
		if err != nil {
			logger.V(logging.DEBUG).Info("Driver projection skipped", "driver", driver.Name, "reason", err.Error())
			report.Add(StageName, driver.Name, err)
			continue
		}

		weights, err := driverWeights(driver.Name, in.Roles, cfg.WeightTolerance)
		if err != nil {
			logger.V(logging.DEBUG).Info("Driver weights rejected", "driver", driver.Name, "reason", err.Error())
			report.Add(StageName, driver.Name, err)
			continue
		}
		result.Projections = append(result.Projections, proj)

		elasticity := rec.Active().Elasticity
		for _, w := range weights {
			role := w.role
			baseline, err := Baseline(in, role)
			if err != nil {
				report.Add(StageName, role.Name, err)
				continue
			}
			for i, year := range years {
				kpi := proj.Values[i]
				result.Rows = append(result.Rows, v1alpha1.ForecastRow{
					Role:         role.Name,
					FunctionUnit: role.FunctionUnit,
					Driver:       driver.Name,
					Weight:       w.weight,
					Elasticity:   elasticity,
					Year:         year,
					KPI:          kpi,
					Demand:       Demand(baseline, elasticity, kpi, proj.HistoricalMean, w.weight),
				})
				logger.V(logging.TRACE).Info("Demand projected",
					"role", role.Name, "driver", driver.Name, "year", year, "kpi", kpi)
			}
		}
	}

	logger.Info("Demand forecast completed",
		"method", method, "years", years, "projections", len(result.Projections), "rows", len(result.Rows))
	return result, report, nil
}

func missingInputs(in *v1alpha1.PlanInputs, e *v1alpha1.ElasticityResult) []string {
	var missing []string
	if e == nil || len(e.Records) == 0 {
		missing = append(missing, "elasticity")
	}
	if in == nil || len(in.Roles) == 0 {
		missing = append(missing, "roles")
	}
	if in == nil || len(in.FunctionUnits) == 0 {
		missing = append(missing, "functionUnits")
	}
	return missing
}

// ForecastYears returns the horizon years following the latest year on any driver axis.
func ForecastYears(drivers []v1alpha1.Driver, horizon int) ([]int, error) {
	last, found := 0, false
	for _, d := range drivers {
		if y, ok := d.History.LastYear(); ok && (!found || y > last) {
			last, found = y, true
		}
	}
	if !found {
		return nil, errors.New("no driver history")
	}
	years := make([]int, horizon)
	for i := range years {
		years[i] = last + i + 1
	}
	return years, nil
}

// Project extrapolates the valid history of a driver to years.
func Project(d v1alpha1.Driver, method v1alpha1.ForecastMethod, years []int) (v1alpha1.KPIProjection, error) {
	hy, hv := d.History.Valid()
	if len(hv) < 2 {
		return v1alpha1.KPIProjection{}, &diagnostics.InsufficientDataError{
			Item: d.Name, Reason: fmt.Sprintf("%d valid KPI values, need at least 2", len(hv)),
		}
	}
	mean := stats.Mean(hv)
	if mean == 0 {
		return v1alpha1.KPIProjection{}, &diagnostics.ComputationError{Item: d.Name, Err: errors.New("historical KPI mean is zero")}
	}

	proj := v1alpha1.KPIProjection{
		Driver:         d.Name,
		Method:         method,
		HistoricalMean: mean,
		Years:          append([]int(nil), years...),
	}
	switch method {
	case v1alpha1.ForecastLinearTrend:
		values, err := stats.LinearTrend(hy, hv, years)
		if err != nil {
			return v1alpha1.KPIProjection{}, &diagnostics.InsufficientDataError{Item: d.Name, Reason: err.Error()}
		}
		for i := range values {
			values[i] = v1alpha1.Round(values[i], v1alpha1.KPIPlaces)
		}
		proj.Values = values
	case v1alpha1.ForecastCAGR:
		rate, err := CAGR(hy, hv)
		if err != nil {
			return v1alpha1.KPIProjection{}, &diagnostics.InsufficientDataError{Item: d.Name, Reason: err.Error()}
		}
		lastYear, lastValue := hy[len(hy)-1], hv[len(hv)-1]
		proj.Values = make([]float64, len(years))
		for i, y := range years {
			proj.Values[i] = lastValue * math.Pow(1+rate, float64(y-lastYear))
		}
	default:
		return v1alpha1.KPIProjection{}, diagnostics.NewValidationError(d.Name, field.ErrorList{
			field.NotSupported(field.NewPath("forecastMethod"), method,
				[]string{string(v1alpha1.ForecastLinearTrend), string(v1alpha1.ForecastCAGR)}),
		})
	}
	return proj, nil
}

// CAGR returns the compound annual growth rate between the first and last points.
// It is undefined when either endpoint is not positive.
func CAGR(years []int, values []float64) (float64, error) {
	first, last := values[0], values[len(values)-1]
	span := years[len(years)-1] - years[0]
	if first <= 0 || last <= 0 {
		return 0, errors.New("CAGR undefined for non-positive endpoints")
	}
	if span <= 0 {
		return 0, errors.New("CAGR undefined for a zero year span")
	}
	return math.Pow(last/first, 1/float64(span)) - 1, nil
}

// Demand converts a projected KPI into role demand.
func Demand(baseline, elasticity, kpi, historicalMean, weight float64) float64 {
	growth := (kpi - historicalMean) / historicalMean
	return baseline * (1 + elasticity*growth) * weight / 100
}

// Baseline returns the mean valid headcount of the role's function unit.
func Baseline(in *v1alpha1.PlanInputs, role v1alpha1.Role) (float64, error) {
	fu, ok := in.FunctionUnitByName(role.FunctionUnit)
	if !ok {
		return 0, diagnostics.NewValidationError(role.Name, field.ErrorList{
			field.NotFound(field.NewPath("roles").Key(role.Name).Child("functionUnit"), role.FunctionUnit),
		})
	}
	mean, ok := fu.Headcount.Mean()
	if !ok {
		return 0, &diagnostics.InsufficientDataError{Item: role.Name, Reason: fmt.Sprintf("no headcount for function unit %s", fu.Name)}
	}
	return mean, nil
}

type roleWeight struct {
	role   v1alpha1.Role
	weight float64
}

// driverWeights returns the roles weighted under driver. The weights must each lie
// in [0,100] and sum to 100 within tolerance; they are never renormalized.
func driverWeights(driver string, roles []v1alpha1.Role, tolerance float64) ([]roleWeight, error) {
	path := field.NewPath("roles")
	var (
		out  []roleWeight
		sum  float64
		errs field.ErrorList
	)
	for _, r := range roles {
		w, ok := r.DriverWeights[driver]
		if !ok {
			continue
		}
		if w < 0 || w > 100 || math.IsNaN(w) {
			errs = append(errs, field.Invalid(path.Key(r.Name).Child("driverWeights").Key(driver), w, "must be between 0 and 100"))
		}
		sum += w
		out = append(out, roleWeight{role: r, weight: w})
	}
	if len(out) == 0 {
		return nil, &diagnostics.InsufficientDataError{Item: driver, Reason: "no roles weighted to driver"}
	}
	if math.Abs(sum-100) > tolerance {
		errs = append(errs, field.Invalid(path.Child("driverWeights").Key(driver), sum, "weights must sum to 100"))
	}
	if err := diagnostics.NewValidationError(driver, errs); err != nil {
		return nil, err
	}
	return out, nil
}
