// Package correlation measures how each business driver tracks the headcount of
// its mapped function units and keeps the drivers that are not strongly
// correlated with any other driver.
package correlation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/logging"
	"github.com/people-analytics/workforce-planner/internal/stats"
)

// StageName identifies this stage in diagnostics and metrics.
const StageName = "correlation"

type candidate struct {
	row     v1alpha1.CorrelationRow
	aligned v1alpha1.AlignedVector
	history v1alpha1.Series
}

// Filter computes driver-to-headcount correlations, the driver intercorrelation
// matrix and the set of independent drivers.
// It fails only when the driver or function unit table is empty.
func Filter(ctx context.Context, in *v1alpha1.PlanInputs, cfg config.CorrelationConfig) (*v1alpha1.CorrelationResult, diagnostics.Report, error) {
	logger := logging.FromContext(ctx).WithValues("stage", StageName)
	var report diagnostics.Report

	if missing := missingInputs(in); len(missing) > 0 {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: missing}
	}

	units := make(map[string]v1alpha1.FunctionUnit, len(in.FunctionUnits))
	for _, fu := range in.FunctionUnits {
		units[fu.Name] = fu
	}

	var candidates []candidate
	for i, d := range in.Drivers {
		c, err := correlate(d, units, cfg, field.NewPath("drivers").Index(i))
		if err != nil {
			logger.V(logging.DEBUG).Info("Driver excluded", "driver", d.Name, "reason", err.Error())
			report.Add(StageName, d.Name, err)
			continue
		}
		candidates = append(candidates, c)
	}

	names := make([]string, len(candidates))
	histories := make([]v1alpha1.Series, len(candidates))
	for i, c := range candidates {
		names[i] = c.row.Driver
		histories[i] = c.history
	}
	matrix := Intercorrelation(names, histories)

	result := &v1alpha1.CorrelationResult{
		Matrix:    matrix,
		Threshold: cfg.Threshold,
	}
	for i, c := range candidates {
		result.Rows = append(result.Rows, c.row)

		if partner, r, dependent := dependentOn(matrix, i, cfg.Threshold); dependent {
			logger.V(logging.DEBUG).Info("Driver is not independent",
				"driver", c.row.Driver, "correlatedWith", partner, "r", v1alpha1.Round(r, v1alpha1.CoefficientPlaces))
			report.Addf(StageName, c.row.Driver, diagnostics.KindInsufficientData,
				"correlated with %s (r=%.3f, threshold %.1f)", partner, r, cfg.Threshold)
			continue
		}
		if cfg.RequireSignificance && !c.row.Significant {
			report.Addf(StageName, c.row.Driver, diagnostics.KindInsufficientData,
				"correlation with headcount not significant (p=%.4f)", c.row.PValue)
			continue
		}
		result.Independent = append(result.Independent, c.aligned)
	}

	logger.Info("Correlation filter completed",
		"drivers", len(in.Drivers),
		"correlated", len(result.Rows),
		"independent", len(result.Independent))
	return result, report, nil
}

func missingInputs(in *v1alpha1.PlanInputs) []string {
	var missing []string
	if in == nil || len(in.Drivers) == 0 {
		missing = append(missing, "drivers")
	}
	if in == nil || len(in.FunctionUnits) == 0 {
		missing = append(missing, "functionUnits")
	}
	return missing
}

// correlate aligns one driver with the summed headcount of its units and measures the association.
func correlate(d v1alpha1.Driver, units map[string]v1alpha1.FunctionUnit, cfg config.CorrelationConfig, path *field.Path) (candidate, error) {
	if len(d.FunctionUnits) == 0 {
		return candidate{}, &diagnostics.InsufficientDataError{Item: d.Name, Reason: "no function units mapped"}
	}

	var errs field.ErrorList
	mapped := make([]v1alpha1.FunctionUnit, 0, len(d.FunctionUnits))
	for j, name := range d.FunctionUnits {
		fu, ok := units[name]
		if !ok {
			errs = append(errs, field.NotFound(path.Child("functionUnits").Index(j), name))
			continue
		}
		mapped = append(mapped, fu)
	}
	if err := diagnostics.NewValidationError(d.Name, errs); err != nil {
		return candidate{}, err
	}

	aligned := Align(d, mapped)
	if len(aligned.Years) < cfg.MinAlignedPoints {
		return candidate{}, &diagnostics.InsufficientDataError{
			Item:   d.Name,
			Reason: fmt.Sprintf("%d aligned years, need at least %d", len(aligned.Years), cfg.MinAlignedPoints),
		}
	}

	method := v1alpha1.MethodPearson
	r, p, err := stats.Pearson(aligned.DriverValues, aligned.Headcount)
	if err != nil {
		if errors.Is(err, stats.ErrZeroVariance) {
			return candidate{}, &diagnostics.InsufficientDataError{Item: d.Name, Reason: "zero variance in driver or headcount"}
		}
		return candidate{}, &diagnostics.ComputationError{Item: d.Name, Err: err}
	}
	if p >= cfg.Alpha {
		if rho, ps, serr := stats.Spearman(aligned.DriverValues, aligned.Headcount); serr == nil {
			method, r, p = v1alpha1.MethodSpearman, rho, ps
		}
	}

	return candidate{
		row: v1alpha1.CorrelationRow{
			Driver:        d.Name,
			FunctionUnits: append([]string(nil), d.FunctionUnits...),
			Method:        method,
			Correlation:   r,
			PValue:        p,
			Significant:   p < cfg.Alpha,
			Points:        len(aligned.Years),
		},
		aligned: aligned,
		history: d.History,
	}, nil
}

// Align pairs the driver history with the per-year headcount summed across units.
// Only years where both sides are present and non-zero are kept.
func Align(d v1alpha1.Driver, units []v1alpha1.FunctionUnit) v1alpha1.AlignedVector {
	out := v1alpha1.AlignedVector{
		Driver:        d.Name,
		FunctionUnits: append([]string(nil), d.FunctionUnits...),
	}
	for _, year := range d.History.Years() {
		x, ok := d.History.Lookup(year)
		if !ok || x == 0 {
			continue
		}
		var total float64
		var seen bool
		for _, fu := range units {
			if v, ok := fu.Headcount.Lookup(year); ok {
				total += v
				seen = true
			}
		}
		if !seen || total == 0 {
			continue
		}
		out.Years = append(out.Years, year)
		out.DriverValues = append(out.DriverValues, x)
		out.Headcount = append(out.Headcount, total)
	}
	return out
}

// Intercorrelation computes the pairwise Pearson correlation of driver histories
// over the years both drivers share. Pairs with fewer than two shared years or a
// constant side are left undefined.
func Intercorrelation(names []string, histories []v1alpha1.Series) v1alpha1.IntercorrelationMatrix {
	m := v1alpha1.IntercorrelationMatrix{
		Drivers: append([]string(nil), names...),
		Values:  make([][]*float64, len(names)),
	}
	for i := range names {
		m.Values[i] = make([]*float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			x, y := shared(histories[i], histories[j])
			if i == j {
				if stats.HasVariance(x) {
					m.Values[i][j] = ptr.To(1.0)
				}
				continue
			}
			r, _, err := stats.Pearson(x, y)
			if err != nil {
				continue
			}
			m.Values[i][j] = ptr.To(r)
			m.Values[j][i] = ptr.To(r)
		}
	}
	return m
}

func shared(a, b v1alpha1.Series) (x, y []float64) {
	for _, year := range a.Years() {
		va, okA := a.Lookup(year)
		vb, okB := b.Lookup(year)
		if okA && okB {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}

// dependentOn returns the first other driver whose absolute correlation reaches threshold.
func dependentOn(m v1alpha1.IntercorrelationMatrix, i int, threshold float64) (string, float64, bool) {
	for j, v := range m.Values[i] {
		if j == i || v == nil {
			continue
		}
		if math.Abs(*v) >= threshold {
			return m.Drivers[j], *v, true
		}
	}
	return "", 0, false
}
