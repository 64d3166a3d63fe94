// Package elasticity fits linear and log-log regressions of headcount on each
// independent driver and recommends the model used for forecasting.
//
// Both fits are kept on the record. A manual override only changes which fit is
// active, it never triggers a refit.
package elasticity

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
const StageName = "elasticity"

// ErrNoLogLogFit is returned when a log-log override targets a driver without a log-log fit.
var ErrNoLogLogFit = errors.New("no log-log fit available")

// Estimate fits both models for every independent driver and applies overrides.
func Estimate(
	ctx context.Context,
	independent []v1alpha1.AlignedVector,
	overrides map[string]v1alpha1.ModelType,
	cfg config.ElasticityConfig,
) (*v1alpha1.ElasticityResult, diagnostics.Report, error) {
	logger := logging.FromContext(ctx).WithValues("stage", StageName)
	var report diagnostics.Report

	if len(independent) == 0 {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: []string{"independent drivers"}}
	}

	result := &v1alpha1.ElasticityResult{}
	for _, vec := range independent {
		rec, err := Fit(vec, cfg)
		if err != nil {
			logger.V(logging.DEBUG).Info("Driver excluded", "driver", vec.Driver, "reason", err.Error())
			report.Add(StageName, vec.Driver, err)
			continue
		}
		if model, ok := overrides[vec.Driver]; ok {
			rec, err = Override(rec, model)
			if err != nil {
				report.Add(StageName, vec.Driver, err)
				continue
			}
		}
		active := rec.Active()
		logger.V(logging.DEBUG).Info("Elasticity estimated",
			"driver", rec.Driver,
			"recommended", rec.Choice.Auto,
			"selected", active.Model,
			"elasticity", v1alpha1.Round(active.Elasticity, v1alpha1.CoefficientPlaces))
		result.Records = append(result.Records, rec)
	}

	logger.Info("Elasticity estimation completed", "drivers", len(independent), "estimated", len(result.Records))
	return result, report, nil
}

// Fit computes the linear and, when defined, the log-log regression of one driver.
func Fit(vec v1alpha1.AlignedVector, cfg config.ElasticityConfig) (v1alpha1.ElasticityRecord, error) {
	x, y := vec.DriverValues, vec.Headcount
	if len(x) < 2 {
		return v1alpha1.ElasticityRecord{}, &diagnostics.InsufficientDataError{
			Item: vec.Driver, Reason: fmt.Sprintf("%d points, need at least 2", len(x)),
		}
	}
	if !stats.HasVariance(x) || !stats.HasVariance(y) {
		return v1alpha1.ElasticityRecord{}, &diagnostics.InsufficientDataError{Item: vec.Driver, Reason: "zero variance in driver or headcount"}
	}
	meanX, meanY := stats.Mean(x), stats.Mean(y)
	if meanY == 0 {
		return v1alpha1.ElasticityRecord{}, &diagnostics.ComputationError{Item: vec.Driver, Err: errors.New("mean headcount is zero")}
	}

	lin, err := stats.OLS(x, y)
	if err != nil {
		return v1alpha1.ElasticityRecord{}, &diagnostics.ComputationError{Item: vec.Driver, Err: err}
	}
	rec := v1alpha1.ElasticityRecord{
		Driver: vec.Driver,
		Linear: v1alpha1.RegressionFit{
			Model:      v1alpha1.ModelLinear,
			Intercept:  lin.Intercept,
			Slope:      lin.Slope,
			Elasticity: lin.Slope * meanX / meanY,
			RSquared:   lin.RSquared,
			PValue:     lin.PValue,
			Points:     lin.N,
		},
	}

	if logX, logY, ok := logTransform(x, y); !ok {
		rec.Note = "log-log model skipped: non-positive values"
	} else if loglog, err := stats.OLS(logX, logY); err != nil {
		rec.Note = fmt.Sprintf("log-log model skipped: %v", err)
	} else {
		rec.LogLog = &v1alpha1.RegressionFit{
			Model:      v1alpha1.ModelLogLog,
			Intercept:  loglog.Intercept,
			Slope:      loglog.Slope,
			Elasticity: loglog.Slope,
			RSquared:   loglog.RSquared,
			PValue:     loglog.PValue,
			Points:     loglog.N,
		}
	}

	rec.Choice = v1alpha1.AutoSelection(Recommend(rec.Linear, rec.LogLog, cfg.Alpha))
	return rec, nil
}

// Recommend prefers the log-log fit when it explains more variance and its slope is significant.
func Recommend(linear v1alpha1.RegressionFit, loglog *v1alpha1.RegressionFit, alpha float64) v1alpha1.ModelType {
	if loglog != nil && loglog.RSquared > linear.RSquared && loglog.PValue < alpha {
		return v1alpha1.ModelLogLog
	}
	return v1alpha1.ModelLinear
}

// Override selects model as the active fit of rec without refitting.
func Override(rec v1alpha1.ElasticityRecord, model v1alpha1.ModelType) (v1alpha1.ElasticityRecord, error) {
	path := field.NewPath("modelOverrides").Key(rec.Driver)
	switch model {
	case v1alpha1.ModelLinear:
	case v1alpha1.ModelLogLog:
		if rec.LogLog == nil {
			return rec, diagnostics.NewValidationError(rec.Driver, field.ErrorList{
				field.Invalid(path, model, ErrNoLogLogFit.Error()),
			})
		}
	default:
		return rec, diagnostics.NewValidationError(rec.Driver, field.ErrorList{
			field.NotSupported(path, model, []string{string(v1alpha1.ModelLinear), string(v1alpha1.ModelLogLog)}),
		})
	}
	rec.Choice = rec.Choice.WithOverride(model)
	return rec, nil
}

func logTransform(x, y []float64) (lx, ly []float64, ok bool) {
	lx = make([]float64, len(x))
	ly = make([]float64, len(y))
	for i := range x {
		if x[i] <= 0 || y[i] <= 0 {
			return nil, nil, false
		}
		lx[i] = math.Log(x[i])
		ly[i] = math.Log(y[i])
	}
	return lx, ly, true
}
