package pipeline

import (
	"context"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/actionplan"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/gap"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// Plan bundles every table of a session after a full run.
// Tables of refused stages are nil; the refusal is listed in Diagnostics.
type Plan struct {
	SessionID   string                      `json:"sessionId"`
	Alpha       float64                     `json:"alpha"`
	Correlation *v1alpha1.CorrelationResult `json:"correlation,omitempty"`
	Elasticity  *v1alpha1.ElasticityResult  `json:"elasticity,omitempty"`
	Forecast    *v1alpha1.ForecastResult    `json:"forecast,omitempty"`
	Scenario    *v1alpha1.ScenarioResult    `json:"scenario,omitempty"`
	Gaps        *v1alpha1.GapResult         `json:"gaps,omitempty"`
	GapTotals   []gap.YearTotal             `json:"gapTotals,omitempty"`
	Strategy    *v1alpha1.StrategyResult    `json:"strategy,omitempty"`
	Actions     []actionplan.Initiative     `json:"actions,omitempty"`
	Diagnostics diagnostics.Report          `json:"diagnostics"`
}

func (s *Session) Correlation(ctx context.Context) (*v1alpha1.CorrelationResult, diagnostics.Report, error) {
	return read[*v1alpha1.CorrelationResult](ctx, s, TableCorrelation)
}

func (s *Session) Elasticity(ctx context.Context) (*v1alpha1.ElasticityResult, diagnostics.Report, error) {
	return read[*v1alpha1.ElasticityResult](ctx, s, TableElasticity)
}

func (s *Session) Forecast(ctx context.Context) (*v1alpha1.ForecastResult, diagnostics.Report, error) {
	return read[*v1alpha1.ForecastResult](ctx, s, TableForecast)
}

func (s *Session) Scenario(ctx context.Context) (*v1alpha1.ScenarioResult, diagnostics.Report, error) {
	return read[*v1alpha1.ScenarioResult](ctx, s, TableScenario)
}

func (s *Session) Gaps(ctx context.Context) (*v1alpha1.GapResult, diagnostics.Report, error) {
	return read[*v1alpha1.GapResult](ctx, s, TableGap)
}

func (s *Session) Strategy(ctx context.Context) (*v1alpha1.StrategyResult, diagnostics.Report, error) {
	return read[*v1alpha1.StrategyResult](ctx, s, TableStrategy)
}

func read[T any](ctx context.Context, s *Session, table Table) (T, diagnostics.Report, error) {
	snap, err := s.Snapshot(ctx, table)
	if err != nil {
		var zero T
		return zero, diagnostics.Report{}, err
	}
	return valueOf[T](snap)
}

// ActionPlan drafts initiatives from the current strategy table.
// It is a terminal sink and is not versioned.
func (s *Session) ActionPlan(ctx context.Context) ([]actionplan.Initiative, error) {
	result, _, err := s.Strategy(ctx)
	if err != nil {
		return nil, err
	}
	fc, _, err := s.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil || fc == nil {
		return nil, nil
	}
	return actionplan.Draft(result, fc.Years), nil
}

// Run reads every stage in order and returns all tables with the merged diagnostics.
// The returned error is non-nil only when ctx is done.
func (s *Session) Run(ctx context.Context) (*Plan, error) {
	logger := logging.FromContext(ctx).WithValues("session", s.id.String())
	plan := &Plan{SessionID: s.id.String(), Alpha: s.cfg.Elasticity.Alpha}

	for _, table := range Stages {
		snap, err := s.Snapshot(ctx, table)
		if err != nil {
			return nil, err
		}
		plan.Diagnostics.Merge(snap.Report)
		plan.Diagnostics.Add(string(table), string(table), snap.Err)

		switch v := snap.Value.(type) {
		case *v1alpha1.CorrelationResult:
			plan.Correlation = v
		case *v1alpha1.ElasticityResult:
			plan.Elasticity = v
		case *v1alpha1.ForecastResult:
			plan.Forecast = v
		case *v1alpha1.ScenarioResult:
			plan.Scenario = v
		case *v1alpha1.GapResult:
			plan.Gaps = v
		case *v1alpha1.StrategyResult:
			plan.Strategy = v
		}
	}

	if plan.Gaps != nil {
		plan.GapTotals = gap.TotalsByYear(plan.Gaps.Rows)
	}
	if plan.Strategy != nil && plan.Forecast != nil {
		plan.Actions = actionplan.Draft(plan.Strategy, plan.Forecast.Years)
	}
	logger.Info("Plan computed",
		"diagnostics", len(plan.Diagnostics.Items),
		"initiatives", len(plan.Actions))
	return plan, nil
}
