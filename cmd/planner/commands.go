package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/actionplan"
	"github.com/people-analytics/workforce-planner/internal/collector"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/export"
	"github.com/people-analytics/workforce-planner/internal/gap"
	"github.com/people-analytics/workforce-planner/internal/logging"
	"github.com/people-analytics/workforce-planner/internal/metrics"
	"github.com/people-analytics/workforce-planner/internal/pipeline"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full planning pipeline and print every table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := computePlan(cmd, opts)
			if err != nil {
				return err
			}
			if len(roles) > 0 {
				filterRoles(plan, roles)
			}
			return writeJSON(cmd.OutOrStdout(), roundPlan(plan))
		},
	}
	cmd.Flags().StringSliceVar(&roles, "role", nil, "restrict gap, strategy and action tables to these roles (repeatable)")
	return cmd
}

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run the pipeline and print the diagnostics report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := computePlan(cmd, opts)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), plan.Diagnostics); err != nil {
				return err
			}
			if refused := plan.Diagnostics.ByKind(diagnostics.KindInputIncomplete); len(refused) > 0 {
				return fmt.Errorf("%d stages refused to run on incomplete inputs", len(refused))
			}
			return nil
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var out, chart string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every table to an Excel workbook and optionally chart demand against supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := computePlan(cmd, opts)
			if err != nil {
				return err
			}
			if err := export.SaveWorkbook(plan, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workbook written to %s\n", out)
			if chart == "" {
				return nil
			}
			if err := export.SaveChart(plan, chart); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", chart)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "plan.xlsx", "workbook path")
	cmd.Flags().StringVar(&chart, "chart", "", "demand/supply chart path (png, svg or pdf)")
	return cmd
}

// computePlan loads configuration and inputs, then runs one session.
func computePlan(cmd *cobra.Command, opts *rootOptions) (*pipeline.Plan, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(logging.Options{
		Development: cfg.Logging.Development,
		Verbosity:   cfg.Logging.Verbosity,
	})
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.IntoContext(ctx, logger)

	source := collector.WithTimeout(collector.NewFileSource(opts.inputPath), cfg.Collector.Timeout)
	if opts.fallbackInput != "" {
		source = collector.WithFallback(source,
			collector.WithTimeout(collector.NewFileSource(opts.fallbackInput), cfg.Collector.Timeout))
	}
	in, err := source.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading inputs from %s: %w", source.Name(), err)
	}
	logInputs(logger, in)

	recorder := metrics.NewRecorder()
	manager := pipeline.NewManager(cfg, recorder)
	session := manager.Open(in)
	defer manager.Close(session.ID())

	plan, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}
	if opts.metricsPath != "" {
		if err := prometheus.WriteToTextfile(opts.metricsPath, recorder.Registry()); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}
	return plan, nil
}

func logInputs(logger logr.Logger, in *v1alpha1.PlanInputs) {
	logger.V(logging.DEBUG).Info("Plan inputs loaded",
		"tables", collector.Present(in),
		"drivers", len(in.Drivers),
		"functionUnits", len(in.FunctionUnits),
		"roles", len(in.Roles))
}

// filterRoles keeps only the given roles in the gap, strategy and action tables.
// Yearly gap totals are recomputed over the kept roles.
func filterRoles(plan *pipeline.Plan, roles []string) {
	keep := sets.New(roles...)
	if plan.Gaps != nil {
		plan.Gaps = &v1alpha1.GapResult{Rows: gap.FilterRoles(plan.Gaps.Rows, roles)}
		plan.GapTotals = gap.TotalsByYear(plan.Gaps.Rows)
	}
	if plan.Strategy != nil {
		filtered := *plan.Strategy
		filtered.Assignments = nil
		for _, a := range plan.Strategy.Assignments {
			if keep.Has(a.Role) {
				filtered.Assignments = append(filtered.Assignments, a)
			}
		}
		filtered.Priorities = nil
		for _, p := range plan.Strategy.Priorities {
			if keep.Has(p.Role) {
				filtered.Priorities = append(filtered.Priorities, p)
			}
		}
		plan.Strategy = &filtered
	}
	var actions []actionplan.Initiative
	for _, a := range plan.Actions {
		if keep.Has(a.Role) {
			actions = append(actions, a)
		}
	}
	plan.Actions = actions
}

// roundPlan returns a copy of plan with output precision applied to every row table.
func roundPlan(plan *pipeline.Plan) *pipeline.Plan {
	out := *plan
	if plan.Correlation != nil {
		c := *plan.Correlation
		c.Rows = mapRows(c.Rows, v1alpha1.CorrelationRow.Rounded)
		out.Correlation = &c
	}
	if plan.Forecast != nil {
		f := *plan.Forecast
		f.Rows = mapRows(f.Rows, v1alpha1.ForecastRow.Rounded)
		out.Forecast = &f
	}
	if plan.Scenario != nil {
		s := *plan.Scenario
		s.Summary = mapRows(s.Summary, v1alpha1.ScenarioSummaryRow.Rounded)
		out.Scenario = &s
	}
	if plan.Gaps != nil {
		out.Gaps = &v1alpha1.GapResult{Rows: mapRows(plan.Gaps.Rows, v1alpha1.GapRow.Rounded)}
	}
	out.GapTotals = mapRows(plan.GapTotals, gap.YearTotal.Rounded)
	if plan.Strategy != nil {
		s := *plan.Strategy
		s.Priorities = mapRows(s.Priorities, v1alpha1.StrategyRow.Rounded)
		out.Strategy = &s
	}
	return &out
}

func mapRows[T any](rows []T, f func(T) T) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
