// Package strategy assigns one of the 4Bs (Buy, Build, Borrow, Boost) to every
// role-year gap, aggregates the assignments per role and ranks the roles by
// priority.
package strategy

import (
	"context"
	"math"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// StageName identifies this stage in diagnostics and metrics.
const StageName = "strategy"

// Recommended actions per strategy.
const (
	ActionBuyUrgent = "Hire externally (urgently)"
	ActionBuy       = "Hire externally"
	ActionBuild     = "Upskill internally (targeted programs)"
	ActionBorrow    = "Use contractors or redeploy from low-impact areas"
	ActionBoost     = "Monitor and retain existing staff"
)

// Inputs carries the per-role user choices consumed by the classifier.
type Inputs struct {
	// Impact maps a role to its strategic impact score.
	Impact map[string]float64
	// Overrides maps a role to a manually selected strategy.
	Overrides map[string]v1alpha1.Strategy
	// RoleData supplies impact scores missing from Impact.
	RoleData config.RoleAssumptionsData
}

// Run classifies the gaps, prioritizes the roles and builds the summaries.
func Run(ctx context.Context, gaps *v1alpha1.GapResult, in Inputs, cfg config.StrategyConfig) (*v1alpha1.StrategyResult, diagnostics.Report, error) {
	assignments, report, err := Classify(ctx, gaps, in, cfg)
	if err != nil {
		return nil, report, err
	}
	priorities := Prioritize(assignments, cfg)
	result := &v1alpha1.StrategyResult{
		Assignments:  assignments,
		Priorities:   priorities,
		Distribution: Distribution(assignments),
		Mix:          Mix(priorities),
	}
	logging.FromContext(ctx).WithValues("stage", StageName).Info("Strategies assigned",
		"roles", len(priorities), "assignments", len(assignments))
	return result, report, nil
}

// Classify applies the decision table to every gap row, using gap% rounded to
// the output precision.
// Roles with an out-of-range impact or an unknown override are blocked.
func Classify(ctx context.Context, gaps *v1alpha1.GapResult, in Inputs, cfg config.StrategyConfig) ([]v1alpha1.StrategyAssignment, diagnostics.Report, error) {
	logger := logging.FromContext(ctx).WithValues("stage", StageName)
	var report diagnostics.Report

	if gaps == nil || len(gaps.Rows) == 0 {
		return nil, report, &diagnostics.InputIncompleteError{Stage: StageName, Missing: []string{"gap"}}
	}

	blocked := sets.New[string]()
	checked := sets.New[string]()
	var out []v1alpha1.StrategyAssignment
	for _, row := range gaps.Rows {
		if !checked.Has(row.Role) {
			checked.Insert(row.Role)
			if err := validateRole(row.Role, in, cfg); err != nil {
				report.Add(StageName, row.Role, err)
				blocked.Insert(row.Role)
			}
		}
		if blocked.Has(row.Role) {
			continue
		}

		impact := in.RoleData.ImpactFor(row.Role, cfg, in.Impact)
		// Decide on the gap% as published in the gap table.
		gapPercent := v1alpha1.Round(row.GapPercent, v1alpha1.HeadcountPlaces)
		choice := v1alpha1.AutoSelection(Decide(impact, gapPercent, cfg))
		if o, ok := in.Overrides[row.Role]; ok {
			choice = choice.WithOverride(o)
		}
		logger.V(logging.TRACE).Info("Strategy decided",
			"role", row.Role, "year", row.Year, "impact", impact, "gapPercent", gapPercent, "strategy", choice.Auto)
		out = append(out, v1alpha1.StrategyAssignment{GapRow: row, Impact: impact, Choice: choice})
	}
	return out, report, nil
}

func validateRole(role string, in Inputs, cfg config.StrategyConfig) error {
	var errs field.ErrorList
	impact := in.RoleData.ImpactFor(role, cfg, in.Impact)
	if err := config.ValidateImpact(impact); err != nil {
		errs = append(errs, field.Invalid(field.NewPath("strategicImpact").Key(role), impact, err.Error()))
	}
	if o, ok := in.Overrides[role]; ok && !o.IsValid() {
		supported := make([]string, len(v1alpha1.Strategies))
		for i, s := range v1alpha1.Strategies {
			supported[i] = string(s)
		}
		errs = append(errs, field.NotSupported(field.NewPath("strategyOverrides").Key(role), o, supported))
	}
	return diagnostics.NewValidationError(role, errs)
}

// Decide applies the 4Bs decision table.
func Decide(impact, gapPercent float64, cfg config.StrategyConfig) v1alpha1.Strategy {
	switch {
	case impact >= cfg.HighImpact:
		if gapPercent >= cfg.GapPercentThreshold {
			return v1alpha1.StrategyBuy
		}
		return v1alpha1.StrategyBuild
	case impact >= cfg.MediumImpact:
		if gapPercent >= cfg.GapPercentThreshold {
			return v1alpha1.StrategyBorrow
		}
		return v1alpha1.StrategyBoost
	default:
		return v1alpha1.StrategyBoost
	}
}

// Action returns the recommended action text for a strategy and total gap.
func Action(s v1alpha1.Strategy, totalGap float64, cfg config.StrategyConfig) string {
	switch s {
	case v1alpha1.StrategyBuy:
		if totalGap >= cfg.UrgentTotalGap {
			return ActionBuyUrgent
		}
		return ActionBuy
	case v1alpha1.StrategyBuild:
		return ActionBuild
	case v1alpha1.StrategyBorrow:
		return ActionBorrow
	default:
		return ActionBoost
	}
}

// Priority scores a role: totalGap × GapWeight + meanImpact × ImpactWeight, rounded to 1 dp.
func Priority(totalGap, meanImpact float64, cfg config.StrategyConfig) float64 {
	return v1alpha1.Round(totalGap*cfg.GapWeight+meanImpact*cfg.ImpactWeight, v1alpha1.HeadcountPlaces)
}

// Prioritize aggregates assignments per role and sorts the roles by descending
// priority, keeping input order on ties. A role's strategy is the one assigned to
// its first forecast year.
func Prioritize(assignments []v1alpha1.StrategyAssignment, cfg config.StrategyConfig) []v1alpha1.StrategyRow {
	type agg struct {
		first     v1alpha1.StrategyAssignment
		total     float64
		impactSum float64
		n         int
		peakYear  int
		peakAbs   float64
	}
	var order []string
	byRole := make(map[string]*agg)
	for _, a := range assignments {
		g, ok := byRole[a.Role]
		if !ok {
			g = &agg{first: a, peakYear: a.Year, peakAbs: -1}
			byRole[a.Role] = g
			order = append(order, a.Role)
		}
		if a.Year < g.first.Year {
			g.first = a
		}
		abs := math.Abs(a.Gap)
		g.total += abs
		g.impactSum += a.Impact
		g.n++
		if abs > g.peakAbs || (abs == g.peakAbs && a.Year < g.peakYear) {
			g.peakAbs, g.peakYear = abs, a.Year
		}
	}

	rows := make([]v1alpha1.StrategyRow, 0, len(order))
	for _, role := range order {
		g := byRole[role]
		mean := g.impactSum / float64(g.n)
		final := g.first.FinalStrategy()
		rows = append(rows, v1alpha1.StrategyRow{
			Role:              role,
			PeakYear:          g.peakYear,
			TotalGap:          g.total,
			MeanImpact:        mean,
			AutoStrategy:      g.first.Choice.Auto,
			Override:          g.first.Choice.Override,
			FinalStrategy:     final,
			RecommendedAction: Action(final, g.total, cfg),
			PriorityScore:     Priority(g.total, mean, cfg),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PriorityScore > rows[j].PriorityScore
	})
	return rows
}

// Distribution counts distinct roles and sums signed gaps per final strategy and year.
func Distribution(assignments []v1alpha1.StrategyAssignment) []v1alpha1.StrategyDistributionRow {
	type key struct {
		s    v1alpha1.Strategy
		year int
	}
	roles := make(map[key]sets.Set[string])
	sums := make(map[key]float64)
	for _, a := range assignments {
		k := key{a.FinalStrategy(), a.Year}
		if roles[k] == nil {
			roles[k] = sets.New[string]()
		}
		roles[k].Insert(a.Role)
		sums[k] += a.Gap
	}

	keys := make([]key, 0, len(roles))
	for k := range roles {
		keys = append(keys, k)
	}
	rank := strategyRank()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].s != keys[j].s {
			return rank[keys[i].s] < rank[keys[j].s]
		}
		return keys[i].year < keys[j].year
	})

	out := make([]v1alpha1.StrategyDistributionRow, len(keys))
	for i, k := range keys {
		out[i] = v1alpha1.StrategyDistributionRow{Strategy: k.s, Year: k.year, Roles: roles[k].Len(), TotalGap: sums[k]}
	}
	return out
}

// Mix sums the total absolute gap of the prioritized roles per final strategy.
func Mix(rows []v1alpha1.StrategyRow) []v1alpha1.StrategyMixRow {
	sums := make(map[v1alpha1.Strategy]float64)
	for _, r := range rows {
		sums[r.FinalStrategy] += r.TotalGap
	}
	var out []v1alpha1.StrategyMixRow
	for _, s := range v1alpha1.Strategies {
		if v, ok := sums[s]; ok {
			out = append(out, v1alpha1.StrategyMixRow{Strategy: s, TotalGap: v})
		}
	}
	return out
}

func strategyRank() map[v1alpha1.Strategy]int {
	rank := make(map[v1alpha1.Strategy]int, len(v1alpha1.Strategies))
	for i, s := range v1alpha1.Strategies {
		rank[s] = i
	}
	return rank
}
