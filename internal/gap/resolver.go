// Package gap computes the demand-supply differential of every role and year.
// All functions are pure; resolving the same projection twice yields identical rows.
package gap

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// StageName identifies this stage in diagnostics and metrics.
const StageName = "gap"

// Resolve derives one gap row per supply row using the scenario demand.
func Resolve(ctx context.Context, projection *v1alpha1.ScenarioResult) (*v1alpha1.GapResult, error) {
	if projection == nil || len(projection.Rows) == 0 {
		return nil, &diagnostics.InputIncompleteError{Stage: StageName, Missing: []string{"scenario"}}
	}
	out := &v1alpha1.GapResult{Rows: make([]v1alpha1.GapRow, len(projection.Rows))}
	shortfalls := 0
	for i, r := range projection.Rows {
		out.Rows[i] = Row(r.Role, r.Year, r.ScenarioDemand, r.Supply)
		if out.Rows[i].Status == v1alpha1.StatusShortfall {
			shortfalls++
		}
	}
	logging.FromContext(ctx).WithValues("stage", StageName).Info("Gaps resolved",
		"rows", len(out.Rows), "shortfalls", shortfalls)
	return out, nil
}

// Row computes the gap of one role in one year. A positive gap is a shortfall.
func Row(role string, year int, demand, supply float64) v1alpha1.GapRow {
	g := demand - supply
	return v1alpha1.GapRow{
		Role:       role,
		Year:       year,
		Demand:     demand,
		Supply:     supply,
		Gap:        g,
		GapPercent: Percent(g, demand),
		Status:     Status(g),
	}
}

// Percent returns gap as a percentage of demand, or 0 when demand is 0.
func Percent(gap, demand float64) float64 {
	if demand == 0 {
		return 0
	}
	return gap / demand * 100
}

// Status classifies a gap by its sign.
func Status(gap float64) v1alpha1.GapStatus {
	switch {
	case gap > 0:
		return v1alpha1.StatusShortfall
	case gap < 0:
		return v1alpha1.StatusSurplus
	default:
		return v1alpha1.StatusBalanced
	}
}

// FilterRoles keeps the rows of the given roles. An empty selection keeps every row.
func FilterRoles(rows []v1alpha1.GapRow, roles []string) []v1alpha1.GapRow {
	if len(roles) == 0 {
		return append([]v1alpha1.GapRow(nil), rows...)
	}
	keep := sets.New(roles...)
	out := make([]v1alpha1.GapRow, 0, len(rows))
	for _, r := range rows {
		if keep.Has(r.Role) {
			out = append(out, r)
		}
	}
	return out
}

// Roles returns the distinct roles of rows in sorted order.
func Roles(rows []v1alpha1.GapRow) []string {
	s := sets.New[string]()
	for _, r := range rows {
		s.Insert(r.Role)
	}
	return sets.List(s)
}

// YearTotal is the sum of demand, supply and gap across roles for one year.
type YearTotal struct {
	Year   int     `json:"year"`
	Demand float64 `json:"demand"`
	Supply float64 `json:"supply"`
	Gap    float64 `json:"gap"`
}

// Rounded returns the totals with output precision applied.
func (t YearTotal) Rounded() YearTotal {
	t.Demand = v1alpha1.Round(t.Demand, v1alpha1.HeadcountPlaces)
	t.Supply = v1alpha1.Round(t.Supply, v1alpha1.HeadcountPlaces)
	t.Gap = v1alpha1.Round(t.Gap, v1alpha1.HeadcountPlaces)
	return t
}

// TotalsByYear sums rows per year in ascending year order.
func TotalsByYear(rows []v1alpha1.GapRow) []YearTotal {
	byYear := make(map[int]*YearTotal)
	years := sets.New[int]()
	for _, r := range rows {
		t, ok := byYear[r.Year]
		if !ok {
			t = &YearTotal{Year: r.Year}
			byYear[r.Year] = t
			years.Insert(r.Year)
		}
		t.Demand += r.Demand
		t.Supply += r.Supply
		t.Gap += r.Gap
	}
	out := make([]YearTotal, 0, len(byYear))
	for _, y := range sets.List(years) {
		out = append(out, *byYear[y])
	}
	return out
}
