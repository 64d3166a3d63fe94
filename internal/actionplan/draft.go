// Package actionplan seeds draft initiatives from the prioritized strategy table.
// It is the terminal consumer of the pipeline and holds no planning logic beyond seeding.
package actionplan

import (
	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

// DefaultFeasibility is the feasibility assigned to every seeded initiative.
const DefaultFeasibility = "Medium"

// Initiative is one draft action plan entry.
type Initiative struct {
	Role        string            `json:"role"`
	Strategy    v1alpha1.Strategy `json:"strategy"`
	Action      string            `json:"action"`
	TotalGap    float64           `json:"totalGap"`
	Priority    float64           `json:"priority"`
	StartYear   int               `json:"startYear"`
	EndYear     int               `json:"endYear"`
	Feasibility string            `json:"feasibility"`
	Owner       string            `json:"owner,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// Draft seeds one initiative per prioritized role, in priority order.
// The strategy of an initiative is the most frequent final strategy across the
// role's assignments; ties go to the earlier strategy in Buy, Build, Borrow, Boost order.
// Action is prefilled only when that strategy is also the role's final strategy.
func Draft(result *v1alpha1.StrategyResult, years []int) []Initiative {
	if result == nil || len(result.Priorities) == 0 {
		return nil
	}
	var start, end int
	if len(years) > 0 {
		start, end = years[0], years[len(years)-1]
	}

	counts := make(map[string]map[v1alpha1.Strategy]int)
	for _, a := range result.Assignments {
		if counts[a.Role] == nil {
			counts[a.Role] = make(map[v1alpha1.Strategy]int)
		}
		counts[a.Role][a.FinalStrategy()]++
	}

	out := make([]Initiative, 0, len(result.Priorities))
	for _, p := range result.Priorities {
		s := modal(counts[p.Role], p.FinalStrategy)
		action := p.RecommendedAction
		if s != p.FinalStrategy {
			action = ""
		}
		out = append(out, Initiative{
			Role:        p.Role,
			Strategy:    s,
			Action:      action,
			TotalGap:    v1alpha1.Round(p.TotalGap, v1alpha1.HeadcountPlaces),
			Priority:    p.PriorityScore,
			StartYear:   start,
			EndYear:     end,
			Feasibility: DefaultFeasibility,
		})
	}
	return out
}

func modal(counts map[v1alpha1.Strategy]int, fallback v1alpha1.Strategy) v1alpha1.Strategy {
	best, bestN := fallback, 0
	for _, s := range v1alpha1.Strategies {
		if n := counts[s]; n > bestN {
			best, bestN = s, n
		}
	}
	return best
}
