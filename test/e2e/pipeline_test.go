package e2e

import (
	"context"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/export"
	"github.com/people-analytics/workforce-planner/internal/metrics"
	"github.com/people-analytics/workforce-planner/internal/pipeline"
	"github.com/people-analytics/workforce-planner/internal/strategy"
)

const tolerance = 1e-9

var _ = Describe("Planning pipeline", Ordered, func() {
	var (
		ctx     context.Context
		manager *pipeline.Manager
		session *pipeline.Session
		plan    *pipeline.Plan
	)

	BeforeAll(func() {
		ctx = context.Background()
		manager = pipeline.NewManager(plannerConfig, metrics.NewRecorder())
		session = manager.Open(planInputs)
		DeferCleanup(func() { manager.Close(session.ID()) })

		By("running every stage")
		var err error
		plan, err = session.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Diagnostics.ByKind(diagnostics.KindInputIncomplete)).To(BeEmpty(),
			"No stage should refuse to run on the plan")
	})

	It("should keep only independent, headcount-correlated drivers", func() {
		corr := plan.Correlation
		names := corr.IndependentDrivers()
		for i, a := range names {
			for _, b := range names[i+1:] {
				if r, ok := corr.Matrix.At(a, b); ok {
					Expect(math.Abs(r)).To(BeNumerically("<", corr.Threshold),
						"%s and %s should not be intercorrelated", a, b)
				}
			}
		}
		for _, v := range corr.Independent {
			Expect(len(v.Years)).To(BeNumerically(">=", plannerConfig.Correlation.MinAlignedPoints))
			Expect(v.DriverValues).To(HaveLen(len(v.Years)))
			Expect(v.Headcount).To(HaveLen(len(v.Years)))
		}

		if !customPlan {
			Expect(names).To(Equal([]string{"E-Commerce", "Supply Chain", "Revenue"}))
			Expect(plan.Diagnostics.Blocked("correlation")).To(ConsistOf("Weather index"))
		}
	})

	It("should select the elasticity model by fit quality and significance", func() {
		Expect(plan.Elasticity.Records).To(HaveLen(len(plan.Correlation.Independent)))
		for _, rec := range plan.Elasticity.Records {
			preferLogLog := rec.LogLog != nil &&
				rec.LogLog.RSquared > rec.Linear.RSquared &&
				rec.LogLog.PValue < plannerConfig.Elasticity.Alpha
			if preferLogLog {
				Expect(rec.Choice.Auto).To(Equal(v1alpha1.ModelLogLog), rec.Driver)
			} else {
				Expect(rec.Choice.Auto).To(Equal(v1alpha1.ModelLinear), rec.Driver)
			}
		}
	})

	It("should forecast the horizon after the last historical year", func() {
		years := plan.Forecast.Years
		Expect(years).To(HaveLen(plannerConfig.Forecast.Horizon))
		for i := 1; i < len(years); i++ {
			Expect(years[i]).To(Equal(years[i-1] + 1))
		}
		if !customPlan {
			Expect(years[0]).To(Equal(2024))
			Expect(plan.Forecast.DemandByRole()).To(HaveLen(3))
		}
	})

	It("should project supply from opening demand with attrition, retirement and inflow", func() {
		sc := plan.Scenario
		byRole := map[string][]v1alpha1.SupplyRow{}
		for _, row := range sc.Rows {
			byRole[row.Role] = append(byRole[row.Role], row)
		}
		loss := plannerConfig.Scenario.Attrition + plannerConfig.Scenario.Retirement
		for role, rows := range byRole {
			Expect(rows[0].Supply).To(BeNumerically("~", rows[0].ScenarioDemand, tolerance), role)
			for i := 1; i < len(rows); i++ {
				Expect(rows[i].Year).To(Equal(rows[i-1].Year + 1))
				want := rows[i-1].Supply*(1-loss) + rows[i].Inflow
				Expect(rows[i].Supply).To(BeNumerically("~", want, tolerance), role)
				Expect(rows[i].ScenarioDemand).To(BeNumerically("~",
					rows[i].BaseDemand*math.Pow(1+sc.GrowthRate, float64(i)), tolerance), role)
			}
		}
		if !customPlan {
			Expect(sc.Name).To(Equal("Optimistic"))
			Expect(sc.GrowthRate).To(Equal(0.05))
			Expect(byRole["Data Scientist"][1].Inflow).To(BeNumerically("~", 50.0/3, tolerance))
		}
	})

	It("should resolve every gap as demand minus supply", func() {
		Expect(plan.Gaps.Rows).To(HaveLen(len(plan.Scenario.Rows)))
		for _, row := range plan.Gaps.Rows {
			Expect(row.Gap).To(BeNumerically("~", row.Demand-row.Supply, tolerance))
			switch {
			case row.Gap > 0:
				Expect(row.Status).To(Equal(v1alpha1.StatusShortfall))
			case row.Gap < 0:
				Expect(row.Status).To(Equal(v1alpha1.StatusSurplus))
			default:
				Expect(row.Status).To(Equal(v1alpha1.StatusBalanced))
			}
			if row.Demand != 0 {
				Expect(row.GapPercent).To(BeNumerically("~", row.Gap/row.Demand*100, tolerance))
			}
		}
	})

	It("should total demand, supply and gap across roles per year", func() {
		Expect(plan.GapTotals).To(HaveLen(len(plan.Forecast.Years)))
		for i, total := range plan.GapTotals {
			Expect(total.Year).To(Equal(plan.Forecast.Years[i]))
			var demand, supply, gapSum float64
			for _, row := range plan.Gaps.Rows {
				if row.Year == total.Year {
					demand += row.Demand
					supply += row.Supply
					gapSum += row.Gap
				}
			}
			Expect(total.Demand).To(BeNumerically("~", demand, tolerance))
			Expect(total.Supply).To(BeNumerically("~", supply, tolerance))
			Expect(total.Gap).To(BeNumerically("~", gapSum, tolerance))
		}
	})

	It("should prioritize roles by descending priority score", func() {
		rows := plan.Strategy.Priorities
		Expect(rows).NotTo(BeEmpty())
		for i := 1; i < len(rows); i++ {
			Expect(rows[i-1].PriorityScore).To(BeNumerically(">=", rows[i].PriorityScore))
		}
		for _, row := range rows {
			Expect(row.PriorityScore).To(Equal(strategy.Priority(row.TotalGap, row.MeanImpact, plannerConfig.Strategy)))
			Expect(row.FinalStrategy.IsValid()).To(BeTrue())
		}
	})

	It("should seed one initiative per prioritized role", func() {
		Expect(plan.Actions).To(HaveLen(len(plan.Strategy.Priorities)))
		years := plan.Forecast.Years
		for i, in := range plan.Actions {
			Expect(in.Role).To(Equal(plan.Strategy.Priorities[i].Role))
			Expect(in.StartYear).To(Equal(years[0]))
			Expect(in.EndYear).To(Equal(years[len(years)-1]))
		}
	})

	It("should recompute only the strategy stage when an impact score changes", func() {
		scenarioVersion := session.Version(pipeline.TableScenario)
		gapVersion := session.Version(pipeline.TableGap)
		role := plan.Strategy.Priorities[len(plan.Strategy.Priorities)-1].Role

		session.SetStrategicImpact(role, 5)
		Expect(session.IsStale(pipeline.TableStrategy)).To(BeTrue())
		Expect(session.IsStale(pipeline.TableGap)).To(BeFalse())

		result, _, err := session.Strategy(ctx)
		Expect(err).NotTo(HaveOccurred())
		for _, a := range result.Assignments {
			if a.Role == role {
				Expect(a.Impact).To(Equal(5.0))
			}
		}
		Expect(session.Version(pipeline.TableScenario)).To(Equal(scenarioVersion))
		Expect(session.Version(pipeline.TableGap)).To(Equal(gapVersion))
	})

	It("should export the plan as a workbook and a chart", func() {
		dir := GinkgoT().TempDir()
		Expect(export.SaveWorkbook(plan, filepath.Join(dir, "plan.xlsx"))).To(Succeed())
		Expect(export.SaveChart(plan, filepath.Join(dir, "plan.png"))).To(Succeed())
		Expect(filepath.Join(dir, "plan.xlsx")).To(BeAnExistingFile())
		Expect(filepath.Join(dir, "plan.png")).To(BeAnExistingFile())
	})
})
