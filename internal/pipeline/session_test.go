package pipeline

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/metrics"
	"github.com/people-analytics/workforce-planner/internal/utils/unitmap"
)

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		session *Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = NewSession(config.Default(), fixtureInputs(), WithRecorder(metrics.NewRecorder()))
	})

	Context("before any read", func() {
		It("should report every stage as stale", func() {
			for _, table := range Stages {
				Expect(session.IsStale(table)).To(BeTrue(), string(table))
				Expect(session.Version(table)).To(BeZero())
				Expect(session.LastComputed(table).IsZero()).To(BeTrue())
			}
		})

		It("should version every input table", func() {
			for _, table := range InputTables {
				Expect(session.Version(table)).NotTo(BeZero(), string(table))
			}
		})

		It("should reject reading an input table as a snapshot", func() {
			_, err := session.Snapshot(ctx, TableDrivers)
			Expect(err).To(HaveOccurred())
		})

		It("should return the context error when cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := session.Snapshot(cancelled, TableStrategy)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("when reading a stage", func() {
		It("should compute it with its upstream stages", func() {
			_, _, err := session.Forecast(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(session.IsStale(TableCorrelation)).To(BeFalse())
			Expect(session.IsStale(TableElasticity)).To(BeFalse())
			Expect(session.IsStale(TableForecast)).To(BeFalse())
			Expect(session.IsStale(TableScenario)).To(BeTrue())
		})

		It("should return the published snapshot until something changes", func() {
			first, err := session.Snapshot(ctx, TableGap)
			Expect(err).NotTo(HaveOccurred())
			second, err := session.Snapshot(ctx, TableGap)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeIdenticalTo(first))
		})

		It("should record the versions it was computed from", func() {
			snap, err := session.Snapshot(ctx, TableElasticity)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.DependsOn).To(HaveKeyWithValue(TableCorrelation, session.Version(TableCorrelation)))
			Expect(snap.DependsOn).To(HaveKeyWithValue(TableModelOverrides, session.Version(TableModelOverrides)))
			Expect(snap.Version).To(BeNumerically(">", session.Version(TableCorrelation)))
		})

		It("should map drivers to units by name and report unmapped drivers", func() {
			corr, report, err := session.Correlation(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(corr.IndependentDrivers()).To(Equal([]string{"Orders"}))
			Expect(report.Blocked(string(TableCorrelation))).To(ConsistOf("Web traffic"))
			Expect(report.ByKind(diagnostics.KindInsufficientData)).To(HaveLen(1))
		})

		It("should follow the configured match direction", func() {
			cfg := config.Default()
			cfg.UnitMap.Direction = unitmap.UnitInDriver
			reversed := NewSession(cfg, fixtureInputs())
			corr, report, err := reversed.Correlation(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(corr.Independent).To(BeEmpty())
			Expect(report.Blocked(string(TableCorrelation))).To(ConsistOf("Orders", "Web traffic"))

			restored := NewSession(cfg, fixtureInputs(), WithMatchConfig(unitmap.DefaultMatchConfig()))
			corr, _, err = restored.Correlation(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(corr.IndependentDrivers()).To(Equal([]string{"Orders"}))
		})
	})

	Context("when an input table changes", func() {
		BeforeEach(func() {
			_, _, err := session.Strategy(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should only invalidate downstream stages", func() {
			forecastVersion := session.Version(TableForecast)
			scenarioVersion := session.Version(TableScenario)

			session.SetScenario(v1alpha1.ScenarioAssumptions{Preset: "Optimistic"})

			Expect(session.IsStale(TableForecast)).To(BeFalse())
			Expect(session.IsStale(TableScenario)).To(BeTrue())
			Expect(session.IsStale(TableGap)).To(BeTrue())
			Expect(session.IsStale(TableStrategy)).To(BeTrue())

			sc, _, err := session.Scenario(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Name).To(Equal("Optimistic"))
			Expect(session.Version(TableForecast)).To(Equal(forecastVersion))
			Expect(session.Version(TableScenario)).To(BeNumerically(">", scenarioVersion))
		})

		It("should apply a model override without refitting the correlation", func() {
			correlationVersion := session.Version(TableCorrelation)
			session.SetModelOverride("Orders", ptr.To(v1alpha1.ModelLinear))

			el, _, err := session.Elasticity(ctx)
			Expect(err).NotTo(HaveOccurred())
			rec, ok := el.Lookup("Orders")
			Expect(ok).To(BeTrue())
			Expect(rec.Choice.Resolve()).To(Equal(v1alpha1.ModelLinear))
			Expect(rec.Choice.Override).NotTo(BeNil())
			Expect(session.Version(TableCorrelation)).To(Equal(correlationVersion))

			session.SetModelOverride("Orders", nil)
			el, _, err = session.Elasticity(ctx)
			Expect(err).NotTo(HaveOccurred())
			rec, _ = el.Lookup("Orders")
			Expect(rec.Choice.Override).To(BeNil())
		})

		It("should apply a strategy override to the final strategy only", func() {
			session.SetStrategyOverride("Analyst", ptr.To(v1alpha1.StrategyBorrow))

			result, _, err := session.Strategy(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range result.Assignments {
				if a.Role == "Analyst" {
					Expect(a.FinalStrategy()).To(Equal(v1alpha1.StrategyBorrow))
				}
			}
		})

		It("should recompute an invalidated stage and its dependents", func() {
			gapVersion := session.Version(TableGap)
			session.Invalidate(TableGap)
			Expect(session.IsStale(TableGap)).To(BeTrue())
			Expect(session.IsStale(TableStrategy)).To(BeTrue())

			_, _, err := session.Strategy(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Version(TableGap)).To(BeNumerically(">", gapVersion))
		})

		It("should keep inputs handed to the session unchanged", func() {
			in := fixtureInputs()
			s := NewSession(nil, in)
			s.SetStrategicImpact("Analyst", 5)
			Expect(in.StrategicImpact).To(BeEmpty())
			Expect(s.Inputs().StrategicImpact).To(HaveKeyWithValue("Analyst", 5.0))
		})
	})

	Context("with missing inputs", func() {
		It("should refuse every stage and list the refusals in the plan", func() {
			s := NewSession(config.Default(), &v1alpha1.PlanInputs{})
			plan, err := s.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Correlation).To(BeNil())
			Expect(plan.Strategy).To(BeNil())
			Expect(plan.Actions).To(BeEmpty())

			refused := plan.Diagnostics.ByKind(diagnostics.KindInputIncomplete)
			Expect(refused).To(HaveLen(len(Stages)))
		})
	})

	Context("with a full run", func() {
		It("should publish every table and draft initiatives", func() {
			plan, err := session.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.SessionID).To(Equal(session.ID().String()))
			Expect(plan.Correlation).NotTo(BeNil())
			Expect(plan.Elasticity).NotTo(BeNil())
			Expect(plan.Forecast).NotTo(BeNil())
			Expect(plan.Scenario).NotTo(BeNil())
			Expect(plan.Gaps).NotTo(BeNil())
			Expect(plan.Strategy).NotTo(BeNil())
			Expect(plan.Strategy.Priorities).To(HaveLen(2))
			Expect(plan.GapTotals).To(HaveLen(len(plan.Forecast.Years)))
			Expect(plan.GapTotals[0].Year).To(Equal(plan.Forecast.Years[0]))
			Expect(plan.Diagnostics.ByKind(diagnostics.KindInputIncomplete)).To(BeEmpty())

			actions, err := session.ActionPlan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(actions).To(Equal(plan.Actions))
		})
	})
})
