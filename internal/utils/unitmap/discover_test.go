package unitmap

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
)

func makeDriver(name string, units ...string) v1alpha1.Driver {
	return v1alpha1.Driver{Name: name, FunctionUnits: units}
}

func makeUnits(names ...string) []v1alpha1.FunctionUnit {
	out := make([]v1alpha1.FunctionUnit, len(names))
	for i, n := range names {
		out[i] = v1alpha1.FunctionUnit{Name: n}
	}
	return out
}

var _ = Describe("Discover", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with missing tables", func() {
		It("should fail without drivers", func() {
			_, err := Discover(ctx, nil, makeUnits("Ops"), DefaultMatchConfig())
			Expect(err).To(MatchError(errNoDrivers))
		})

		It("should fail without units", func() {
			_, err := Discover(ctx, []v1alpha1.Driver{makeDriver("Ops volume")}, nil, DefaultMatchConfig())
			Expect(err).To(MatchError(errNoUnits))
		})
	})

	Context("with mixed drivers", func() {
		var result DiscoveryResult

		BeforeEach(func() {
			drivers := []v1alpha1.Driver{
				makeDriver("Revenue", "Finance"),
				makeDriver("Logistics"),
				makeDriver("Weather"),
			}
			var err error
			result, err = Discover(ctx, drivers, makeUnits("Logistics Hub", "Finance", "Inbound Logistics"), DefaultMatchConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep explicit mappings", func() {
			Expect(result.Mappings[0]).To(Equal(Mapping{Driver: "Revenue", Units: []string{"Finance"}, Source: SourceExplicit}))
		})

		It("should discover every matching unit in table order", func() {
			Expect(result.Mappings[1].Source).To(Equal(SourceDiscovered))
			Expect(result.Mappings[1].Units).To(Equal([]string{"Logistics Hub", "Inbound Logistics"}))
		})

		It("should report unmapped drivers", func() {
			Expect(result.Unmapped()).To(ConsistOf("Weather"))
		})
	})

	Context("with a driver named after part of a unit", func() {
		It("should map the driver to the longer unit name", func() {
			result, err := Discover(ctx, []v1alpha1.Driver{makeDriver("Sales")}, makeUnits("Sales Operations", "Finance"), DefaultMatchConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Mappings).To(Equal([]Mapping{{Driver: "Sales", Units: []string{"Sales Operations"}, Source: SourceDiscovered}}))
		})

		It("should leave it unmapped when only units inside the driver name match", func() {
			config := MatchConfig{Direction: UnitInDriver}
			result, err := Discover(ctx, []v1alpha1.Driver{makeDriver("Sales")}, makeUnits("Sales Operations"), config)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Unmapped()).To(ConsistOf("Sales"))
		})
	})
})

var _ = Describe("Apply", func() {
	It("should fill discovered units without modifying the input", func() {
		in := &v1alpha1.PlanInputs{
			Drivers:       []v1alpha1.Driver{makeDriver("Finance"), makeDriver("Orders", "Ops")},
			FunctionUnits: makeUnits("Finance Shared Services", "Ops"),
		}
		out, result, err := Apply(context.Background(), in, DefaultMatchConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Drivers[0].FunctionUnits).To(Equal([]string{"Finance Shared Services"}))
		Expect(out.Drivers[1].FunctionUnits).To(Equal([]string{"Ops"}))
		Expect(in.Drivers[0].FunctionUnits).To(BeEmpty())
		Expect(result.Unmapped()).To(BeEmpty())
	})
})
