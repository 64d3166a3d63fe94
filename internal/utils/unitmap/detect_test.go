package unitmap

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MatchesUnit", func() {
	var defaultConfig MatchConfig

	BeforeEach(func() {
		defaultConfig = DefaultMatchConfig()
	})

	Context("with empty names", func() {
		It("should not match an empty driver", func() {
			Expect(MatchesUnit("", "Sales", defaultConfig)).To(BeFalse())
			Expect(MatchesUnit("  ", "Sales", defaultConfig)).To(BeFalse())
		})

		It("should not match an empty unit", func() {
			Expect(MatchesUnit("Sales", "", defaultConfig)).To(BeFalse())
		})
	})

	Context("with default matching", func() {
		It("should match the driver contained in the unit name", func() {
			Expect(MatchesUnit("Sales", "Sales Operations", defaultConfig)).To(BeTrue())
		})

		It("should ignore case", func() {
			Expect(MatchesUnit("E-COMMERCE", "e-commerce platform", defaultConfig)).To(BeTrue())
		})

		It("should not match a unit contained in the driver name", func() {
			Expect(MatchesUnit("Supply Chain throughput", "Supply Chain", defaultConfig)).To(BeFalse())
		})

		It("should not match unrelated names", func() {
			Expect(MatchesUnit("Customer tickets", "Finance", defaultConfig)).To(BeFalse())
		})

		It("should treat an empty direction as the default", func() {
			Expect(MatchesUnit("Sales", "Sales Operations", MatchConfig{})).To(BeTrue())
		})
	})

	Context("with custom config", func() {
		It("should respect case sensitivity", func() {
			config := MatchConfig{CaseSensitive: true}
			Expect(MatchesUnit("finance", "Finance", config)).To(BeFalse())
		})

		It("should match the unit contained in the driver name", func() {
			config := MatchConfig{Direction: UnitInDriver}
			Expect(MatchesUnit("Supply Chain throughput", "Supply Chain", config)).To(BeTrue())
			Expect(MatchesUnit("Sales", "Sales Operations", config)).To(BeFalse())
		})

		It("should match in either direction", func() {
			config := MatchConfig{Direction: EitherDirection}
			Expect(MatchesUnit("Sales", "Sales Operations", config)).To(BeTrue())
			Expect(MatchesUnit("Supply Chain throughput", "Supply Chain", config)).To(BeTrue())
		})

		It("should match aliases", func() {
			config := MatchConfig{Aliases: map[string][]string{"HR": {"people team", " "}}}
			Expect(MatchesUnit("People", "HR", config)).To(BeTrue())
			Expect(MatchesUnit("Revenue", "HR", config)).To(BeFalse())
		})

		It("should look up aliases ignoring case", func() {
			config := MatchConfig{Aliases: map[string][]string{"hr": {"people team"}}}
			Expect(MatchesUnit("People", "HR", config)).To(BeTrue())
		})
	})
})

var _ = Describe("Direction", func() {
	It("should accept the supported directions", func() {
		for _, d := range append(Directions, "") {
			Expect(d.IsValid()).To(BeTrue(), "direction %q", d)
		}
	})

	It("should reject unknown directions", func() {
		Expect(Direction("Sideways").IsValid()).To(BeFalse())
	})
})
