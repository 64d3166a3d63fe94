package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/utils/unitmap"
)

// Default values of the planner configuration.
const (
	DefaultAlpha               = 0.05
	DefaultMinAlignedPoints    = 2
	DefaultThreshold           = 0.7
	DefaultForecastHorizon     = 4
	DefaultWeightTolerance     = 1e-9
	DefaultAttrition           = 0.05
	DefaultRetirement          = 0.02
	DefaultSharedPool          = 50.0
	DefaultParallelism         = 1
	DefaultHighImpact          = 4.0
	DefaultMediumImpact        = 2.0
	DefaultGapPercentThreshold = 50.0
	DefaultUrgentTotalGap      = 50.0
	DefaultGapWeight           = 0.5
	DefaultImpactWeight        = 10.0
	DefaultImpact              = 3.0
	MinImpact                  = 1.0
	MaxImpact                  = 5.0
	DefaultCollectorTimeout    = 10 * time.Second

	// BaselinePreset is the scenario preset used when none is named.
	BaselinePreset = "Baseline"
)

// AllowedThresholds lists the accepted independence thresholds.
var AllowedThresholds = []float64{0.5, 0.7}

// PlannerConfig holds every tunable of the planning pipeline.
type PlannerConfig struct {
	Correlation CorrelationConfig `mapstructure:"correlation" yaml:"correlation"`
	Elasticity  ElasticityConfig  `mapstructure:"elasticity" yaml:"elasticity"`
	Forecast    ForecastConfig    `mapstructure:"forecast" yaml:"forecast"`
	Scenario    ScenarioConfig    `mapstructure:"scenario" yaml:"scenario"`
	Strategy    StrategyConfig    `mapstructure:"strategy" yaml:"strategy"`
	UnitMap     UnitMapConfig     `mapstructure:"unitMap" yaml:"unitMap"`
	Collector   CollectorConfig   `mapstructure:"collector" yaml:"collector"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`

	// RoleAssumptions holds per-role overrides as YAML documents keyed by entry name.
	// The "default" entry applies to every role.
	RoleAssumptions map[string]string `mapstructure:"roleAssumptions" yaml:"roleAssumptions,omitempty"`
}

// CorrelationConfig tunes the correlation and independence filter.
type CorrelationConfig struct {
	// Alpha is the significance level of the Pearson test before falling back to Spearman.
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	// MinAlignedPoints is the minimum number of aligned years per driver.
	MinAlignedPoints int `mapstructure:"minAlignedPoints" yaml:"minAlignedPoints"`
	// Threshold is the absolute intercorrelation at or above which drivers are dependent.
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	// RequireSignificance drops drivers whose correlation p-value is not below Alpha.
	RequireSignificance bool `mapstructure:"requireSignificance" yaml:"requireSignificance"`
}

// ElasticityConfig tunes the elasticity estimator.
type ElasticityConfig struct {
	// Alpha is the significance level a log-log fit must beat to be recommended.
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
}

// ForecastConfig tunes the demand forecaster.
type ForecastConfig struct {
	Method          v1alpha1.ForecastMethod `mapstructure:"method" yaml:"method"`
	Horizon         int                     `mapstructure:"horizon" yaml:"horizon"`
	WeightTolerance float64                 `mapstructure:"weightTolerance" yaml:"weightTolerance"`
}

// ScenarioConfig holds supply projection defaults.
type ScenarioConfig struct {
	// Presets maps a preset name to its yearly growth rate.
	Presets    map[string]float64 `mapstructure:"presets" yaml:"presets"`
	Attrition  float64            `mapstructure:"attrition" yaml:"attrition"`
	Retirement float64            `mapstructure:"retirement" yaml:"retirement"`
	SharedPool float64            `mapstructure:"sharedPool" yaml:"sharedPool"`
	// Parallelism bounds the number of roles projected concurrently.
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
}

// StrategyConfig holds the 4Bs decision table and priority weights.
type StrategyConfig struct {
	HighImpact          float64 `mapstructure:"highImpact" yaml:"highImpact"`
	MediumImpact        float64 `mapstructure:"mediumImpact" yaml:"mediumImpact"`
	GapPercentThreshold float64 `mapstructure:"gapPercentThreshold" yaml:"gapPercentThreshold"`
	UrgentTotalGap      float64 `mapstructure:"urgentTotalGap" yaml:"urgentTotalGap"`
	GapWeight           float64 `mapstructure:"gapWeight" yaml:"gapWeight"`
	ImpactWeight        float64 `mapstructure:"impactWeight" yaml:"impactWeight"`
	DefaultImpact       float64 `mapstructure:"defaultImpact" yaml:"defaultImpact"`
}

// UnitMapConfig controls how drivers without explicit function units are mapped by name.
type UnitMapConfig struct {
	// Direction selects which name must contain the other (DriverInUnit, UnitInDriver or Either).
	Direction     unitmap.Direction `mapstructure:"direction" yaml:"direction"`
	CaseSensitive bool              `mapstructure:"caseSensitive" yaml:"caseSensitive"`
	// Aliases maps a unit name to extra names that also identify it.
	Aliases map[string][]string `mapstructure:"aliases" yaml:"aliases,omitempty"`
}

// MatchConfig returns the name matching options for unit discovery.
func (c UnitMapConfig) MatchConfig() unitmap.MatchConfig {
	return unitmap.MatchConfig{
		CaseSensitive: c.CaseSensitive,
		Direction:     c.Direction,
		Aliases:       c.Aliases,
	}
}

// Validate checks the unit mapping settings.
func (c *UnitMapConfig) Validate() error {
	if !c.Direction.IsValid() {
		return fmt.Errorf("direction must be one of %v, got %q", unitmap.Directions, c.Direction)
	}
	return nil
}

// CollectorConfig bounds input collection.
type CollectorConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggingConfig selects the logger flavour.
type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
	Verbosity   int  `mapstructure:"verbosity" yaml:"verbosity"`
}

// Default returns the planner configuration with every default applied.
func Default() *PlannerConfig {
	return &PlannerConfig{
		Correlation: CorrelationConfig{
			Alpha:            DefaultAlpha,
			MinAlignedPoints: DefaultMinAlignedPoints,
			Threshold:        DefaultThreshold,
		},
		Elasticity: ElasticityConfig{Alpha: DefaultAlpha},
		Forecast: ForecastConfig{
			Method:          v1alpha1.ForecastLinearTrend,
			Horizon:         DefaultForecastHorizon,
			WeightTolerance: DefaultWeightTolerance,
		},
		Scenario: ScenarioConfig{
			Presets:     DefaultPresets(),
			Attrition:   DefaultAttrition,
			Retirement:  DefaultRetirement,
			SharedPool:  DefaultSharedPool,
			Parallelism: DefaultParallelism,
		},
		Strategy: StrategyConfig{
			HighImpact:          DefaultHighImpact,
			MediumImpact:        DefaultMediumImpact,
			GapPercentThreshold: DefaultGapPercentThreshold,
			UrgentTotalGap:      DefaultUrgentTotalGap,
			GapWeight:           DefaultGapWeight,
			ImpactWeight:        DefaultImpactWeight,
			DefaultImpact:       DefaultImpact,
		},
		UnitMap:   UnitMapConfig{Direction: unitmap.DriverInUnit},
		Collector: CollectorConfig{Timeout: DefaultCollectorTimeout},
	}
}

// DefaultPresets returns the built-in scenario growth presets.
func DefaultPresets() map[string]float64 {
	return map[string]float64{
		BaselinePreset: 0,
		"Optimistic":   0.05,
		"Pessimistic":  -0.03,
	}
}

// Validate checks every section.
func (c *PlannerConfig) Validate() error {
	if err := c.Correlation.Validate(); err != nil {
		return fmt.Errorf("correlation: %w", err)
	}
	if err := c.Elasticity.Validate(); err != nil {
		return fmt.Errorf("elasticity: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := c.UnitMap.Validate(); err != nil {
		return fmt.Errorf("unitMap: %w", err)
	}
	if c.Collector.Timeout < 0 {
		return fmt.Errorf("collector: timeout must be >= 0, got %v", c.Collector.Timeout)
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging: verbosity must be >= 0, got %d", c.Logging.Verbosity)
	}
	return nil
}

// Validate checks the correlation settings.
func (c *CorrelationConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %.3f", c.Alpha)
	}
	if c.MinAlignedPoints < 2 {
		return fmt.Errorf("minAlignedPoints must be >= 2, got %d", c.MinAlignedPoints)
	}
	for _, t := range AllowedThresholds {
		if c.Threshold == t {
			return nil
		}
	}
	return fmt.Errorf("threshold must be one of %v, got %.2f", AllowedThresholds, c.Threshold)
}

// Validate checks the elasticity settings.
func (c *ElasticityConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %.3f", c.Alpha)
	}
	return nil
}

// Validate checks the forecast settings.
func (c *ForecastConfig) Validate() error {
	switch c.Method {
	case v1alpha1.ForecastLinearTrend, v1alpha1.ForecastCAGR:
	default:
		return fmt.Errorf("unsupported forecast method %q", c.Method)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be >= 1, got %d", c.Horizon)
	}
	if c.WeightTolerance < 0 {
		return fmt.Errorf("weightTolerance must be >= 0, got %g", c.WeightTolerance)
	}
	return nil
}

// Validate checks the scenario defaults.
func (c *ScenarioConfig) Validate() error {
	if err := ValidateRates(c.Attrition, c.Retirement); err != nil {
		return err
	}
	if c.SharedPool < 0 {
		return fmt.Errorf("sharedPool must be >= 0, got %.1f", c.SharedPool)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be >= 1, got %d", c.Parallelism)
	}
	for name, g := range c.Presets {
		if g <= -1 {
			return fmt.Errorf("preset %q growth must be > -1, got %.3f", name, g)
		}
	}
	return nil
}

// Preset returns the growth rate of the named preset, matched case-insensitively.
func (c *ScenarioConfig) Preset(name string) (float64, bool) {
	if name == "" {
		name = BaselinePreset
	}
	for k, v := range c.Presets {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	if strings.EqualFold(name, BaselinePreset) {
		return 0, true
	}
	return 0, false
}

// Validate checks the strategy table.
func (c *StrategyConfig) Validate() error {
	if c.MediumImpact > c.HighImpact {
		return fmt.Errorf("mediumImpact (%.1f) must be <= highImpact (%.1f)", c.MediumImpact, c.HighImpact)
	}
	if c.GapPercentThreshold < 0 {
		return fmt.Errorf("gapPercentThreshold must be >= 0, got %.1f", c.GapPercentThreshold)
	}
	if c.UrgentTotalGap < 0 {
		return fmt.Errorf("urgentTotalGap must be >= 0, got %.1f", c.UrgentTotalGap)
	}
	if err := ValidateImpact(c.DefaultImpact); err != nil {
		return fmt.Errorf("defaultImpact: %w", err)
	}
	return nil
}

// ValidateRates checks a pair of yearly attrition and retirement fractions.
func ValidateRates(attrition, retirement float64) error {
	if attrition < 0 || attrition > 1 {
		return fmt.Errorf("attrition must be between 0 and 1, got %.3f", attrition)
	}
	if retirement < 0 || retirement > 1 {
		return fmt.Errorf("retirement must be between 0 and 1, got %.3f", retirement)
	}
	if attrition+retirement > 1 {
		return fmt.Errorf("attrition + retirement must be <= 1, got %.3f", attrition+retirement)
	}
	return nil
}

// ValidateImpact checks a strategic impact score.
func ValidateImpact(impact float64) error {
	if impact < MinImpact || impact > MaxImpact {
		return fmt.Errorf("impact must be between %.0f and %.0f, got %.1f", MinImpact, MaxImpact, impact)
	}
	return nil
}
