package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/utils/unitmap"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.7, cfg.Correlation.Threshold)
	assert.Equal(t, 4, cfg.Forecast.Horizon)
	assert.Equal(t, 50.0, cfg.Scenario.SharedPool)
}

func TestPlannerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlannerConfig)
		wantErr bool
	}{
		{
			name:   "Test case 1: threshold 0.5 accepted",
			mutate: func(c *PlannerConfig) { c.Correlation.Threshold = 0.5 },
		},
		{
			name:    "Test case 2: threshold 0.6 rejected",
			mutate:  func(c *PlannerConfig) { c.Correlation.Threshold = 0.6 },
			wantErr: true,
		},
		{
			name:    "Test case 3: rates summing above one",
			mutate:  func(c *PlannerConfig) { c.Scenario.Attrition, c.Scenario.Retirement = 0.7, 0.4 },
			wantErr: true,
		},
		{
			name:    "Test case 4: unknown forecast method",
			mutate:  func(c *PlannerConfig) { c.Forecast.Method = "Holt" },
			wantErr: true,
		},
		{
			name:    "Test case 5: default impact out of range",
			mutate:  func(c *PlannerConfig) { c.Strategy.DefaultImpact = 6 },
			wantErr: true,
		},
		{
			name:    "Test case 6: zero parallelism",
			mutate:  func(c *PlannerConfig) { c.Scenario.Parallelism = 0 },
			wantErr: true,
		},
		{
			name:   "Test case 7: CAGR accepted",
			mutate: func(c *PlannerConfig) { c.Forecast.Method = v1alpha1.ForecastCAGR },
		},
		{
			name:    "Test case 8: unknown unit match direction",
			mutate:  func(c *PlannerConfig) { c.UnitMap.Direction = "Sideways" },
			wantErr: true,
		},
		{
			name:   "Test case 9: empty unit match direction accepted",
			mutate: func(c *PlannerConfig) { c.UnitMap.Direction = "" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreset(t *testing.T) {
	c := Default().Scenario
	g, ok := c.Preset("optimistic")
	assert.True(t, ok)
	assert.Equal(t, 0.05, g)

	g, ok = c.Preset("")
	assert.True(t, ok)
	assert.Equal(t, 0.0, g)

	_, ok = c.Preset("Apocalyptic")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	content := `
correlation:
  threshold: 0.5
scenario:
  attrition: 0.08
  presets:
    Stretch: 0.1
collector:
  timeout: 3s
unitMap:
  aliases:
    HR: [people team]
roleAssumptions:
  default: |
    retirement: 0.03
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("WFP_FORECAST_HORIZON", "6")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--parallelism=3", "--unit-match=Either"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Correlation.Threshold)
	assert.Equal(t, 0.08, cfg.Scenario.Attrition)
	assert.Equal(t, DefaultRetirement, cfg.Scenario.Retirement)
	assert.Equal(t, 6, cfg.Forecast.Horizon)
	assert.Equal(t, 3, cfg.Scenario.Parallelism)
	assert.Equal(t, 3*time.Second, cfg.Collector.Timeout)
	assert.Equal(t, v1alpha1.ForecastLinearTrend, cfg.Forecast.Method)

	g, ok := cfg.Scenario.Preset("Stretch")
	assert.True(t, ok)
	assert.Equal(t, 0.1, g)
	g, ok = cfg.Scenario.Preset("Pessimistic")
	assert.True(t, ok)
	assert.Equal(t, -0.03, g)

	roles := ParseRoleAssumptions(cfg.RoleAssumptions)
	assert.Equal(t, ptr.To(0.03), roles.GetRoleAssumptions("Analyst").Retirement)

	match := cfg.UnitMap.MatchConfig()
	assert.Equal(t, unitmap.EitherDirection, match.Direction)
	assert.True(t, unitmap.MatchesUnit("People", "HR", match))
	assert.True(t, unitmap.MatchesUnit("Supply Chain volume", "Supply Chain", match))
}

func TestDefaultUnitMatch(t *testing.T) {
	match := Default().UnitMap.MatchConfig()
	assert.Equal(t, unitmap.DriverInUnit, match.Direction)
	assert.True(t, unitmap.MatchesUnit("Sales", "Sales Operations", match))
	assert.False(t, unitmap.MatchesUnit("Sales volume", "Sales", match))
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("correlation:\n  threshold: 0.9\n"), 0o600))
	_, err := Load(path, nil)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}
