package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment variable overrides, e.g. WFP_CORRELATION_THRESHOLD.
const EnvPrefix = "WFP"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"threshold":            "correlation.threshold",
	"require-significance": "correlation.requireSignificance",
	"forecast-method":      "forecast.method",
	"horizon":              "forecast.horizon",
	"parallelism":          "scenario.parallelism",
	"unit-match":           "unitMap.direction",
	"collector-timeout":    "collector.timeout",
	"verbosity":            "logging.verbosity",
	"development":          "logging.development",
}

// AddFlags registers the configuration flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Float64("threshold", d.Correlation.Threshold, "absolute intercorrelation at which drivers are dependent (0.5 or 0.7)")
	fs.Bool("require-significance", d.Correlation.RequireSignificance, "keep only drivers with a significant correlation")
	fs.String("forecast-method", string(d.Forecast.Method), "KPI projection method (LinearTrend or CAGR)")
	fs.Int("horizon", d.Forecast.Horizon, "number of forecast years")
	fs.Int("parallelism", d.Scenario.Parallelism, "maximum roles projected concurrently")
	fs.String("unit-match", string(d.UnitMap.Direction), "how unmapped drivers are matched to function units (DriverInUnit, UnitInDriver or Either)")
	fs.Duration("collector-timeout", d.Collector.Timeout, "timeout for loading plan inputs")
	fs.Int("verbosity", d.Logging.Verbosity, "log verbosity (1=debug, 2=trace)")
	fs.Bool("development", d.Logging.Development, "use the development logger")
}

// Load builds the planner configuration from defaults, an optional YAML file,
// WFP_ environment variables and changed flags, in increasing precedence.
func Load(path string, fs *pflag.FlagSet) (*PlannerConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	base, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("reading defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &PlannerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
