// Package config provides configuration management for the workforce planner.
//
// This package handles loading, validation, and access to planner configuration
// from a YAML file, environment variables, and command-line flags.
//
// Configuration Types:
//
//   - PlannerConfig: Top-level settings grouping every stage section
//   - CorrelationConfig: Significance level, minimum aligned points, independence threshold
//   - ForecastConfig: KPI projection method, horizon, driver weight tolerance
//   - ScenarioConfig: Growth presets, default attrition and retirement, shared inflow pool
//   - StrategyConfig: Decision table thresholds and priority weights
//   - UnitMapConfig: Match direction, case sensitivity and aliases for driver to unit discovery
//   - RoleAssumptions: Per-role overrides of rates, inflow and strategic impact
//
// Configuration Sources:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables prefixed with WFP_
//  3. Configuration file
//  4. Default values (lowest priority)
//
// Example usage:
//
//	fs := pflag.NewFlagSet("planner", pflag.ExitOnError)
//	config.AddFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//
//	cfg, err := config.Load("planner.yaml", fs)
//	if err != nil {
//	    log.Error(err, "failed to load configuration")
//	    return err
//	}
//
//	roles := config.ParseRoleAssumptions(cfg.RoleAssumptions)
//	attrition, retirement := roles.RatesFor("Data Scientist", cfg.Scenario, v1alpha1.RoleRates{})
//
// Role Assumptions:
//
// Per-role overrides are YAML documents keyed by entry name. The "default" entry
// applies to every role and each role entry is merged over it. Invalid entries are
// logged and skipped; when two entries name the same role the first key in sorted
// order wins.
//
//	roleAssumptions:
//	  default: |
//	    attrition: 0.06
//	  data-scientist: |
//	    role: Data Scientist
//	    retirement: 0.01
//	    impact: 5
//
// Configuration Validation:
//
// All configuration values are validated on load:
//   - Fractions in range (e.g., 0 < alpha < 1, attrition + retirement <= 1)
//   - Independence threshold restricted to 0.5 or 0.7
//   - Positive horizon and parallelism
//   - Impact scores between 1 and 5
//   - Unit match direction one of DriverInUnit, UnitInDriver or Either
package config
