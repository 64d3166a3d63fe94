package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// GlobalDefaultsKey is the entry that applies to every role.
const GlobalDefaultsKey = "default"

// RoleAssumptions holds the supply and strategy assumptions of a single role.
// Nil fields inherit from the global defaults entry and then from ScenarioConfig.
type RoleAssumptions struct {
	// Role is the role name (only used in override entries)
	Role string `yaml:"role,omitempty" json:"role,omitempty"`

	// Attrition is the yearly voluntary attrition rate (0.0-1.0)
	Attrition *float64 `yaml:"attrition,omitempty" json:"attrition,omitempty"`

	// Retirement is the yearly retirement rate (0.0-1.0)
	Retirement *float64 `yaml:"retirement,omitempty" json:"retirement,omitempty"`

	// Inflow is the yearly hiring inflow used in per-role inflow mode
	Inflow *float64 `yaml:"inflow,omitempty" json:"inflow,omitempty"`

	// Impact is the strategic impact score (1-5)
	Impact *float64 `yaml:"impact,omitempty" json:"impact,omitempty"`
}

// RoleAssumptionsData maps a role name to its assumptions.
type RoleAssumptionsData map[string]RoleAssumptions

// Validate checks for invalid assumption values.
func (c *RoleAssumptions) Validate() error {
	attrition := ptr.Deref(c.Attrition, 0)
	retirement := ptr.Deref(c.Retirement, 0)
	if err := ValidateRates(attrition, retirement); err != nil {
		return err
	}
	if c.Inflow != nil && *c.Inflow < 0 {
		return fmt.Errorf("inflow must be >= 0, got %.1f", *c.Inflow)
	}
	if c.Impact != nil {
		if err := ValidateImpact(*c.Impact); err != nil {
			return err
		}
	}
	return nil
}

// ParseRoleAssumptions parses per-role assumptions from a map of YAML documents.
// The format:
//   - "default": assumptions applied to every role
//   - "<entry-name>": per-role assumptions with a role field
//
// Invalid entries are logged and skipped. When two entries name the same role the
// first key in sorted order wins.
func ParseRoleAssumptions(data map[string]string) RoleAssumptionsData {
	out := make(RoleAssumptionsData)
	if data == nil {
		return out
	}
	logger := logging.Default()
	roleToKey := make(map[string]string)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var entry RoleAssumptions
		if err := yaml.Unmarshal([]byte(data[key]), &entry); err != nil {
			logger.Info("Failed to parse role assumptions entry, skipping",
				"key", key,
				"error", err)
			continue
		}

		if err := entry.Validate(); err != nil {
			logger.Info("Invalid role assumptions entry, skipping",
				"key", key,
				"error", err)
			continue
		}

		if key == GlobalDefaultsKey {
			out[GlobalDefaultsKey] = entry
			continue
		}

		if entry.Role == "" {
			logger.Info("Skipping role assumptions entry without role field",
				"key", key)
			continue
		}

		if winner, exists := roleToKey[entry.Role]; exists {
			logger.Info("Duplicate role found in role assumptions - first key wins",
				"role", entry.Role,
				"winningKey", winner,
				"duplicateKey", key)
			continue
		}
		roleToKey[entry.Role] = key
		out[entry.Role] = entry
	}

	logger.V(logging.DEBUG).Info("Parsed role assumptions",
		"roleCount", len(roleToKey))

	return out
}

// GetRoleAssumptions returns the effective assumptions for a role.
// It merges the role-specific entry over the global defaults entry.
func (data RoleAssumptionsData) GetRoleAssumptions(role string) RoleAssumptions {
	defaults := data[GlobalDefaultsKey]
	roleEntry, hasRole := data[role]
	if !hasRole {
		return defaults
	}

	result := defaults
	result.Role = roleEntry.Role
	if roleEntry.Attrition != nil {
		result.Attrition = roleEntry.Attrition
	}
	if roleEntry.Retirement != nil {
		result.Retirement = roleEntry.Retirement
	}
	if roleEntry.Inflow != nil {
		result.Inflow = roleEntry.Inflow
	}
	if roleEntry.Impact != nil {
		result.Impact = roleEntry.Impact
	}
	return result
}

// RatesFor returns the attrition and retirement rates of a role. Precedence from
// lowest to highest: scenario defaults, the "default" entry, the role entry, and
// the rates supplied with the plan inputs.
func (data RoleAssumptionsData) RatesFor(role string, defaults ScenarioConfig, input v1alpha1.RoleRates) (attrition, retirement float64) {
	ra := data.GetRoleAssumptions(role)
	attrition = ptr.Deref(ra.Attrition, defaults.Attrition)
	retirement = ptr.Deref(ra.Retirement, defaults.Retirement)
	attrition = ptr.Deref(input.Attrition, attrition)
	retirement = ptr.Deref(input.Retirement, retirement)
	return attrition, retirement
}

// InflowFor returns the per-role inflow configured for a role, if any.
func (data RoleAssumptionsData) InflowFor(role string) (float64, bool) {
	ra := data.GetRoleAssumptions(role)
	if ra.Inflow == nil {
		return 0, false
	}
	return *ra.Inflow, true
}

// ImpactFor returns the strategic impact of a role, preferring the plan input value.
func (data RoleAssumptionsData) ImpactFor(role string, defaults StrategyConfig, input map[string]float64) float64 {
	if v, ok := input[role]; ok {
		return v
	}
	return ptr.Deref(data.GetRoleAssumptions(role).Impact, defaults.DefaultImpact)
}
