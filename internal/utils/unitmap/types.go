// Package unitmap resolves which function units each business driver is mapped to.
// Explicit mappings from the plan inputs always win; drivers without one are
// mapped by matching the driver name against unit names.
package unitmap

import "errors"

var (
	errNoUnits   = errors.New("no function units to match against")
	errNoDrivers = errors.New("no drivers to map")
)

// Source records how a driver's mapping was obtained.
type Source string

const (
	// SourceExplicit indicates the mapping was supplied with the plan inputs.
	SourceExplicit Source = "explicit"
	// SourceDiscovered indicates the mapping was derived by name matching.
	SourceDiscovered Source = "discovered"
	// SourceUnmapped indicates no unit matched the driver.
	SourceUnmapped Source = "unmapped"
)

// Direction selects which name must contain the other.
type Direction string

const (
	// DriverInUnit matches when the driver name occurs in the unit name ("Sales" -> "Sales Operations").
	DriverInUnit Direction = "DriverInUnit"
	// UnitInDriver matches when the unit name occurs in the driver name ("Sales volume" -> "Sales").
	UnitInDriver Direction = "UnitInDriver"
	// EitherDirection matches when either name contains the other.
	EitherDirection Direction = "Either"
)

// Directions lists the supported match directions.
var Directions = []Direction{DriverInUnit, UnitInDriver, EitherDirection}

// IsValid reports whether d is a supported direction. The empty direction means DriverInUnit.
func (d Direction) IsValid() bool {
	if d == "" {
		return true
	}
	for _, v := range Directions {
		if d == v {
			return true
		}
	}
	return false
}

// MatchConfig describes how driver and unit names are compared.
type MatchConfig struct {
	// CaseSensitive disables case folding before comparison.
	CaseSensitive bool
	// Direction selects which name must contain the other. Empty means DriverInUnit.
	Direction Direction
	// Aliases maps a unit name to extra tokens that also identify it (e.g. "HR": ["people"]).
	Aliases map[string][]string
}

// Mapping is the resolved mapping of one driver.
type Mapping struct {
	Driver string
	Units  []string
	Source Source
}

// DiscoveryResult holds the mappings of every driver.
type DiscoveryResult struct {
	Mappings []Mapping
}

// Unmapped returns the drivers without any function unit.
func (r DiscoveryResult) Unmapped() []string {
	var out []string
	for _, m := range r.Mappings {
		if m.Source == SourceUnmapped {
			out = append(out, m.Driver)
		}
	}
	return out
}

// DefaultMatchConfig returns case-insensitive matching of the driver name inside unit names.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{Direction: DriverInUnit}
}
