package unitmap

import (
	"context"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// Discover resolves the function units of every driver.
//
// Returns a DiscoveryResult where each mapping is:
//   - SourceExplicit when the driver already lists function units.
//   - SourceDiscovered when at least one unit name matched the driver name.
//     Matched units keep the order of the units table.
//   - SourceUnmapped otherwise. The correlation stage reports these drivers.
//
// Returns an error only when there are no drivers or no units at all.
func Discover(ctx context.Context, drivers []v1alpha1.Driver, units []v1alpha1.FunctionUnit, config MatchConfig) (DiscoveryResult, error) {
	logger := logging.FromContext(ctx)
	if len(drivers) == 0 {
		return DiscoveryResult{}, errNoDrivers
	}
	if len(units) == 0 {
		return DiscoveryResult{}, errNoUnits
	}

	result := DiscoveryResult{Mappings: make([]Mapping, 0, len(drivers))}
	for _, d := range drivers {
		if len(d.FunctionUnits) > 0 {
			result.Mappings = append(result.Mappings, Mapping{
				Driver: d.Name,
				Units:  append([]string(nil), d.FunctionUnits...),
				Source: SourceExplicit,
			})
			continue
		}

		var matched []string
		for _, u := range units {
			if MatchesUnit(d.Name, u.Name, config) {
				matched = append(matched, u.Name)
			}
		}
		if len(matched) == 0 {
			logger.V(logging.DEBUG).Info("No function unit matched driver", "driver", d.Name)
			result.Mappings = append(result.Mappings, Mapping{Driver: d.Name, Source: SourceUnmapped})
			continue
		}

		logger.V(logging.DEBUG).Info("Discovered function units for driver",
			"driver", d.Name,
			"units", matched)
		result.Mappings = append(result.Mappings, Mapping{Driver: d.Name, Units: matched, Source: SourceDiscovered})
	}
	return result, nil
}

// Apply returns a copy of in where every driver without explicit units carries
// its discovered units. in is not modified.
func Apply(ctx context.Context, in *v1alpha1.PlanInputs, config MatchConfig) (*v1alpha1.PlanInputs, DiscoveryResult, error) {
	result, err := Discover(ctx, in.Drivers, in.FunctionUnits, config)
	if err != nil {
		return in, result, err
	}
	out := *in
	out.Drivers = make([]v1alpha1.Driver, len(in.Drivers))
	for i, d := range in.Drivers {
		d.FunctionUnits = result.Mappings[i].Units
		out.Drivers[i] = d
	}
	return &out, result, nil
}
