/*
policy.go - Service interval policies

PURPOSE:
  Maps a service type tag to its maintenance interval in days and miles.
  The table is a plain immutable map: built once at startup (defaults plus
  optional config overrides) and read by the forecast calculator.

AVAILABLE POLICIES:
  OIL_CHANGE:      120 days / 15,000 miles
  TIRE_ROTATION:    90 days / 10,000 miles
  PM_SERVICE:       90 days / 25,000 miles
  BRAKE_SERVICE:   365 days / 50,000 miles
  DOT_INSPECTION:  365 days / 100,000 miles
  (anything else)  180 days / 20,000 miles

CUSTOMIZATION:
  Deployments with different fleets override entries via the config file
  (config.Config.Policies); the engine still sees a plain map. After an
  override changes, existing forecasts are re-evaluated with the refresh
  entry point, not migrated.

SEE ALSO:
  - forecast.go: Consumes IntervalFor during projection
  - config/config.go: Per-deployment overrides
*/
package fleet

import "github.com/shopspring/decimal"

// ServicePolicy is one interval policy: service is due after IntervalDays
// elapsed or IntervalMiles accumulated, whichever comes first.
type ServicePolicy struct {
	IntervalDays  int
	IntervalMiles decimal.Decimal
}

// Policies maps a service type tag to its interval policy. Unknown tags fall
// back to DefaultPolicy.
type Policies map[string]ServicePolicy

// DefaultPolicy applies to service types with no table entry.
var DefaultPolicy = ServicePolicy{
	IntervalDays:  180,
	IntervalMiles: decimal.NewFromInt(20000),
}

// DefaultPolicies returns the built-in interval table.
func DefaultPolicies() Policies {
	return Policies{
		"OIL_CHANGE":     {IntervalDays: 120, IntervalMiles: decimal.NewFromInt(15000)},
		"TIRE_ROTATION":  {IntervalDays: 90, IntervalMiles: decimal.NewFromInt(10000)},
		"PM_SERVICE":     {IntervalDays: 90, IntervalMiles: decimal.NewFromInt(25000)},
		"BRAKE_SERVICE":  {IntervalDays: 365, IntervalMiles: decimal.NewFromInt(50000)},
		"DOT_INSPECTION": {IntervalDays: 365, IntervalMiles: decimal.NewFromInt(100000)},
	}
}

// IntervalFor looks up the policy for a service type, falling back to
// DefaultPolicy for unknown types.
func (p Policies) IntervalFor(serviceType string) ServicePolicy {
	if pol, ok := p[serviceType]; ok {
		return pol
	}
	return DefaultPolicy
}

// Merge returns a copy of p with the overrides applied on top. Neither input
// is mutated.
func (p Policies) Merge(overrides Policies) Policies {
	merged := make(Policies, len(p)+len(overrides))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
