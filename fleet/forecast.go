/*
forecast.go - The forecast calculator

PURPOSE:
  Pure computation of the next-due forecast set for one equipment unit.
  Given the equipment snapshot, its full maintenance history, its recent
  usage readings, and the policy table, produces one MaintenanceForecast per
  service type that has ever been serviced. Service types never serviced
  produce no forecast at all.

DETERMINISM:
  ComputeForecasts is a side-effect-free function of its inputs: identical
  history always yields identical (status, projected date, projected mileage,
  confidence, risk) tuples. Row identity (ID, GeneratedAt) is stamped later,
  by the engine, when the set is persisted.

PROJECTION PRECEDENCE (per service type):
  1. An explicit next-due date on the governing maintenance event wins
     verbatim.
  2. Otherwise baseline = service date + policy interval days.
  3. If a usage trend exists, a mileage due point is known (explicit or
     interval-derived), and the equipment has a current reading with miles
     still remaining, the mileage hazard is converted to a date through the
     trend; the earlier of the two dates governs.

STATUS THRESHOLDS:
  OVERDUE  risk 0.95  days-until <= 0 OR miles-until <= 0
  DUE_SOON risk 0.65  days-until <= 14 OR miles-until <= 1000
  OK       risk 0.20  otherwise

CONFIDENCE:
  0.9 when a trend was computable, 0.6 otherwise.

SEE ALSO:
  - trend.go: The avg-daily-miles estimate
  - policy.go: Interval lookup
  - engine.go: Runs this inside the write transaction and replaces the set
*/
package fleet

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Risk and threshold constants for status classification.
var (
	riskOverdue = 0.95
	riskDueSoon = 0.65
	riskOK      = 0.2

	confidenceWithTrend    = 0.9
	confidenceWithoutTrend = 0.6

	dueSoonDays  = 14
	dueSoonMiles = decimal.NewFromInt(1000)
)

const (
	noteOverdue = "Service interval exceeded"
	noteDueSoon = "Schedule service soon"
)

// ComputeForecasts produces the forecast set for one equipment unit.
// usage must be ordered newest-first (store order); maint may be in any
// order. today is the evaluation date, truncated to a UTC day internally.
func ComputeForecasts(eq Equipment, maint []MaintenanceEvent, usage []UsageEvent, policies Policies, today time.Time) []MaintenanceForecast {
	today = TruncateToDay(today)
	latest := LatestMaintenanceByType(maint)
	trend := ComputeTrend(usage)

	// Deterministic output order.
	types := make([]string, 0, len(latest))
	for st := range latest {
		types = append(types, st)
	}
	sort.Strings(types)

	forecasts := make([]MaintenanceForecast, 0, len(types))
	for _, st := range types {
		forecasts = append(forecasts, forecastFor(eq, latest[st], trend, policies.IntervalFor(st), today))
	}
	return forecasts
}

// LatestMaintenanceByType reduces full history to the most recent event per
// service type, by service date. Ties fall to the later-created event.
func LatestMaintenanceByType(events []MaintenanceEvent) map[string]MaintenanceEvent {
	latest := make(map[string]MaintenanceEvent)
	for _, ev := range events {
		cur, ok := latest[ev.ServiceType]
		if !ok || ev.ServiceDate.After(cur.ServiceDate) ||
			(ev.ServiceDate.Equal(cur.ServiceDate) && ev.CreatedAt.After(cur.CreatedAt)) {
			latest[ev.ServiceType] = ev
		}
	}
	return latest
}

func forecastFor(eq Equipment, last MaintenanceEvent, trend *UsageTrend, pol ServicePolicy, today time.Time) MaintenanceForecast {
	projectedMileage := projectMileage(last, pol)
	projectedDate := projectDate(eq, last, trend, projectedMileage, pol, today)

	var daysUntil *int
	if projectedDate != nil {
		d := DaysBetween(today, *projectedDate)
		daysUntil = &d
	}
	var milesUntil *decimal.Decimal
	if projectedMileage != nil && eq.CurrentMileage != nil {
		m := projectedMileage.Sub(*eq.CurrentMileage)
		milesUntil = &m
	}

	status, risk, notes := classify(daysUntil, milesUntil, trend)

	confidence := confidenceWithoutTrend
	if trend != nil {
		confidence = confidenceWithTrend
	}

	return MaintenanceForecast{
		EquipmentID:      eq.ID,
		CompanyID:        eq.CompanyID,
		ServiceType:      last.ServiceType,
		BasisEventID:     last.ID,
		Status:           status,
		ProjectedDate:    projectedDate,
		ProjectedMileage: projectedMileage,
		Confidence:       confidence,
		RiskScore:        risk,
		Notes:            notes,
	}
}

// projectDate applies the precedence order: explicit override, then the
// earlier of the time-based baseline and the trend-converted mileage hazard.
// dueMileage is the mileage due point from projectMileage, explicit or
// interval-derived.
func projectDate(eq Equipment, last MaintenanceEvent, trend *UsageTrend, dueMileage *decimal.Decimal, pol ServicePolicy, today time.Time) *time.Time {
	if last.NextDueDate != nil {
		d := TruncateToDay(*last.NextDueDate)
		return &d
	}

	baseline := TruncateToDay(last.ServiceDate).AddDate(0, 0, pol.IntervalDays)
	projected := baseline

	if trend != nil && dueMileage != nil && eq.CurrentMileage != nil {
		milesRemaining := dueMileage.Sub(*eq.CurrentMileage)
		if milesRemaining.Sign() > 0 {
			// Fractional days truncate toward zero: a unit 150.9 trend-days
			// out is projected 150 days out.
			days := int(milesRemaining.Div(trend.AvgDailyMiles).IntPart())
			trendDate := today.AddDate(0, 0, days)
			projected = MinDate(baseline, trendDate)
		}
	}
	return &projected
}

func projectMileage(last MaintenanceEvent, pol ServicePolicy) *decimal.Decimal {
	if last.NextDueMileage != nil {
		m := *last.NextDueMileage
		return &m
	}
	if last.Odometer != nil {
		m := last.Odometer.Add(pol.IntervalMiles)
		return &m
	}
	return nil
}

func classify(daysUntil *int, milesUntil *decimal.Decimal, trend *UsageTrend) (ForecastStatus, float64, string) {
	switch {
	case (daysUntil != nil && *daysUntil <= 0) ||
		(milesUntil != nil && milesUntil.Sign() <= 0):
		return ForecastOverdue, riskOverdue, noteOverdue

	case (daysUntil != nil && *daysUntil <= dueSoonDays) ||
		(milesUntil != nil && milesUntil.LessThanOrEqual(dueSoonMiles)):
		return ForecastDueSoon, riskDueSoon, noteDueSoon

	default:
		if trend != nil {
			return ForecastOK, riskOK, fmt.Sprintf("On track; %s", trend)
		}
		return ForecastOK, riskOK, "On track"
	}
}
