/*
Package fleet provides the equipment usage and maintenance forecasting engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking fleet
  equipment (tractors, trailers), their odometer/engine-hour ledgers, completed
  service history, and the derived per-service-type maintenance forecasts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Equipment: A physical unit with current known readings
  - UsageEvent: An immutable odometer/engine-hour reading
  - MaintenanceEvent: An immutable completed-service record
  - MaintenanceForecast: Derived next-due prediction, replaced on every recompute
  - Company/Equipment IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Usage and maintenance ledgers are append-only, never edited
  2. Precision: Uses decimal.Decimal for mileage, hours, and cost
  3. Derived state: Forecasts are a materialized view, fully regenerated per
     recompute, never patched in place
  4. Tenancy: Every row carries its company scope; lookups are always scoped

USAGE:
  ev := fleet.UsageEvent{
      EquipmentID: "eq-123",
      CompanyID:   "co-1",
      Odometer:    fleet.Miles(101000),
      Source:      fleet.SourceManual,
  }

SEE ALSO:
  - forecast.go: The forecast calculator
  - trend.go: Average-daily-miles trend estimation
  - engine.go: Transactional orchestration (append + recompute + replace)
  - store.go: Persistence interfaces
*/
package fleet

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CompanyID string
type EquipmentID string
type EventID string
type ForecastID string

// =============================================================================
// EQUIPMENT - One row per physical unit
// =============================================================================

type EquipmentKind string

const (
	KindTractor EquipmentKind = "TRACTOR"
	KindTrailer EquipmentKind = "TRAILER"
)

type EquipmentStatus string

const (
	StatusActive   EquipmentStatus = "ACTIVE"
	StatusInactive EquipmentStatus = "INACTIVE"
)

type OperationalStatus string

const (
	OpAvailable    OperationalStatus = "AVAILABLE"
	OpInService    OperationalStatus = "IN_SERVICE"
	OpInShop       OperationalStatus = "IN_SHOP"
	OpOutOfService OperationalStatus = "OUT_OF_SERVICE"
)

// Equipment is a fleet unit. UnitNumber is unique within a company; VIN is
// unique within a company when present. CurrentMileage/CurrentEngineHours are
// the latest known readings, updated only inside the same transaction as the
// ledger append that carried them.
type Equipment struct {
	ID                EquipmentID
	CompanyID         CompanyID
	UnitNumber        string
	VIN               string // optional; "" means unknown
	Kind              EquipmentKind
	Status            EquipmentStatus
	OperationalStatus OperationalStatus
	Make              string
	Model             string
	Year              int

	CurrentMileage     *decimal.Decimal // nil until a reading arrives
	CurrentEngineHours *decimal.Decimal

	TelematicsDeviceID string // optional
	EldDeviceID        string // optional
	AssignedDriverID   string // optional, owned by the dispatch subsystem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// USAGE LEDGER - Append-only odometer/engine-hour readings
// =============================================================================

type UsageSource string

const (
	SourceManual     UsageSource = "manual"
	SourceTelematics UsageSource = "telematics"
)

// UsageEvent is one reading. Ordering is by OccurredAt; events are never
// merged, edited, or deleted.
type UsageEvent struct {
	ID          EventID
	EquipmentID EquipmentID
	CompanyID   CompanyID
	OccurredAt  time.Time
	Odometer    *decimal.Decimal // miles, optional
	EngineHours *decimal.Decimal // optional
	Source      UsageSource
	Note        string
	CreatedAt   time.Time
}

// =============================================================================
// MAINTENANCE LEDGER - Append-only completed service records
// =============================================================================

// MaintenanceEvent records one completed service. Multiple events may exist
// per service type; only the most recent by ServiceDate feeds the forecast.
// NextDueDate/NextDueMileage are explicit overrides entered by the shop and
// always supersede computed projections.
type MaintenanceEvent struct {
	ID          EventID
	EquipmentID EquipmentID
	CompanyID   CompanyID
	ServiceType string
	ServiceDate time.Time
	Odometer    *decimal.Decimal // reading at time of service, optional
	EngineHours *decimal.Decimal
	Cost        *decimal.Decimal // optional
	Note        string

	NextDueDate    *time.Time
	NextDueMileage *decimal.Decimal

	CreatedAt time.Time
}

// =============================================================================
// MAINTENANCE FORECAST - Derived, fully replaced on every recompute
// =============================================================================

type ForecastStatus string

const (
	ForecastOK      ForecastStatus = "OK"
	ForecastDueSoon ForecastStatus = "DUE_SOON"
	ForecastOverdue ForecastStatus = "OVERDUE"
)

// MaintenanceForecast is the projection for one (equipment, service type)
// pair. The whole set for an equipment is deleted and regenerated on every
// recompute: ID and GeneratedAt change even when the projected values do not,
// so callers must not treat forecast identity as stable.
type MaintenanceForecast struct {
	ID           ForecastID
	EquipmentID  EquipmentID
	CompanyID    CompanyID
	ServiceType  string
	BasisEventID EventID // the maintenance event the projection is based on

	Status           ForecastStatus
	ProjectedDate    *time.Time
	ProjectedMileage *decimal.Decimal
	Confidence       float64 // 0..1
	RiskScore        float64 // 0..1
	Notes            string

	GeneratedAt time.Time
}

// =============================================================================
// AMOUNT HELPERS
// =============================================================================

// Miles builds a decimal mileage value from a float literal. Test and seed
// helper; production readings arrive as decimal strings.
func Miles(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// Hours builds a decimal engine-hours value from a float literal.
func Hours(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
