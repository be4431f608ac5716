/*
store.go - Persistence interfaces for the forecasting engine

PURPOSE:
  Defines the interface between the domain logic and the database. Two
  ledgers (usage, maintenance) are append-only; the forecast table is a
  materialized view replaced wholesale; the equipment row is the only
  mutable record, and only its current readings mutate.

APPEND-ONLY CONTRACT:
  Usage and maintenance events expose Append + List only. There is no
  Update or Delete on either ledger. Corrections are new events.

MATERIALIZED VIEW CONTRACT:
  ReplaceForecasts deletes the whole set for an equipment and inserts the
  new one. It is the ONLY forecast mutation path; there is no row-level
  upsert.

TRANSACTIONS:
  TxStore.WithTx runs a closure against a Store view bound to one database
  transaction. All reads issued inside the closure observe writes already
  flushed in the same transaction; the engine relies on this so a recompute
  sees the ledger append that triggered it before anything commits.

IMPLEMENTATIONS:
  - store/sqlite: production path
  - fleet/store: in-memory, for tests

SEE ALSO:
  - engine.go: The only consumer of these interfaces
*/
package fleet

import "context"

// EquipmentStore owns equipment identity and current readings.
type EquipmentStore interface {
	// InsertEquipment persists a new unit. The database unique constraints on
	// (company, unit number) and (company, vin) are the source of truth:
	// violations surface as ErrDuplicateUnit / ErrDuplicateVIN.
	InsertEquipment(ctx context.Context, eq *Equipment) error

	// GetEquipment returns the unit, scoped to the company. Missing or
	// out-of-scope units return ErrEquipmentNotFound.
	GetEquipment(ctx context.Context, company CompanyID, id EquipmentID) (*Equipment, error)

	// ListEquipment returns all units for a company, ordered by unit number.
	ListEquipment(ctx context.Context, company CompanyID) ([]Equipment, error)

	// UpdateEquipmentReadings persists CurrentMileage/CurrentEngineHours and
	// UpdatedAt. No other column is touched.
	UpdateEquipmentReadings(ctx context.Context, eq *Equipment) error
}

// UsageStore is the append-only usage ledger.
type UsageStore interface {
	AppendUsage(ctx context.Context, ev *UsageEvent) error

	// ListUsage returns events newest-first. limit <= 0 means all.
	ListUsage(ctx context.Context, company CompanyID, id EquipmentID, limit int) ([]UsageEvent, error)
}

// MaintenanceStore is the append-only maintenance ledger.
type MaintenanceStore interface {
	AppendMaintenance(ctx context.Context, ev *MaintenanceEvent) error

	// ListMaintenance returns the full service history, newest-first.
	ListMaintenance(ctx context.Context, company CompanyID, id EquipmentID) ([]MaintenanceEvent, error)
}

// ForecastStore holds the current forecast set per equipment.
type ForecastStore interface {
	// ReplaceForecasts deletes every forecast row for the equipment and
	// inserts the new set. Callers stamp fresh IDs and generation timestamps
	// before calling.
	ReplaceForecasts(ctx context.Context, company CompanyID, id EquipmentID, forecasts []MaintenanceForecast) error

	// ListForecasts returns the live set, ordered by service type.
	ListForecasts(ctx context.Context, company CompanyID, id EquipmentID) ([]MaintenanceForecast, error)
}

// Store aggregates all persistence concerns of the engine.
type Store interface {
	EquipmentStore
	UsageStore
	MaintenanceStore
	ForecastStore
}

// TxStore adds transaction support. fn receives a Store view bound to the
// transaction; returning an error rolls everything back.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
