/*
engine.go - Transactional orchestration of the forecasting engine

PURPOSE:
  The Engine is the write path of the subsystem. Every ledger append runs
  inside a single store transaction that also updates the equipment's
  current readings, recomputes the forecast set, and replaces it. From any
  other transaction's point of view a usage/maintenance write and its
  resulting forecast update become visible together, never separately.

OPERATIONS:
  RegisterEquipment:  insert; uniqueness enforced by the DB constraints
  RecordUsage:        append reading + update readings + recompute + replace
  RecordMaintenance:  append service record + update readings + recompute + replace
  RefreshForecasts:   recompute + replace with no preceding write
  ListEquipment:      all units with embedded histories and forecasts

CONCURRENCY:
  Two writers appending for the SAME equipment race on a last-commit-wins
  basis: the final forecast set reflects whichever recompute committed
  last. Acceptable for the low per-unit write rate this engine targets; a
  per-equipment row lock would be the first fix if telemetry-rate writers
  ever feed it.

ERROR MODEL:
  No internal retries, no fatal class. Any failure inside the transaction
  closure rolls the whole sequence back and is reported to the caller.

SEE ALSO:
  - forecast.go: The pure calculator this engine drives
  - store.go: The TxStore contract the closure relies on
*/
package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Engine orchestrates ledger writes and forecast recomputes over a TxStore.
type Engine struct {
	store    TxStore
	policies Policies
	log      zerolog.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewEngine builds an Engine. policies is typically
// DefaultPolicies().Merge(configOverrides).
func NewEngine(store TxStore, policies Policies, log zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		policies: policies,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// =============================================================================
// INPUTS
// =============================================================================

// RegisterEquipmentInput carries the attributes for a new unit.
type RegisterEquipmentInput struct {
	UnitNumber         string
	VIN                string
	Kind               EquipmentKind
	Make               string
	Model              string
	Year               int
	TelematicsDeviceID string
	EldDeviceID        string
	AssignedDriverID   string
}

// RecordUsageInput carries one reading. OccurredAt defaults to now; Source
// defaults to manual.
type RecordUsageInput struct {
	OccurredAt  time.Time
	Odometer    *decimal.Decimal
	EngineHours *decimal.Decimal
	Source      UsageSource
	Note        string
}

// RecordMaintenanceInput carries one completed service record.
type RecordMaintenanceInput struct {
	ServiceType    string
	ServiceDate    time.Time
	Odometer       *decimal.Decimal
	EngineHours    *decimal.Decimal
	Cost           *decimal.Decimal
	Note           string
	NextDueDate    *time.Time
	NextDueMileage *decimal.Decimal
}

// EquipmentDetail is an equipment row with its embedded histories, as the
// list endpoint exposes it to the rest of the system.
type EquipmentDetail struct {
	Equipment
	Usage       []UsageEvent
	Maintenance []MaintenanceEvent
	Forecasts   []MaintenanceForecast
}

// =============================================================================
// EQUIPMENT REGISTRY
// =============================================================================

// RegisterEquipment inserts a new unit. The (company, unit number) and
// (company, vin) unique constraints decide duplicates; there is no
// check-then-insert race window.
func (e *Engine) RegisterEquipment(ctx context.Context, company CompanyID, in RegisterEquipmentInput) (*Equipment, error) {
	unit := strings.TrimSpace(in.UnitNumber)
	if unit == "" {
		return nil, fmt.Errorf("%w: unit number is required", ErrInvalidInput)
	}
	if in.Kind != KindTractor && in.Kind != KindTrailer {
		return nil, fmt.Errorf("%w: unknown equipment kind %q", ErrInvalidInput, in.Kind)
	}

	now := e.now().UTC()
	eq := &Equipment{
		ID:                 EquipmentID(uuid.NewString()),
		CompanyID:          company,
		UnitNumber:         unit,
		VIN:                strings.TrimSpace(in.VIN),
		Kind:               in.Kind,
		Status:             StatusActive,
		OperationalStatus:  OpAvailable,
		Make:               in.Make,
		Model:              in.Model,
		Year:               in.Year,
		TelematicsDeviceID: in.TelematicsDeviceID,
		EldDeviceID:        in.EldDeviceID,
		AssignedDriverID:   in.AssignedDriverID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := e.store.InsertEquipment(ctx, eq); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("company_id", string(company)).
		Str("equipment_id", string(eq.ID)).
		Str("unit_number", eq.UnitNumber).
		Msg("equipment registered")
	return eq, nil
}

// GetEquipment returns one unit scoped to the company.
func (e *Engine) GetEquipment(ctx context.Context, company CompanyID, id EquipmentID) (*Equipment, error) {
	return e.store.GetEquipment(ctx, company, id)
}

// ListEquipment returns every unit for the company with embedded usage,
// maintenance, and forecast history.
func (e *Engine) ListEquipment(ctx context.Context, company CompanyID) ([]EquipmentDetail, error) {
	units, err := e.store.ListEquipment(ctx, company)
	if err != nil {
		return nil, err
	}

	details := make([]EquipmentDetail, 0, len(units))
	for _, eq := range units {
		usage, err := e.store.ListUsage(ctx, company, eq.ID, 0)
		if err != nil {
			return nil, err
		}
		maint, err := e.store.ListMaintenance(ctx, company, eq.ID)
		if err != nil {
			return nil, err
		}
		forecasts, err := e.store.ListForecasts(ctx, company, eq.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, EquipmentDetail{
			Equipment:   eq,
			Usage:       usage,
			Maintenance: maint,
			Forecasts:   forecasts,
		})
	}
	return details, nil
}

// =============================================================================
// USAGE LEDGER
// =============================================================================

// RecordUsage appends a reading, rolls the equipment's current readings
// forward, and replaces the forecast set, all in one transaction.
func (e *Engine) RecordUsage(ctx context.Context, company CompanyID, id EquipmentID, in RecordUsageInput) (*UsageEvent, error) {
	now := e.now().UTC()

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	source := in.Source
	if source == "" {
		source = SourceManual
	}

	ev := &UsageEvent{
		ID:          EventID(uuid.NewString()),
		EquipmentID: id,
		CompanyID:   company,
		OccurredAt:  occurredAt.UTC(),
		Odometer:    in.Odometer,
		EngineHours: in.EngineHours,
		Source:      source,
		Note:        in.Note,
		CreatedAt:   now,
	}

	err := e.store.WithTx(ctx, func(s Store) error {
		eq, err := s.GetEquipment(ctx, company, id)
		if err != nil {
			return err
		}
		if err := s.AppendUsage(ctx, ev); err != nil {
			return fmt.Errorf("append usage: %w", err)
		}
		if err := e.rollReadings(ctx, s, eq, in.Odometer, in.EngineHours, now); err != nil {
			return err
		}
		_, err = e.recompute(ctx, s, eq, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("equipment_id", string(id)).
		Time("occurred_at", ev.OccurredAt).
		Msg("usage recorded")
	return ev, nil
}

// =============================================================================
// MAINTENANCE LEDGER
// =============================================================================

// RecordMaintenance appends a completed service record; odometer/engine
// hours on the record roll the equipment readings forward exactly as usage
// events do. Same transaction, same recompute.
func (e *Engine) RecordMaintenance(ctx context.Context, company CompanyID, id EquipmentID, in RecordMaintenanceInput) (*MaintenanceEvent, error) {
	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" {
		return nil, fmt.Errorf("%w: service type is required", ErrInvalidInput)
	}
	if in.ServiceDate.IsZero() {
		return nil, fmt.Errorf("%w: service date is required", ErrInvalidInput)
	}

	now := e.now().UTC()
	ev := &MaintenanceEvent{
		ID:             EventID(uuid.NewString()),
		EquipmentID:    id,
		CompanyID:      company,
		ServiceType:    serviceType,
		ServiceDate:    TruncateToDay(in.ServiceDate),
		Odometer:       in.Odometer,
		EngineHours:    in.EngineHours,
		Cost:           in.Cost,
		Note:           in.Note,
		NextDueDate:    in.NextDueDate,
		NextDueMileage: in.NextDueMileage,
		CreatedAt:      now,
	}

	err := e.store.WithTx(ctx, func(s Store) error {
		eq, err := s.GetEquipment(ctx, company, id)
		if err != nil {
			return err
		}
		if err := s.AppendMaintenance(ctx, ev); err != nil {
			return fmt.Errorf("append maintenance: %w", err)
		}
		if err := e.rollReadings(ctx, s, eq, in.Odometer, in.EngineHours, now); err != nil {
			return err
		}
		_, err = e.recompute(ctx, s, eq, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("equipment_id", string(id)).
		Str("service_type", serviceType).
		Msg("maintenance recorded")
	return ev, nil
}

// =============================================================================
// FORECAST STORE
// =============================================================================

// RefreshForecasts recomputes and replaces the forecast set without a
// preceding ledger write. Manual/administrative entry point, e.g. after a
// policy table change.
func (e *Engine) RefreshForecasts(ctx context.Context, company CompanyID, id EquipmentID) ([]MaintenanceForecast, error) {
	now := e.now().UTC()

	var forecasts []MaintenanceForecast
	err := e.store.WithTx(ctx, func(s Store) error {
		eq, err := s.GetEquipment(ctx, company, id)
		if err != nil {
			return err
		}
		forecasts, err = e.recompute(ctx, s, eq, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return forecasts, nil
}

// ListForecasts returns the live forecast set for one unit.
func (e *Engine) ListForecasts(ctx context.Context, company CompanyID, id EquipmentID) ([]MaintenanceForecast, error) {
	if _, err := e.store.GetEquipment(ctx, company, id); err != nil {
		return nil, err
	}
	return e.store.ListForecasts(ctx, company, id)
}

// ListUsage returns the usage ledger for one unit, newest-first.
func (e *Engine) ListUsage(ctx context.Context, company CompanyID, id EquipmentID) ([]UsageEvent, error) {
	if _, err := e.store.GetEquipment(ctx, company, id); err != nil {
		return nil, err
	}
	return e.store.ListUsage(ctx, company, id, 0)
}

// ListMaintenance returns the service history for one unit, newest-first.
func (e *Engine) ListMaintenance(ctx context.Context, company CompanyID, id EquipmentID) ([]MaintenanceEvent, error) {
	if _, err := e.store.GetEquipment(ctx, company, id); err != nil {
		return nil, err
	}
	return e.store.ListMaintenance(ctx, company, id)
}

// =============================================================================
// INTERNALS
// =============================================================================

// rollReadings moves the equipment's current readings forward when the event
// carried them. Runs inside the same transaction as the ledger append; the
// equipment row is the only denormalized copy of these values anywhere.
func (e *Engine) rollReadings(ctx context.Context, s Store, eq *Equipment, odometer, engineHours *decimal.Decimal, now time.Time) error {
	if odometer == nil && engineHours == nil {
		return nil
	}
	if odometer != nil {
		v := *odometer
		eq.CurrentMileage = &v
	}
	if engineHours != nil {
		v := *engineHours
		eq.CurrentEngineHours = &v
	}
	eq.UpdatedAt = now
	if err := s.UpdateEquipmentReadings(ctx, eq); err != nil {
		return fmt.Errorf("update readings: %w", err)
	}
	return nil
}

// recompute runs the calculator against state visible inside the current
// transaction and replaces the stored set. Fresh identity on every run:
// value-idempotent, identity-fresh.
func (e *Engine) recompute(ctx context.Context, s Store, eq *Equipment, now time.Time) ([]MaintenanceForecast, error) {
	maint, err := s.ListMaintenance(ctx, eq.CompanyID, eq.ID)
	if err != nil {
		return nil, fmt.Errorf("load maintenance history: %w", err)
	}
	usage, err := s.ListUsage(ctx, eq.CompanyID, eq.ID, TrendWindow)
	if err != nil {
		return nil, fmt.Errorf("load usage window: %w", err)
	}

	forecasts := ComputeForecasts(*eq, maint, usage, e.policies, now)
	for i := range forecasts {
		forecasts[i].ID = ForecastID(uuid.NewString())
		forecasts[i].GeneratedAt = now
	}

	if err := s.ReplaceForecasts(ctx, eq.CompanyID, eq.ID, forecasts); err != nil {
		return nil, fmt.Errorf("replace forecasts: %w", err)
	}

	e.log.Debug().
		Str("equipment_id", string(eq.ID)).
		Int("forecasts", len(forecasts)).
		Msg("forecast set replaced")
	return forecasts, nil
}
