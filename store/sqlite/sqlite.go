/*
Package sqlite provides a SQLite-backed implementation of the fleet storage
interfaces.

PURPOSE:
  Implements fleet.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  fleet.Store:   Equipment registry, usage/maintenance ledgers, forecast store
  fleet.TxStore: Transactional closures over *sql.Tx

APPEND-ONLY ENFORCEMENT:
  usage_events and maintenance_events have no UPDATE or DELETE statements
  anywhere in this package. The only DELETE is the forecast replacement,
  which is the defined lifecycle of that table.

UNIQUENESS:
  Registration relies on the unique indexes
    (company_id, unit_number) and (company_id, vin) where vin is set.
  Inserts go straight to the database and constraint violations are
  translated into fleet.ErrDuplicateUnit / fleet.ErrDuplicateVIN. There is
  no check-then-insert window: the constraint is the source of truth.

TRANSACTIONS:
  WithTx binds a Store view to one *sql.Tx. Reads inside the closure go
  through the same transaction, so the forecast recompute observes the
  ledger append that triggered it before anything commits.

WAL MODE:
  SQLite is opened with WAL for better concurrency; a process-local mutex
  serializes writers the way the reference PostgreSQL deployment would rely
  on row locks.

USAGE:
  st, err := sqlite.New("./data/fleet.db")
  if err != nil { ... }
  defer st.Close()
  engine := fleet.NewEngine(st, fleet.DefaultPolicies(), log)

SEE ALSO:
  - fleet/store.go: Interface definitions
  - fleet/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/maintenance-engine/fleet"
)

// Store implements fleet.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Equipment registry (one row per physical unit)
	CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		unit_number TEXT NOT NULL,
		vin TEXT,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		operational_status TEXT NOT NULL,
		make TEXT,
		model TEXT,
		year INTEGER,
		current_mileage TEXT,
		current_engine_hours TEXT,
		telematics_device_id TEXT,
		eld_device_id TEXT,
		assigned_driver_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: these constraints, not any application pre-check, are what
	-- prevents duplicate registration under concurrency.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_equipment_company_unit
		ON equipment(company_id, unit_number);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_equipment_company_vin
		ON equipment(company_id, vin)
		WHERE vin IS NOT NULL AND vin <> '';

	-- Usage ledger (append-only)
	CREATE TABLE IF NOT EXISTS usage_events (
		id TEXT PRIMARY KEY,
		equipment_id TEXT NOT NULL REFERENCES equipment(id),
		company_id TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		odometer TEXT,
		engine_hours TEXT,
		source TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_equipment_time
		ON usage_events(equipment_id, occurred_at DESC);

	-- Maintenance ledger (append-only)
	CREATE TABLE IF NOT EXISTS maintenance_events (
		id TEXT PRIMARY KEY,
		equipment_id TEXT NOT NULL REFERENCES equipment(id),
		company_id TEXT NOT NULL,
		service_type TEXT NOT NULL,
		service_date TEXT NOT NULL,
		odometer TEXT,
		engine_hours TEXT,
		cost TEXT,
		note TEXT,
		next_due_date TEXT,
		next_due_mileage TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_maintenance_equipment_type_date
		ON maintenance_events(equipment_id, service_type, service_date DESC);

	-- Forecast store (materialized view: delete-then-insert only)
	CREATE TABLE IF NOT EXISTS maintenance_forecasts (
		id TEXT PRIMARY KEY,
		equipment_id TEXT NOT NULL REFERENCES equipment(id),
		company_id TEXT NOT NULL,
		service_type TEXT NOT NULL,
		basis_event_id TEXT NOT NULL,
		status TEXT NOT NULL,
		projected_date TEXT,
		projected_mileage TEXT,
		confidence REAL NOT NULL,
		risk_score REAL NOT NULL,
		notes TEXT,
		generated_at TEXT NOT NULL,
		UNIQUE(equipment_id, service_type)
	);

	CREATE INDEX IF NOT EXISTS idx_forecasts_company_equipment
		ON maintenance_forecasts(company_id, equipment_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every query helper can
// run inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EQUIPMENT REGISTRY (fleet.EquipmentStore)
// =============================================================================

func (s *Store) InsertEquipment(ctx context.Context, eq *fleet.Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEquipment(ctx, s.db, eq)
}

func (s *Store) insertEquipment(ctx context.Context, db dbtx, eq *fleet.Equipment) error {
	query := `
		INSERT INTO equipment
		(id, company_id, unit_number, vin, kind, status, operational_status,
		 make, model, year, current_mileage, current_engine_hours,
		 telematics_device_id, eld_device_id, assigned_driver_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		eq.ID, eq.CompanyID, eq.UnitNumber, nullString(eq.VIN),
		eq.Kind, eq.Status, eq.OperationalStatus,
		eq.Make, eq.Model, eq.Year,
		nullDecimal(eq.CurrentMileage), nullDecimal(eq.CurrentEngineHours),
		eq.TelematicsDeviceID, eq.EldDeviceID, eq.AssignedDriverID,
		eq.CreatedAt.Format(time.RFC3339), eq.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// The constraint message names the colliding column set.
			if strings.Contains(err.Error(), "vin") {
				return &fleet.DuplicateVINError{CompanyID: eq.CompanyID, VIN: eq.VIN}
			}
			return &fleet.DuplicateUnitError{CompanyID: eq.CompanyID, UnitNumber: eq.UnitNumber}
		}
		return fmt.Errorf("failed to insert equipment: %w", err)
	}
	return nil
}

func (s *Store) GetEquipment(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEquipment(ctx, s.db, company, id)
}

const equipmentColumns = `
	id, company_id, unit_number, vin, kind, status, operational_status,
	make, model, year, current_mileage, current_engine_hours,
	telematics_device_id, eld_device_id, assigned_driver_id, created_at, updated_at`

func (s *Store) getEquipment(ctx context.Context, db dbtx, company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT`+equipmentColumns+` FROM equipment WHERE id = ? AND company_id = ?`,
		id, company,
	)
	eq, err := scanEquipmentRow(row)
	if err == sql.ErrNoRows {
		return nil, fleet.ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return eq, nil
}

func (s *Store) ListEquipment(ctx context.Context, company fleet.CompanyID) ([]fleet.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEquipment(ctx, s.db, company)
}

func (s *Store) listEquipment(ctx context.Context, db dbtx, company fleet.CompanyID) ([]fleet.Equipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT`+equipmentColumns+` FROM equipment WHERE company_id = ? ORDER BY unit_number`,
		company,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var units []fleet.Equipment
	for rows.Next() {
		eq, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *eq)
	}
	return units, rows.Err()
}

func (s *Store) UpdateEquipmentReadings(ctx context.Context, eq *fleet.Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateEquipmentReadings(ctx, s.db, eq)
}

func (s *Store) updateEquipmentReadings(ctx context.Context, db dbtx, eq *fleet.Equipment) error {
	res, err := db.ExecContext(ctx, `
		UPDATE equipment
		SET current_mileage = ?, current_engine_hours = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		nullDecimal(eq.CurrentMileage), nullDecimal(eq.CurrentEngineHours),
		eq.UpdatedAt.Format(time.RFC3339),
		eq.ID, eq.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update equipment readings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fleet.ErrEquipmentNotFound
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEquipmentRow(row scanner) (*fleet.Equipment, error) {
	var (
		eq                      fleet.Equipment
		vin                     sql.NullString
		mk, model               sql.NullString
		year                    sql.NullInt64
		mileage, engineHours    sql.NullString
		telematics, eld, driver sql.NullString
		createdAt, updatedAt    string
	)

	err := row.Scan(
		&eq.ID, &eq.CompanyID, &eq.UnitNumber, &vin,
		&eq.Kind, &eq.Status, &eq.OperationalStatus,
		&mk, &model, &year, &mileage, &engineHours,
		&telematics, &eld, &driver, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	eq.VIN = vin.String
	eq.Make = mk.String
	eq.Model = model.String
	eq.Year = int(year.Int64)
	eq.CurrentMileage = parseNullDecimal(mileage)
	eq.CurrentEngineHours = parseNullDecimal(engineHours)
	eq.TelematicsDeviceID = telematics.String
	eq.EldDeviceID = eld.String
	eq.AssignedDriverID = driver.String
	eq.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	eq.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &eq, nil
}

// =============================================================================
// USAGE LEDGER (fleet.UsageStore) - append-only
// =============================================================================

func (s *Store) AppendUsage(ctx context.Context, ev *fleet.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendUsage(ctx, s.db, ev)
}

func (s *Store) appendUsage(ctx context.Context, db dbtx, ev *fleet.UsageEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO usage_events
		(id, equipment_id, company_id, occurred_at, odometer, engine_hours, source, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.EquipmentID, ev.CompanyID,
		ev.OccurredAt.Format(time.RFC3339),
		nullDecimal(ev.Odometer), nullDecimal(ev.EngineHours),
		ev.Source, ev.Note,
		ev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append usage event: %w", err)
	}
	return nil
}

func (s *Store) ListUsage(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID, limit int) ([]fleet.UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUsage(ctx, s.db, company, id, limit)
}

func (s *Store) listUsage(ctx context.Context, db dbtx, company fleet.CompanyID, id fleet.EquipmentID, limit int) ([]fleet.UsageEvent, error) {
	query := `
		SELECT id, equipment_id, company_id, occurred_at, odometer, engine_hours, source, note, created_at
		FROM usage_events
		WHERE equipment_id = ? AND company_id = ?
		ORDER BY occurred_at DESC, created_at DESC
	`
	args := []any{id, company}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	defer rows.Close()

	var events []fleet.UsageEvent
	for rows.Next() {
		var (
			ev                  fleet.UsageEvent
			occurredAt, created string
			odometer, hours     sql.NullString
			note                sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.EquipmentID, &ev.CompanyID, &occurredAt,
			&odometer, &hours, &ev.Source, &note, &created); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		ev.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
		ev.CreatedAt, _ = time.Parse(time.RFC3339, created)
		ev.Odometer = parseNullDecimal(odometer)
		ev.EngineHours = parseNullDecimal(hours)
		ev.Note = note.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// MAINTENANCE LEDGER (fleet.MaintenanceStore) - append-only
// =============================================================================

func (s *Store) AppendMaintenance(ctx context.Context, ev *fleet.MaintenanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendMaintenance(ctx, s.db, ev)
}

func (s *Store) appendMaintenance(ctx context.Context, db dbtx, ev *fleet.MaintenanceEvent) error {
	var nextDueDate any
	if ev.NextDueDate != nil {
		nextDueDate = ev.NextDueDate.Format(time.RFC3339)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO maintenance_events
		(id, equipment_id, company_id, service_type, service_date, odometer,
		 engine_hours, cost, note, next_due_date, next_due_mileage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.EquipmentID, ev.CompanyID, ev.ServiceType,
		ev.ServiceDate.Format(time.RFC3339),
		nullDecimal(ev.Odometer), nullDecimal(ev.EngineHours), nullDecimal(ev.Cost),
		ev.Note, nextDueDate, nullDecimal(ev.NextDueMileage),
		ev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append maintenance event: %w", err)
	}
	return nil
}

func (s *Store) ListMaintenance(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMaintenance(ctx, s.db, company, id)
}

func (s *Store) listMaintenance(ctx context.Context, db dbtx, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, equipment_id, company_id, service_type, service_date, odometer,
		       engine_hours, cost, note, next_due_date, next_due_mileage, created_at
		FROM maintenance_events
		WHERE equipment_id = ? AND company_id = ?
		ORDER BY service_date DESC, created_at DESC`,
		id, company,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance events: %w", err)
	}
	defer rows.Close()

	var events []fleet.MaintenanceEvent
	for rows.Next() {
		var (
			ev                        fleet.MaintenanceEvent
			serviceDate, created      string
			odometer, hours, cost     sql.NullString
			note                      sql.NullString
			nextDueDate, nextDueMiles sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.EquipmentID, &ev.CompanyID, &ev.ServiceType,
			&serviceDate, &odometer, &hours, &cost, &note,
			&nextDueDate, &nextDueMiles, &created); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance event: %w", err)
		}
		ev.ServiceDate, _ = time.Parse(time.RFC3339, serviceDate)
		ev.CreatedAt, _ = time.Parse(time.RFC3339, created)
		ev.Odometer = parseNullDecimal(odometer)
		ev.EngineHours = parseNullDecimal(hours)
		ev.Cost = parseNullDecimal(cost)
		ev.Note = note.String
		if nextDueDate.Valid {
			t, _ := time.Parse(time.RFC3339, nextDueDate.String)
			ev.NextDueDate = &t
		}
		ev.NextDueMileage = parseNullDecimal(nextDueMiles)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// FORECAST STORE (fleet.ForecastStore) - materialized view
// =============================================================================

// ReplaceForecasts is the only forecast mutation path: delete the whole set
// for the equipment, then insert the new one. Outside a WithTx closure it
// wraps itself in its own transaction so the "no partial set" invariant
// holds on every path.
func (s *Store) ReplaceForecasts(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.replaceForecasts(ctx, tx, company, id, forecasts); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) replaceForecasts(ctx context.Context, db dbtx, company fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM maintenance_forecasts WHERE equipment_id = ? AND company_id = ?`,
		id, company,
	); err != nil {
		return fmt.Errorf("failed to clear forecasts: %w", err)
	}

	for _, f := range forecasts {
		var projectedDate any
		if f.ProjectedDate != nil {
			projectedDate = f.ProjectedDate.Format(time.RFC3339)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO maintenance_forecasts
			(id, equipment_id, company_id, service_type, basis_event_id, status,
			 projected_date, projected_mileage, confidence, risk_score, notes, generated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.EquipmentID, f.CompanyID, f.ServiceType, f.BasisEventID, f.Status,
			projectedDate, nullDecimal(f.ProjectedMileage),
			f.Confidence, f.RiskScore, f.Notes,
			f.GeneratedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert forecast: %w", err)
		}
	}
	return nil
}

func (s *Store) ListForecasts(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listForecasts(ctx, s.db, company, id)
}

func (s *Store) listForecasts(ctx context.Context, db dbtx, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceForecast, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, equipment_id, company_id, service_type, basis_event_id, status,
		       projected_date, projected_mileage, confidence, risk_score, notes, generated_at
		FROM maintenance_forecasts
		WHERE equipment_id = ? AND company_id = ?
		ORDER BY service_type`,
		id, company,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []fleet.MaintenanceForecast
	for rows.Next() {
		var (
			f                      fleet.MaintenanceForecast
			projectedDate, mileage sql.NullString
			notes                  sql.NullString
			generatedAt            string
		)
		if err := rows.Scan(&f.ID, &f.EquipmentID, &f.CompanyID, &f.ServiceType,
			&f.BasisEventID, &f.Status, &projectedDate, &mileage,
			&f.Confidence, &f.RiskScore, &notes, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		if projectedDate.Valid {
			t, _ := time.Parse(time.RFC3339, projectedDate.String)
			f.ProjectedDate = &t
		}
		f.ProjectedMileage = parseNullDecimal(mileage)
		f.Notes = notes.String
		f.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (fleet.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction. All Store calls on the
// view fn receives run against the same *sql.Tx: reads observe writes
// flushed earlier in the closure.
func (s *Store) WithTx(ctx context.Context, fn func(fleet.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx, parent: s}); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) InsertEquipment(ctx context.Context, eq *fleet.Equipment) error {
	return ts.parent.insertEquipment(ctx, ts.tx, eq)
}

func (ts *txStore) GetEquipment(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	return ts.parent.getEquipment(ctx, ts.tx, company, id)
}

func (ts *txStore) ListEquipment(ctx context.Context, company fleet.CompanyID) ([]fleet.Equipment, error) {
	return ts.parent.listEquipment(ctx, ts.tx, company)
}

func (ts *txStore) UpdateEquipmentReadings(ctx context.Context, eq *fleet.Equipment) error {
	return ts.parent.updateEquipmentReadings(ctx, ts.tx, eq)
}

func (ts *txStore) AppendUsage(ctx context.Context, ev *fleet.UsageEvent) error {
	return ts.parent.appendUsage(ctx, ts.tx, ev)
}

func (ts *txStore) ListUsage(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID, limit int) ([]fleet.UsageEvent, error) {
	return ts.parent.listUsage(ctx, ts.tx, company, id, limit)
}

func (ts *txStore) AppendMaintenance(ctx context.Context, ev *fleet.MaintenanceEvent) error {
	return ts.parent.appendMaintenance(ctx, ts.tx, ev)
}

func (ts *txStore) ListMaintenance(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceEvent, error) {
	return ts.parent.listMaintenance(ctx, ts.tx, company, id)
}

func (ts *txStore) ReplaceForecasts(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) error {
	return ts.parent.replaceForecasts(ctx, ts.tx, company, id, forecasts)
}

func (ts *txStore) ListForecasts(ctx context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceForecast, error) {
	return ts.parent.listForecasts(ctx, ts.tx, company, id)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(s sql.NullString) *decimal.Decimal {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
