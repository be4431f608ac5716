// Package store provides fleet.TxStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/maintenance-engine/fleet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	equipment   map[fleet.EquipmentID]fleet.Equipment
	usage       map[fleet.EquipmentID][]fleet.UsageEvent       // newest first
	maintenance map[fleet.EquipmentID][]fleet.MaintenanceEvent // newest first
	forecasts   map[fleet.EquipmentID][]fleet.MaintenanceForecast
}

func NewMemory() *Memory {
	return &Memory{
		equipment:   make(map[fleet.EquipmentID]fleet.Equipment),
		usage:       make(map[fleet.EquipmentID][]fleet.UsageEvent),
		maintenance: make(map[fleet.EquipmentID][]fleet.MaintenanceEvent),
		forecasts:   make(map[fleet.EquipmentID][]fleet.MaintenanceForecast),
	}
}

// -----------------------------------------------------------------------------
// Equipment registry

func (m *Memory) InsertEquipment(_ context.Context, eq *fleet.Equipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertEquipmentLocked(eq)
}

func (m *Memory) insertEquipmentLocked(eq *fleet.Equipment) error {
	for _, existing := range m.equipment {
		if existing.CompanyID != eq.CompanyID {
			continue
		}
		if existing.UnitNumber == eq.UnitNumber {
			return &fleet.DuplicateUnitError{CompanyID: eq.CompanyID, UnitNumber: eq.UnitNumber}
		}
		if eq.VIN != "" && existing.VIN == eq.VIN {
			return &fleet.DuplicateVINError{CompanyID: eq.CompanyID, VIN: eq.VIN}
		}
	}
	m.equipment[eq.ID] = *eq
	return nil
}

func (m *Memory) GetEquipment(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEquipmentLocked(company, id)
}

func (m *Memory) getEquipmentLocked(company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	eq, ok := m.equipment[id]
	if !ok || eq.CompanyID != company {
		return nil, fleet.ErrEquipmentNotFound
	}
	cp := eq
	return &cp, nil
}

func (m *Memory) ListEquipment(_ context.Context, company fleet.CompanyID) ([]fleet.Equipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []fleet.Equipment
	for _, eq := range m.equipment {
		if eq.CompanyID == company {
			out = append(out, eq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

func (m *Memory) UpdateEquipmentReadings(_ context.Context, eq *fleet.Equipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateReadingsLocked(eq)
}

func (m *Memory) updateReadingsLocked(eq *fleet.Equipment) error {
	existing, ok := m.equipment[eq.ID]
	if !ok || existing.CompanyID != eq.CompanyID {
		return fleet.ErrEquipmentNotFound
	}
	existing.CurrentMileage = eq.CurrentMileage
	existing.CurrentEngineHours = eq.CurrentEngineHours
	existing.UpdatedAt = eq.UpdatedAt
	m.equipment[eq.ID] = existing
	return nil
}

// -----------------------------------------------------------------------------
// Usage ledger (append-only)

func (m *Memory) AppendUsage(_ context.Context, ev *fleet.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendUsageLocked(ev)
	return nil
}

func (m *Memory) appendUsageLocked(ev *fleet.UsageEvent) {
	events := m.usage[ev.EquipmentID]

	// Insert keeping newest-first order by OccurredAt.
	i := sort.Search(len(events), func(i int) bool {
		return events[i].OccurredAt.Before(ev.OccurredAt)
	})
	events = append(events, fleet.UsageEvent{})
	copy(events[i+1:], events[i:])
	events[i] = *ev
	m.usage[ev.EquipmentID] = events
}

func (m *Memory) ListUsage(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID, limit int) ([]fleet.UsageEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listUsageLocked(company, id, limit), nil
}

func (m *Memory) listUsageLocked(company fleet.CompanyID, id fleet.EquipmentID, limit int) []fleet.UsageEvent {
	var out []fleet.UsageEvent
	for _, ev := range m.usage[id] {
		if ev.CompanyID != company {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Maintenance ledger (append-only)

func (m *Memory) AppendMaintenance(_ context.Context, ev *fleet.MaintenanceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendMaintenanceLocked(ev)
	return nil
}

func (m *Memory) appendMaintenanceLocked(ev *fleet.MaintenanceEvent) {
	events := m.maintenance[ev.EquipmentID]
	i := sort.Search(len(events), func(i int) bool {
		return events[i].ServiceDate.Before(ev.ServiceDate)
	})
	events = append(events, fleet.MaintenanceEvent{})
	copy(events[i+1:], events[i:])
	events[i] = *ev
	m.maintenance[ev.EquipmentID] = events
}

func (m *Memory) ListMaintenance(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listMaintenanceLocked(company, id), nil
}

func (m *Memory) listMaintenanceLocked(company fleet.CompanyID, id fleet.EquipmentID) []fleet.MaintenanceEvent {
	var out []fleet.MaintenanceEvent
	for _, ev := range m.maintenance[id] {
		if ev.CompanyID == company {
			out = append(out, ev)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Forecast store (materialized view)

func (m *Memory) ReplaceForecasts(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceForecastsLocked(company, id, forecasts)
	return nil
}

func (m *Memory) replaceForecastsLocked(_ fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) {
	m.forecasts[id] = append([]fleet.MaintenanceForecast(nil), forecasts...)
}

func (m *Memory) ListForecasts(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceForecast, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []fleet.MaintenanceForecast
	for _, f := range m.forecasts[id] {
		if f.CompanyID == company {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a snapshot + restore on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(fleet.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	view := &txMemoryView{parent: tm}

	if err := fn(view); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	equipment   map[fleet.EquipmentID]fleet.Equipment
	usage       map[fleet.EquipmentID][]fleet.UsageEvent
	maintenance map[fleet.EquipmentID][]fleet.MaintenanceEvent
	forecasts   map[fleet.EquipmentID][]fleet.MaintenanceForecast
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		equipment:   make(map[fleet.EquipmentID]fleet.Equipment, len(tm.equipment)),
		usage:       make(map[fleet.EquipmentID][]fleet.UsageEvent, len(tm.usage)),
		maintenance: make(map[fleet.EquipmentID][]fleet.MaintenanceEvent, len(tm.maintenance)),
		forecasts:   make(map[fleet.EquipmentID][]fleet.MaintenanceForecast, len(tm.forecasts)),
	}
	for k, v := range tm.equipment {
		s.equipment[k] = v
	}
	for k, v := range tm.usage {
		s.usage[k] = append([]fleet.UsageEvent(nil), v...)
	}
	for k, v := range tm.maintenance {
		s.maintenance[k] = append([]fleet.MaintenanceEvent(nil), v...)
	}
	for k, v := range tm.forecasts {
		s.forecasts[k] = append([]fleet.MaintenanceForecast(nil), v...)
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.equipment = s.equipment
	tm.usage = s.usage
	tm.maintenance = s.maintenance
	tm.forecasts = s.forecasts
}

// txMemoryView routes Store calls to the parent without re-locking; the
// parent's mutex is held for the duration of WithTx.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) InsertEquipment(_ context.Context, eq *fleet.Equipment) error {
	return tv.parent.insertEquipmentLocked(eq)
}

func (tv *txMemoryView) GetEquipment(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) (*fleet.Equipment, error) {
	return tv.parent.getEquipmentLocked(company, id)
}

func (tv *txMemoryView) ListEquipment(_ context.Context, company fleet.CompanyID) ([]fleet.Equipment, error) {
	var out []fleet.Equipment
	for _, eq := range tv.parent.equipment {
		if eq.CompanyID == company {
			out = append(out, eq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

func (tv *txMemoryView) UpdateEquipmentReadings(_ context.Context, eq *fleet.Equipment) error {
	return tv.parent.updateReadingsLocked(eq)
}

func (tv *txMemoryView) AppendUsage(_ context.Context, ev *fleet.UsageEvent) error {
	tv.parent.appendUsageLocked(ev)
	return nil
}

func (tv *txMemoryView) ListUsage(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID, limit int) ([]fleet.UsageEvent, error) {
	return tv.parent.listUsageLocked(company, id, limit), nil
}

func (tv *txMemoryView) AppendMaintenance(_ context.Context, ev *fleet.MaintenanceEvent) error {
	tv.parent.appendMaintenanceLocked(ev)
	return nil
}

func (tv *txMemoryView) ListMaintenance(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceEvent, error) {
	return tv.parent.listMaintenanceLocked(company, id), nil
}

func (tv *txMemoryView) ReplaceForecasts(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID, forecasts []fleet.MaintenanceForecast) error {
	tv.parent.replaceForecastsLocked(company, id, forecasts)
	return nil
}

func (tv *txMemoryView) ListForecasts(_ context.Context, company fleet.CompanyID, id fleet.EquipmentID) ([]fleet.MaintenanceForecast, error) {
	var out []fleet.MaintenanceForecast
	for _, f := range tv.parent.forecasts[id] {
		if f.CompanyID == company {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out, nil
}
