package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/maintenance-engine/fleet"
	"github.com/warp/maintenance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEquipment(t *testing.T, store *sqlite.Store, company fleet.CompanyID, id fleet.EquipmentID, unit, vin string) *fleet.Equipment {
	t.Helper()
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	eq := &fleet.Equipment{
		ID:                id,
		CompanyID:         company,
		UnitNumber:        unit,
		VIN:               vin,
		Kind:              fleet.KindTractor,
		Status:            fleet.StatusActive,
		OperationalStatus: fleet.OpAvailable,
		Make:              "Freightliner",
		Model:             "Cascadia",
		Year:              2023,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.InsertEquipment(context.Background(), eq))
	return eq
}

// =============================================================================
// UNIQUENESS CONSTRAINT TESTS
// =============================================================================

func TestInsertEquipment_DuplicateUnitNumber(t *testing.T) {
	// GIVEN: Unit T-100 registered for co-1
	// WHEN: Inserting another T-100 for co-1
	// THEN: The UNIQUE index violation is translated to DuplicateUnitError

	store := newTestStore(t)
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	now := time.Now().UTC()
	err := store.InsertEquipment(context.Background(), &fleet.Equipment{
		ID: "eq-2", CompanyID: "co-1", UnitNumber: "T-100",
		Kind: fleet.KindTractor, Status: fleet.StatusActive,
		OperationalStatus: fleet.OpAvailable,
		CreatedAt:         now, UpdatedAt: now,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fleet.ErrDuplicateUnit)

	var dup *fleet.DuplicateUnitError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "T-100", dup.UnitNumber)
}

func TestInsertEquipment_DuplicateVIN(t *testing.T) {
	// GIVEN: A unit registered with a VIN for co-1
	// WHEN: Inserting a different unit number with the same VIN
	// THEN: Translated to DuplicateVINError

	store := newTestStore(t)
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "1XKAD49X1KJ211001")

	now := time.Now().UTC()
	err := store.InsertEquipment(context.Background(), &fleet.Equipment{
		ID: "eq-2", CompanyID: "co-1", UnitNumber: "T-101", VIN: "1XKAD49X1KJ211001",
		Kind: fleet.KindTractor, Status: fleet.StatusActive,
		OperationalStatus: fleet.OpAvailable,
		CreatedAt:         now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, fleet.ErrDuplicateVIN)
}

func TestInsertEquipment_CrossCompanyNoConflict(t *testing.T) {
	// GIVEN: T-100 with a VIN registered for co-1
	// WHEN: co-2 registers the same unit number and VIN
	// THEN: Both rows exist (the indexes are company-scoped)

	store := newTestStore(t)
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "1XKAD49X1KJ211001")
	seedEquipment(t, store, "co-2", "eq-2", "T-100", "1XKAD49X1KJ211001")
}

func TestInsertEquipment_EmptyVINsDoNotCollide(t *testing.T) {
	// GIVEN: Two units without VINs for the same company
	// WHEN: Inserting both
	// THEN: The partial index skips empty VINs; no conflict

	store := newTestStore(t)
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")
	seedEquipment(t, store, "co-1", "eq-2", "T-101", "")
}

// =============================================================================
// SCOPE TESTS
// =============================================================================

func TestGetEquipment_WrongCompany_NotFound(t *testing.T) {
	// GIVEN: Equipment owned by co-1
	// WHEN: co-2 fetches it by id
	// THEN: Not found; cross-tenant reads are indistinguishable from missing

	store := newTestStore(t)
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	_, err := store.GetEquipment(context.Background(), "co-2", "eq-1")
	assert.ErrorIs(t, err, fleet.ErrEquipmentNotFound)

	got, err := store.GetEquipment(context.Background(), "co-1", "eq-1")
	require.NoError(t, err)
	assert.Equal(t, "T-100", got.UnitNumber)
}

func TestEquipmentRoundTrip_PreservesDecimals(t *testing.T) {
	// GIVEN: A unit whose readings carry fractional precision
	// WHEN: Updating readings and reading the row back
	// THEN: Values survive the TEXT column round trip exactly

	store := newTestStore(t)
	ctx := context.Background()
	eq := seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	mileage := decimal.RequireFromString("100123.7")
	hours := decimal.RequireFromString("4210.25")
	eq.CurrentMileage = &mileage
	eq.CurrentEngineHours = &hours
	eq.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateEquipmentReadings(ctx, eq))

	got, err := store.GetEquipment(ctx, "co-1", "eq-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentMileage)
	assert.True(t, got.CurrentMileage.Equal(mileage), "got %s", got.CurrentMileage)
	require.NotNil(t, got.CurrentEngineHours)
	assert.True(t, got.CurrentEngineHours.Equal(hours), "got %s", got.CurrentEngineHours)
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestListUsage_NewestFirstWithLimit(t *testing.T) {
	// GIVEN: Three usage events on consecutive days
	// WHEN: Listing with and without a limit
	// THEN: Newest-first order; the limit keeps the most recent events

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	day0 := fleet.NewDate(2026, time.February, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendUsage(ctx, &fleet.UsageEvent{
			ID:          fleet.EventID(string(rune('a' + i))),
			EquipmentID: "eq-1",
			CompanyID:   "co-1",
			OccurredAt:  day0.AddDate(0, 0, i),
			Odometer:    fleet.Miles(100000 + float64(i)*250),
			Source:      fleet.SourceTelematics,
			CreatedAt:   day0.AddDate(0, 0, i),
		}))
	}

	all, err := store.ListUsage(ctx, "co-1", "eq-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, fleet.EventID("c"), all[0].ID)
	assert.Equal(t, fleet.EventID("a"), all[2].ID)

	windowed, err := store.ListUsage(ctx, "co-1", "eq-1", 2)
	require.NoError(t, err)
	require.Len(t, windowed, 2)
	assert.Equal(t, fleet.EventID("c"), windowed[0].ID)
	assert.Equal(t, fleet.EventID("b"), windowed[1].ID)
}

func TestMaintenanceRoundTrip_PreservesOverrides(t *testing.T) {
	// GIVEN: A maintenance event carrying explicit next-due overrides
	// WHEN: Appending and listing
	// THEN: Nullable override columns round-trip intact

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	nextDue := fleet.NewDate(2026, time.June, 1)
	cost := decimal.RequireFromString("449.99")
	ev := &fleet.MaintenanceEvent{
		ID:             "m-1",
		EquipmentID:    "eq-1",
		CompanyID:      "co-1",
		ServiceType:    "OIL_CHANGE",
		ServiceDate:    fleet.NewDate(2026, time.February, 1),
		Odometer:       fleet.Miles(100000),
		Cost:           &cost,
		Note:           "full synthetic",
		NextDueDate:    &nextDue,
		NextDueMileage: fleet.Miles(115000),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.AppendMaintenance(ctx, ev))

	events, err := store.ListMaintenance(ctx, "co-1", "eq-1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	require.NotNil(t, got.NextDueDate)
	assert.Equal(t, nextDue, got.NextDueDate.UTC())
	require.NotNil(t, got.NextDueMileage)
	assert.True(t, got.NextDueMileage.Equal(decimal.NewFromInt(115000)))
	require.NotNil(t, got.Cost)
	assert.True(t, got.Cost.Equal(cost))
	assert.Equal(t, "full synthetic", got.Note)
}

// =============================================================================
// FORECAST REPLACEMENT TESTS
// =============================================================================

func testForecast(id fleet.ForecastID, serviceType string) fleet.MaintenanceForecast {
	date := fleet.NewDate(2026, time.May, 1)
	return fleet.MaintenanceForecast{
		ID:            id,
		EquipmentID:   "eq-1",
		CompanyID:     "co-1",
		ServiceType:   serviceType,
		BasisEventID:  "m-1",
		Status:        fleet.ForecastOK,
		ProjectedDate: &date,
		Confidence:    0.9,
		RiskScore:     0.2,
		Notes:         "On track",
		GeneratedAt:   time.Now().UTC(),
	}
}

func TestReplaceForecasts_DropsStaleRows(t *testing.T) {
	// GIVEN: A stored two-forecast set
	// WHEN: Replacing with a one-forecast set
	// THEN: The stale service type is gone, not merged

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	require.NoError(t, store.ReplaceForecasts(ctx, "co-1", "eq-1", []fleet.MaintenanceForecast{
		testForecast("f-1", "OIL_CHANGE"),
		testForecast("f-2", "TIRE_ROTATION"),
	}))
	require.NoError(t, store.ReplaceForecasts(ctx, "co-1", "eq-1", []fleet.MaintenanceForecast{
		testForecast("f-3", "OIL_CHANGE"),
	}))

	forecasts, err := store.ListForecasts(ctx, "co-1", "eq-1")
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.Equal(t, fleet.ForecastID("f-3"), forecasts[0].ID)
	assert.Equal(t, "OIL_CHANGE", forecasts[0].ServiceType)
}

func TestReplaceForecasts_EmptySetClears(t *testing.T) {
	// GIVEN: A stored forecast set
	// WHEN: Replacing with an empty set
	// THEN: Nothing remains

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	require.NoError(t, store.ReplaceForecasts(ctx, "co-1", "eq-1", []fleet.MaintenanceForecast{
		testForecast("f-1", "OIL_CHANGE"),
	}))
	require.NoError(t, store.ReplaceForecasts(ctx, "co-1", "eq-1", nil))

	forecasts, err := store.ListForecasts(ctx, "co-1", "eq-1")
	require.NoError(t, err)
	assert.Empty(t, forecasts)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTx_ReadsSeeInTransactionWrites(t *testing.T) {
	// GIVEN: An open transaction that appends a usage event
	// WHEN: Listing usage inside the same closure
	// THEN: The append is visible before commit

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	err := store.WithTx(ctx, func(s fleet.Store) error {
		if err := s.AppendUsage(ctx, &fleet.UsageEvent{
			ID: "u-1", EquipmentID: "eq-1", CompanyID: "co-1",
			OccurredAt: fleet.NewDate(2026, time.February, 1),
			Odometer:   fleet.Miles(100000),
			Source:     fleet.SourceManual,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}

		events, err := s.ListUsage(ctx, "co-1", "eq-1", 0)
		if err != nil {
			return err
		}
		require.Len(t, events, 1, "append must be visible inside its own transaction")
		return nil
	})
	require.NoError(t, err)
}

func TestWithTx_ErrorRollsBackEverything(t *testing.T) {
	// GIVEN: A closure that appends a usage event and replaces forecasts
	// WHEN: The closure returns an error
	// THEN: Neither write survives

	store := newTestStore(t)
	ctx := context.Background()
	seedEquipment(t, store, "co-1", "eq-1", "T-100", "")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s fleet.Store) error {
		if err := s.AppendUsage(ctx, &fleet.UsageEvent{
			ID: "u-1", EquipmentID: "eq-1", CompanyID: "co-1",
			OccurredAt: fleet.NewDate(2026, time.February, 1),
			Odometer:   fleet.Miles(100000),
			Source:     fleet.SourceManual,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := s.ReplaceForecasts(ctx, "co-1", "eq-1", []fleet.MaintenanceForecast{
			testForecast("f-1", "OIL_CHANGE"),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	events, err := store.ListUsage(ctx, "co-1", "eq-1", 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	forecasts, err := store.ListForecasts(ctx, "co-1", "eq-1")
	require.NoError(t, err)
	assert.Empty(t, forecasts)
}
