/*
handlers_test.go - HTTP surface tests

Exercises the router end to end against the in-memory store: tenancy
header enforcement, status code mapping, and the register/record/forecast
flow over the wire.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/maintenance-engine/api"
	"github.com/warp/maintenance-engine/fleet"
	memstore "github.com/warp/maintenance-engine/fleet/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng := fleet.NewEngine(memstore.NewTxMemory(), fleet.DefaultPolicies(), zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(eng, zerolog.Nop())))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, company string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if company != "" {
		req.Header.Set("X-Company-ID", company)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func registerUnit(t *testing.T, srv *httptest.Server, company, unit string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/equipment", company, map[string]any{
		"unit_number": unit,
		"kind":        "TRACTOR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	decodeBody(t, resp, &created)
	return created["id"].(string)
}

// =============================================================================
// TENANCY TESTS
// =============================================================================

func TestMissingCompanyHeader_Rejected(t *testing.T) {
	// GIVEN: A request without X-Company-ID
	// WHEN: Hitting any API route
	// THEN: 400 with the MISSING_COMPANY code, before any engine work

	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/equipment", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body api.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "MISSING_COMPANY", body.Code)
}

func TestCompanyScoping_OtherTenantSees404(t *testing.T) {
	// GIVEN: Equipment registered by co-1
	// WHEN: co-2 fetches it by id
	// THEN: 404, identical to a nonexistent id

	srv := newTestServer(t)
	id := registerUnit(t, srv, "co-1", "T-100")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/equipment/"+id, "co-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/equipment/"+id, "co-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// STATUS CODE MAPPING TESTS
// =============================================================================

func TestRegisterEquipment_Duplicate_409(t *testing.T) {
	// GIVEN: Unit T-100 already registered
	// WHEN: Registering it again for the same company
	// THEN: 409 CONFLICT

	srv := newTestServer(t)
	registerUnit(t, srv, "co-1", "T-100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/equipment", "co-1", map[string]any{
		"unit_number": "T-100",
		"kind":        "TRACTOR",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body api.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestRegisterEquipment_InvalidKind_400(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/equipment", "co-1", map[string]any{
		"unit_number": "T-100",
		"kind":        "FORKLIFT",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordUsage_BadDecimal_400(t *testing.T) {
	// GIVEN: A registered unit
	// WHEN: Posting a usage event with a non-numeric odometer
	// THEN: 400 before anything is written

	srv := newTestServer(t)
	id := registerUnit(t, srv, "co-1", "T-100")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/equipment/%s/usage", srv.URL, id), "co-1", map[string]any{
		"odometer": "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordUsage_UnknownEquipment_404(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/equipment/eq-missing/usage", "co-1", map[string]any{
		"odometer": "100000",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// END-TO-END FLOW TESTS
// =============================================================================

func TestMaintenanceFlow_ForecastOverWire(t *testing.T) {
	// GIVEN: A registered tractor with usage history establishing 100 mi/day
	// WHEN: Logging an oil change and fetching forecasts
	// THEN: One forecast with the decimal fields rendered as strings

	srv := newTestServer(t)
	id := registerUnit(t, srv, "co-1", "T-100")
	base := fmt.Sprintf("%s/api/equipment/%s", srv.URL, id)

	day0 := time.Now().UTC().AddDate(0, 0, -10)
	resp := doJSON(t, http.MethodPost, base+"/usage", "co-1", map[string]any{
		"occurred_at": day0.Format(time.RFC3339),
		"odometer":    "100000",
		"source":      "telematics",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/usage", "co-1", map[string]any{
		"odometer": "101000",
		"source":   "telematics",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/maintenance", "co-1", map[string]any{
		"service_type": "OIL_CHANGE",
		"service_date": day0.Format(time.RFC3339),
		"odometer":     "100000",
		"cost":         "425.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/forecasts", "co-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var forecasts []map[string]any
	decodeBody(t, resp, &forecasts)
	require.Len(t, forecasts, 1)

	fc := forecasts[0]
	assert.Equal(t, "OIL_CHANGE", fc["service_type"])
	assert.Equal(t, "115000", fc["projected_mileage"])
	assert.Equal(t, 0.9, fc["confidence"])
	assert.NotEmpty(t, fc["projected_date"])
	assert.NotEmpty(t, fc["id"])
}

func TestRefreshForecasts_NewIdentitySameValues(t *testing.T) {
	// GIVEN: A unit with a stored forecast
	// WHEN: Posting two refreshes back to back
	// THEN: Same projected values, different row ids

	srv := newTestServer(t)
	id := registerUnit(t, srv, "co-1", "T-100")
	base := fmt.Sprintf("%s/api/equipment/%s", srv.URL, id)

	resp := doJSON(t, http.MethodPost, base+"/maintenance", "co-1", map[string]any{
		"service_type": "TIRE_ROTATION",
		"service_date": time.Now().UTC().Format(time.RFC3339),
		"odometer":     "100000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	refresh := func() map[string]any {
		resp := doJSON(t, http.MethodPost, base+"/forecasts/refresh", "co-1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []map[string]any
		decodeBody(t, resp, &out)
		require.Len(t, out, 1)
		return out[0]
	}

	first := refresh()
	second := refresh()
	assert.Equal(t, first["projected_date"], second["projected_date"])
	assert.Equal(t, first["projected_mileage"], second["projected_mileage"])
	assert.Equal(t, first["status"], second["status"])
	assert.NotEqual(t, first["id"], second["id"])
}

func TestListEquipment_EmbedsLedgers(t *testing.T) {
	// GIVEN: A unit with one usage event
	// WHEN: Listing the company's equipment
	// THEN: The row embeds usage, maintenance, and forecast arrays

	srv := newTestServer(t)
	id := registerUnit(t, srv, "co-1", "T-100")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/equipment/%s/usage", srv.URL, id), "co-1", map[string]any{
		"odometer": "100000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/equipment", "co-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []map[string]any
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "T-100", rows[0]["unit_number"])
	assert.Len(t, rows[0]["usage"], 1)
	assert.Empty(t, rows[0]["maintenance"])
	assert.Equal(t, "100000", rows[0]["current_mileage"])
}
