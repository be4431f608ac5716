/*
handlers.go - HTTP handlers for the forecasting engine

PURPOSE:
  Thin translation layer between HTTP and the fleet.Engine. Handlers decode
  the request, resolve the company scope, call exactly one engine
  operation, and encode the result. No business logic lives here.

TENANCY:
  Every route requires the X-Company-ID header. Requests without it are
  rejected with 400 before any engine call.

ERROR MAPPING:
  fleet.IsConflict  -> 409 (duplicate unit number / VIN)
  fleet.IsNotFound  -> 404 (missing or out-of-scope equipment)
  fleet.IsInvalid   -> 400 (malformed input)
  anything else     -> 500

SEE ALSO:
  - dto.go: Wire shapes and conversions
  - server.go: Route registration
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/maintenance-engine/fleet"
)

const companyHeader = "X-Company-ID"

// Handler serves the forecasting engine over HTTP.
type Handler struct {
	engine *fleet.Engine
	log    zerolog.Logger
}

// NewHandler creates the handler set.
func NewHandler(engine *fleet.Engine, log zerolog.Logger) *Handler {
	return &Handler{engine: engine, log: log}
}

// =============================================================================
// EQUIPMENT REGISTRY
// =============================================================================

// RegisterEquipment handles POST /api/equipment.
func (h *Handler) RegisterEquipment(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}

	var req registerEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}

	eq, err := h.engine.RegisterEquipment(r.Context(), company, fleet.RegisterEquipmentInput{
		UnitNumber:         req.UnitNumber,
		VIN:                req.VIN,
		Kind:               fleet.EquipmentKind(req.Kind),
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		TelematicsDeviceID: req.TelematicsDeviceID,
		EldDeviceID:        req.EldDeviceID,
		AssignedDriverID:   req.AssignedDriverID,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toEquipmentResponse(*eq))
}

// ListEquipment handles GET /api/equipment.
func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}

	details, err := h.engine.ListEquipment(r.Context(), company)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]equipmentDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, equipmentDetailResponse{
			equipmentResponse: toEquipmentResponse(d.Equipment),
			Usage:             toUsageResponses(d.Usage),
			Maintenance:       toMaintenanceResponses(d.Maintenance),
			Forecasts:         toForecastResponses(d.Forecasts),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// GetEquipment handles GET /api/equipment/{equipmentID}.
func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	eq, err := h.engine.GetEquipment(r.Context(), company, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEquipmentResponse(*eq))
}

// =============================================================================
// USAGE LEDGER
// =============================================================================

// RecordUsage handles POST /api/equipment/{equipmentID}/usage.
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	var req recordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}

	odometer, err := parseDecimal("odometer", req.Odometer)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	engineHours, err := parseDecimal("engine_hours", req.EngineHours)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	in := fleet.RecordUsageInput{
		Odometer:    odometer,
		EngineHours: engineHours,
		Source:      fleet.UsageSource(req.Source),
		Note:        req.Note,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}

	ev, err := h.engine.RecordUsage(r.Context(), company, id, in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toUsageResponse(*ev))
}

// ListUsage handles GET /api/equipment/{equipmentID}/usage.
func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	events, err := h.engine.ListUsage(r.Context(), company, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUsageResponses(events))
}

// =============================================================================
// MAINTENANCE LEDGER
// =============================================================================

// RecordMaintenance handles POST /api/equipment/{equipmentID}/maintenance.
func (h *Handler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	var req recordMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}

	odometer, err := parseDecimal("odometer", req.Odometer)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	engineHours, err := parseDecimal("engine_hours", req.EngineHours)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	cost, err := parseDecimal("cost", req.Cost)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	nextDueMileage, err := parseDecimal("next_due_mileage", req.NextDueMileage)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	ev, err := h.engine.RecordMaintenance(r.Context(), company, id, fleet.RecordMaintenanceInput{
		ServiceType:    req.ServiceType,
		ServiceDate:    req.ServiceDate,
		Odometer:       odometer,
		EngineHours:    engineHours,
		Cost:           cost,
		Note:           req.Note,
		NextDueDate:    req.NextDueDate,
		NextDueMileage: nextDueMileage,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toMaintenanceResponse(*ev))
}

// ListMaintenance handles GET /api/equipment/{equipmentID}/maintenance.
func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	events, err := h.engine.ListMaintenance(r.Context(), company, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMaintenanceResponses(events))
}

// =============================================================================
// FORECASTS
// =============================================================================

// ListForecasts handles GET /api/equipment/{equipmentID}/forecasts.
func (h *Handler) ListForecasts(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	forecasts, err := h.engine.ListForecasts(r.Context(), company, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toForecastResponses(forecasts))
}

// RefreshForecasts handles POST /api/equipment/{equipmentID}/forecasts/refresh.
func (h *Handler) RefreshForecasts(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	id := fleet.EquipmentID(chi.URLParam(r, "equipmentID"))

	forecasts, err := h.engine.RefreshForecasts(r.Context(), company, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toForecastResponses(forecasts))
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// company resolves the tenant scope or writes a 400 and returns ok=false.
func (h *Handler) company(w http.ResponseWriter, r *http.Request) (fleet.CompanyID, bool) {
	company := r.Header.Get(companyHeader)
	if company == "" {
		h.writeError(w, http.StatusBadRequest, "missing "+companyHeader+" header", "MISSING_COMPANY")
		return "", false
	}
	return fleet.CompanyID(company), true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case fleet.IsConflict(err):
		h.writeError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case fleet.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case fleet.IsInvalid(err):
		h.writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		h.log.Error().Err(err).Msg("request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg, code string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
