/*
dto.go - Wire types for the HTTP API

PURPOSE:
  JSON request/response shapes and their conversions to/from the fleet
  domain types. Mileage, engine hours, and cost cross the wire as decimal
  strings; dates as RFC 3339 timestamps.

CONVENTIONS:
  - Optional numeric fields are *string on requests, omitted when absent
  - Responses render nil decimals/dates as JSON null
  - Every error body is {"error": "...", "code": "..."}

SEE ALSO:
  - handlers.go: The handlers these shapes serve
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/maintenance-engine/fleet"
)

// =============================================================================
// REQUESTS
// =============================================================================

type registerEquipmentRequest struct {
	UnitNumber         string `json:"unit_number"`
	VIN                string `json:"vin,omitempty"`
	Kind               string `json:"kind"`
	Make               string `json:"make,omitempty"`
	Model              string `json:"model,omitempty"`
	Year               int    `json:"year,omitempty"`
	TelematicsDeviceID string `json:"telematics_device_id,omitempty"`
	EldDeviceID        string `json:"eld_device_id,omitempty"`
	AssignedDriverID   string `json:"assigned_driver_id,omitempty"`
}

type recordUsageRequest struct {
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
	Odometer    *string    `json:"odometer,omitempty"`
	EngineHours *string    `json:"engine_hours,omitempty"`
	Source      string     `json:"source,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type recordMaintenanceRequest struct {
	ServiceType    string     `json:"service_type"`
	ServiceDate    time.Time  `json:"service_date"`
	Odometer       *string    `json:"odometer,omitempty"`
	EngineHours    *string    `json:"engine_hours,omitempty"`
	Cost           *string    `json:"cost,omitempty"`
	Note           string     `json:"note,omitempty"`
	NextDueDate    *time.Time `json:"next_due_date,omitempty"`
	NextDueMileage *string    `json:"next_due_mileage,omitempty"`
}

// parseDecimal converts an optional wire decimal string.
func parseDecimal(field string, s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid decimal: %q", fleet.ErrInvalidInput, field, *s)
	}
	return &d, nil
}

// =============================================================================
// RESPONSES
// =============================================================================

type equipmentResponse struct {
	ID                 string  `json:"id"`
	CompanyID          string  `json:"company_id"`
	UnitNumber         string  `json:"unit_number"`
	VIN                string  `json:"vin,omitempty"`
	Kind               string  `json:"kind"`
	Status             string  `json:"status"`
	OperationalStatus  string  `json:"operational_status"`
	Make               string  `json:"make,omitempty"`
	Model              string  `json:"model,omitempty"`
	Year               int     `json:"year,omitempty"`
	CurrentMileage     *string `json:"current_mileage"`
	CurrentEngineHours *string `json:"current_engine_hours"`
	TelematicsDeviceID string  `json:"telematics_device_id,omitempty"`
	EldDeviceID        string  `json:"eld_device_id,omitempty"`
	AssignedDriverID   string  `json:"assigned_driver_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type usageEventResponse struct {
	ID          string  `json:"id"`
	EquipmentID string  `json:"equipment_id"`
	OccurredAt  string  `json:"occurred_at"`
	Odometer    *string `json:"odometer"`
	EngineHours *string `json:"engine_hours"`
	Source      string  `json:"source"`
	Note        string  `json:"note,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type maintenanceEventResponse struct {
	ID             string  `json:"id"`
	EquipmentID    string  `json:"equipment_id"`
	ServiceType    string  `json:"service_type"`
	ServiceDate    string  `json:"service_date"`
	Odometer       *string `json:"odometer"`
	EngineHours    *string `json:"engine_hours"`
	Cost           *string `json:"cost"`
	Note           string  `json:"note,omitempty"`
	NextDueDate    *string `json:"next_due_date"`
	NextDueMileage *string `json:"next_due_mileage"`
	CreatedAt      string  `json:"created_at"`
}

type forecastResponse struct {
	ID               string  `json:"id"`
	EquipmentID      string  `json:"equipment_id"`
	ServiceType      string  `json:"service_type"`
	BasisEventID     string  `json:"basis_event_id"`
	Status           string  `json:"status"`
	ProjectedDate    *string `json:"projected_date"`
	ProjectedMileage *string `json:"projected_mileage"`
	Confidence       float64 `json:"confidence"`
	RiskScore        float64 `json:"risk_score"`
	Notes            string  `json:"notes,omitempty"`
	GeneratedAt      string  `json:"generated_at"`
}

type equipmentDetailResponse struct {
	equipmentResponse
	Usage       []usageEventResponse       `json:"usage"`
	Maintenance []maintenanceEventResponse `json:"maintenance"`
	Forecasts   []forecastResponse         `json:"forecasts"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func toEquipmentResponse(eq fleet.Equipment) equipmentResponse {
	return equipmentResponse{
		ID:                 string(eq.ID),
		CompanyID:          string(eq.CompanyID),
		UnitNumber:         eq.UnitNumber,
		VIN:                eq.VIN,
		Kind:               string(eq.Kind),
		Status:             string(eq.Status),
		OperationalStatus:  string(eq.OperationalStatus),
		Make:               eq.Make,
		Model:              eq.Model,
		Year:               eq.Year,
		CurrentMileage:     decimalString(eq.CurrentMileage),
		CurrentEngineHours: decimalString(eq.CurrentEngineHours),
		TelematicsDeviceID: eq.TelematicsDeviceID,
		EldDeviceID:        eq.EldDeviceID,
		AssignedDriverID:   eq.AssignedDriverID,
		CreatedAt:          eq.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          eq.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUsageResponse(ev fleet.UsageEvent) usageEventResponse {
	return usageEventResponse{
		ID:          string(ev.ID),
		EquipmentID: string(ev.EquipmentID),
		OccurredAt:  ev.OccurredAt.UTC().Format(time.RFC3339),
		Odometer:    decimalString(ev.Odometer),
		EngineHours: decimalString(ev.EngineHours),
		Source:      string(ev.Source),
		Note:        ev.Note,
		CreatedAt:   ev.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMaintenanceResponse(ev fleet.MaintenanceEvent) maintenanceEventResponse {
	return maintenanceEventResponse{
		ID:             string(ev.ID),
		EquipmentID:    string(ev.EquipmentID),
		ServiceType:    ev.ServiceType,
		ServiceDate:    ev.ServiceDate.UTC().Format(time.RFC3339),
		Odometer:       decimalString(ev.Odometer),
		EngineHours:    decimalString(ev.EngineHours),
		Cost:           decimalString(ev.Cost),
		Note:           ev.Note,
		NextDueDate:    timeString(ev.NextDueDate),
		NextDueMileage: decimalString(ev.NextDueMileage),
		CreatedAt:      ev.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toForecastResponse(f fleet.MaintenanceForecast) forecastResponse {
	return forecastResponse{
		ID:               string(f.ID),
		EquipmentID:      string(f.EquipmentID),
		ServiceType:      f.ServiceType,
		BasisEventID:     string(f.BasisEventID),
		Status:           string(f.Status),
		ProjectedDate:    timeString(f.ProjectedDate),
		ProjectedMileage: decimalString(f.ProjectedMileage),
		Confidence:       f.Confidence,
		RiskScore:        f.RiskScore,
		Notes:            f.Notes,
		GeneratedAt:      f.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func toUsageResponses(events []fleet.UsageEvent) []usageEventResponse {
	out := make([]usageEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toUsageResponse(ev))
	}
	return out
}

func toMaintenanceResponses(events []fleet.MaintenanceEvent) []maintenanceEventResponse {
	out := make([]maintenanceEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toMaintenanceResponse(ev))
	}
	return out
}

func toForecastResponses(forecasts []fleet.MaintenanceForecast) []forecastResponse {
	out := make([]forecastResponse, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, toForecastResponse(f))
	}
	return out
}
