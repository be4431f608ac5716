/*
errors.go - Centralized error types for the forecasting engine

PURPOSE:
  All domain error types in one place. The store implementations translate
  database-level failures (unique constraint violations, missing rows) into
  these errors; callers match with errors.Is/errors.As.

ERROR CATEGORIES:
  1. Registration conflicts - unit number / VIN uniqueness violations
  2. Scope errors - equipment missing or outside the caller's company

USAGE:
  if errors.Is(err, fleet.ErrDuplicateUnit) {
      // surface 409 to the caller
  }

SEE ALSO:
  - store/sqlite: translates SQLite constraint violations into these errors
  - engine.go: returns them unchanged from the write operations
*/
package fleet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateUnit is returned when registering an equipment whose
	// (company, unit number) pair already exists. The database unique index is
	// the source of truth; any application-level pre-check is advisory only.
	ErrDuplicateUnit = errors.New("duplicate unit number")

	// ErrDuplicateVIN is returned when the supplied VIN already exists for the
	// company.
	ErrDuplicateVIN = errors.New("duplicate vin")

	// ErrEquipmentNotFound is returned when the referenced equipment does not
	// exist or belongs to a different company. The two cases are deliberately
	// indistinguishable to the caller.
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrInvalidInput is returned for malformed operation inputs (empty unit
	// number, missing service type). Wrapped with context via fmt.Errorf.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateUnitError reports which unit number collided.
type DuplicateUnitError struct {
	CompanyID  CompanyID
	UnitNumber string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("unit number %q already registered for company %s", e.UnitNumber, e.CompanyID)
}

func (e *DuplicateUnitError) Unwrap() error { return ErrDuplicateUnit }

// DuplicateVINError reports which VIN collided.
type DuplicateVINError struct {
	CompanyID CompanyID
	VIN       string
}

func (e *DuplicateVINError) Error() string {
	return fmt.Sprintf("vin %q already registered for company %s", e.VIN, e.CompanyID)
}

func (e *DuplicateVINError) Unwrap() error { return ErrDuplicateVIN }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConflict returns true for registration-time uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateUnit) || errors.Is(err, ErrDuplicateVIN)
}

// IsNotFound returns true if the error indicates missing or out-of-scope
// equipment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEquipmentNotFound)
}

// IsInvalid returns true for malformed-input errors.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
