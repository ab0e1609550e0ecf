package csvdata

import (
	"regexp"

	"github.com/fleetdash/fleet-api/models"
)

// Validation messages surfaced to the operator, in the order they are checked
const (
	ErrIMEIRequired         = "IMEI No. is required"
	ErrChassisRequired      = "Chassis No. is required"
	ErrEngineRequired       = "Engine No. is required"
	ErrRegistrationRequired = "Registration No. is required"
	ErrIMEIFormat           = "IMEI No. must be exactly 15 digits"
)

var imeiPattern = regexp.MustCompile(`^\d{15}$`)

// Validate checks a candidate record against the required-field and format
// rules and returns the violations in check order; an empty slice means the
// candidate may be persisted. The input is never mutated.
func Validate(in models.VehicleFormInput) []string {
	var errs []string

	if in.IMEINo == "" {
		errs = append(errs, ErrIMEIRequired)
	}
	if in.ChassisNo == "" {
		errs = append(errs, ErrChassisRequired)
	}
	if in.EngineNo == "" {
		errs = append(errs, ErrEngineRequired)
	}
	if in.RegistrationNo == "" {
		errs = append(errs, ErrRegistrationRequired)
	}

	if in.IMEINo != "" && !imeiPattern.MatchString(in.IMEINo) {
		errs = append(errs, ErrIMEIFormat)
	}

	return errs
}
