// Package csvdata implements the CSV side of vehicle data management: parsing
// uploaded files into candidate records, validating candidates before they are
// persisted, and serializing the fleet back out for download.
package csvdata

import (
	"strconv"
	"strings"

	"github.com/fleetdash/fleet-api/models"
)

// Parse turns raw CSV text into candidate vehicle records. The first line is
// the header row; header cells are trimmed and lower-cased before mapping.
// Rows whose field count does not match the header count are skipped, as are
// blank lines. There is deliberately no handling for commas inside quoted
// fields; a quote-wrapped field is only unwrapped after splitting.
func Parse(text string) []models.VehicleFormInput {
	lines := strings.Split(text, "\n")
	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	var vehicles []models.VehicleFormInput
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := strings.Split(line, ",")
		if len(values) != len(headers) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if name := MapHeaderToFieldName(header); name != "" {
				fields[name] = unquote(strings.TrimSpace(values[i]))
			}
		}

		vehicles = append(vehicles, candidate(fields))
	}
	return vehicles
}

func candidate(fields map[string]string) models.VehicleFormInput {
	in := models.VehicleFormInput{
		VehicleID:      fields["vehicle_id"],
		Depot:          fields["depot"],
		OdoReading:     optionalInt(fields["odo_reading"]),
		SoC:            optionalInt(fields["soc"]),
		IMEINo:         fields["imei_no"],
		RegistrationNo: fields["registration_no"],
		ChassisNo:      fields["chassis_no"],
		EngineNo:       fields["engine_no"],
		DeviceMake:     fields["device_make"],
		LastHeartbeat:  fields["last_heartbeat"],
		Remarks:        fields["remarks"],
	}

	// rows without a recognizable status default to INACTIVE
	status := models.VehicleStatus(strings.ToUpper(fields["status"]))
	if !status.IsValid() {
		status = models.StatusInactive
	}
	in.Status = status

	return in
}

// optionalInt parses a known numeric field; a value that is absent or fails to
// parse becomes nil rather than failing the row.
func optionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// unquote strips one pair of surrounding double quotes and collapses doubled
// quotes, so that files produced by Marshal re-import to the same values.
func unquote(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return strings.ReplaceAll(value[1:len(value)-1], `""`, `"`)
	}
	return value
}
