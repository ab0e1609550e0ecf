package csvdata

import (
	"strconv"
	"strings"
	"time"

	"github.com/fleetdash/fleet-api/models"
)

// exportHeader is the fixed column order for vehicle CSV downloads
var exportHeader = []string{
	"Vehicle ID", "Depot", "ODO Reading", "SoC", "IMEI No.", "Registration No.",
	"Chassis No.", "Engine No.", "Device Make", "Last Heartbeat", "Status", "Remarks",
}

// Marshal serializes vehicles to CSV text. Every field is quote-wrapped with
// internal quotes doubled; missing optional values render as empty strings.
func Marshal(vehicles []models.Vehicle) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ","))
	b.WriteByte('\n')

	for _, v := range vehicles {
		row := []string{
			v.VehicleID,
			v.Depot,
			intOrEmpty(v.OdoReading),
			intOrEmpty(v.SoC),
			v.IMEINo,
			v.RegistrationNo,
			v.ChassisNo,
			v.EngineNo,
			v.DeviceMake,
			timeOrEmpty(v.LastHeartbeat),
			string(v.Status),
			v.Remarks,
		}
		for i, field := range row {
			row[i] = quote(field)
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	return b.String()
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
