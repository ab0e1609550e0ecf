package csvdata

import "strings"

// headerFields is the fixed dictionary of recognized CSV header variants,
// keyed by the trimmed lower-cased header text.
var headerFields = map[string]string{
	"vehicle id":       "vehicle_id",
	"depot":            "depot",
	"odo reading":      "odo_reading",
	"soc":              "soc",
	"imei no":          "imei_no",
	"imei no.":         "imei_no",
	"imei":             "imei_no",
	"registration no":  "registration_no",
	"registration no.": "registration_no",
	"registration":     "registration_no",
	"chassis no":       "chassis_no",
	"chassis no.":      "chassis_no",
	"chassis":          "chassis_no",
	"engine no":        "engine_no",
	"engine no.":       "engine_no",
	"engine":           "engine_no",
	"device make":      "device_make",
	"last heartbeat":   "last_heartbeat",
	"status":           "status",
	"remarks":          "remarks",
}

// MapHeaderToFieldName returns the canonical snake_case field name for a raw
// CSV header. Matching is case-insensitive and ignores surrounding whitespace;
// unknown headers return "" and their column is dropped by the parser.
func MapHeaderToFieldName(header string) string {
	return headerFields[strings.ToLower(strings.TrimSpace(header))]
}
