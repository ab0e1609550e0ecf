package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetdash/fleet-api/config"
	"github.com/fleetdash/fleet-api/csvdata"
	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// VehicleImport exported for testing purposes
type VehicleImport struct {
	DB databases.VehicleDatabase
}

// ImportSummary reports the outcome of a bulk CSV import
type ImportSummary struct {
	BatchID  string `json:"batch_id"`
	Success  int    `json:"success"`
	Failures int    `json:"failures"`
}

// ImportVehiclesCSVHandler ingests a CSV file of vehicles. Validation is
// all-or-nothing: one bad row rejects the whole batch before any write. The
// write phase is the opposite: rows are persisted one at a time, sequentially,
// and a failed insert only increments the failure counter so that every row
// gets its attempt and the summary stays deterministic.
func (v VehicleImport) ImportVehiclesCSVHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		config.ErrorStatus("failed to read request body", http.StatusBadRequest, w, err)
		return
	}

	vehicles := csvdata.Parse(string(body))
	if len(vehicles) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "no valid vehicle data found",
		})
		return
	}

	invalid := 0
	for _, vehicle := range vehicles {
		if len(csvdata.Validate(vehicle)) > 0 {
			invalid++
		}
	}
	if invalid > 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "invalid data detected",
			"invalid": invalid,
		})
		return
	}

	batchID := uuid.New().String()
	summary := ImportSummary{BatchID: batchID}
	for _, input := range vehicles {
		vehicle := models.NewVehicle(input)
		_, err := v.DB.InsertOne(r.Context(), vehicle)
		if err != nil {
			zap.S().Warnw("failed to import vehicle",
				"batch_id", batchID,
				"vehicle_id", input.VehicleID,
				"error", err)
			summary.Failures++
			continue
		}
		summary.Success++
	}

	zap.S().Infow("bulk import finished",
		"batch_id", batchID,
		"success", summary.Success,
		"failures", summary.Failures)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(summary)
}
