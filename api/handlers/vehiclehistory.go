package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fleetdash/fleet-api/api"
	"github.com/fleetdash/fleet-api/config"
	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// VehicleHistory exported for testing purposes
type VehicleHistory struct {
	DB databases.VehicleHistoryDatabase
}

// VehicleHistoryHandler returns the history entries for a vehicle, newest first
func (h VehicleHistory) VehicleHistoryHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	zap.S().Debugf("vehicle_id: %v", vehicleID)

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.Find(ctx, bson.M{"vehicle_id": vID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get vehicle history", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.VehicleHistory{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AddVehicleHistoryHandler appends one history entry; the server assigns the
// id and timestamp and the entry is never mutated afterwards
func (h VehicleHistory) AddVehicleHistoryHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var input models.VehicleHistoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	var errs []string
	if !input.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("Status %q is not recognized", input.Status))
	}
	if input.SoC != nil && (*input.SoC < 0 || *input.SoC > 100) {
		errs = append(errs, "SoC must be between 0 and 100")
	}
	if input.OdoReading != nil && *input.OdoReading < 0 {
		errs = append(errs, "ODO Reading must not be negative")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	entry := models.VehicleHistory{
		ID:          primitive.NewObjectID(),
		VehicleID:   vID,
		Status:      input.Status,
		LocationLat: input.LocationLat,
		LocationLng: input.LocationLng,
		OdoReading:  input.OdoReading,
		SoC:         input.SoC,
		Timestamp:   primitive.NewDateTimeFromTime(time.Now()),
		Details:     input.Details,
	}

	_, err = h.DB.InsertOne(r.Context(), entry)
	if err != nil {
		config.ErrorStatus("failed to add vehicle history entry", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}
