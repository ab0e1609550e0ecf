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
	"github.com/fleetdash/fleet-api/csvdata"
	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// Vehicle exported for testing purposes
type Vehicle struct {
	DB databases.VehicleDatabase
}

// VehicleHandler returns the full vehicle set ordered by vehicle_id ascending
func (v Vehicle) VehicleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := v.DB.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "vehicle_id", Value: 1}}))
	if err != nil {
		config.ErrorStatus("failed to get vehicles", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Vehicle exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Vehicle{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LiveVehiclesHandler returns ACTIVE vehicles, most recently updated first
func (v Vehicle) LiveVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := v.DB.Find(ctx, bson.M{"status": models.StatusActive},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get live vehicles", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Vehicle{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VehicleByIDHandler returns a vehicle by ID
func (v Vehicle) VehicleByIDHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	zap.S().Debugf("vehicle_id: %v", vehicleID)

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := v.DB.FindOne(r.Context(), bson.M{"_id": vID})
	if err != nil {
		config.ErrorStatus("failed to get vehicle by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateVehicleHandler persists a single vehicle after validating the input
func (v Vehicle) CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	var input models.VehicleFormInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if errs := validateForm(input); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	vehicle := models.NewVehicle(input)
	_, err := v.DB.InsertOne(r.Context(), vehicle)
	if err != nil {
		config.ErrorStatus("failed to create vehicle", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle)
}

// UpdateVehicleHandler patches only the named fields and returns the updated vehicle
func (v Vehicle) UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var patch models.VehicleUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if errs := validatePatch(patch); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	set := patchFields(patch)
	set["updated_at"] = primitive.NewDateTimeFromTime(time.Now())

	dbResp, err := v.DB.FindOneAndUpdate(r.Context(), bson.M{"_id": vID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update vehicle", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteVehicleHandler deletes a vehicle by ID. Whether deleting an absent id
// is an error depends on the backend; we surface the deleted count and let the
// caller decide.
func (v Vehicle) DeleteVehicleHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	deleted, err := v.DB.DeleteOne(r.Context(), bson.M{"_id": vID})
	if err != nil {
		config.ErrorStatus("failed to delete vehicle", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Vehicle deleted successfully",
		"deleted": deleted > 0,
	})
}

// ExportVehiclesCSVHandler re-fetches all vehicles and serves them as CSV
func (v Vehicle) ExportVehiclesCSVHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := v.DB.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "vehicle_id", Value: 1}}))
	if err != nil {
		config.ErrorStatus("failed to get vehicles", http.StatusNotFound, w, err)
		return
	}

	csv := csvdata.Marshal(dbResp)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicles.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// validateForm applies the shared required-field/IMEI rules plus the richer
// constraints enforced at the form boundary
func validateForm(in models.VehicleFormInput) []string {
	errs := csvdata.Validate(in)
	if in.VehicleID == "" {
		errs = append(errs, "Vehicle ID is required")
	}
	if in.Depot == "" {
		errs = append(errs, "Depot is required")
	}
	if in.Status != "" && !in.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("Status %q is not recognized", in.Status))
	}
	if in.SoC != nil && (*in.SoC < 0 || *in.SoC > 100) {
		errs = append(errs, "SoC must be between 0 and 100")
	}
	if in.OdoReading != nil && *in.OdoReading < 0 {
		errs = append(errs, "ODO Reading must not be negative")
	}
	return errs
}

func validatePatch(patch models.VehicleUpdateInput) []string {
	var errs []string
	if patch.IMEINo != nil {
		tmp := models.VehicleFormInput{IMEINo: *patch.IMEINo, ChassisNo: "-", EngineNo: "-", RegistrationNo: "-"}
		errs = append(errs, csvdata.Validate(tmp)...)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("Status %q is not recognized", *patch.Status))
	}
	if patch.SoC != nil && (*patch.SoC < 0 || *patch.SoC > 100) {
		errs = append(errs, "SoC must be between 0 and 100")
	}
	if patch.OdoReading != nil && *patch.OdoReading < 0 {
		errs = append(errs, "ODO Reading must not be negative")
	}
	return errs
}

// patchFields maps only the fields present in the request onto a $set document
func patchFields(patch models.VehicleUpdateInput) bson.M {
	set := bson.M{}
	if patch.VehicleID != nil {
		set["vehicle_id"] = *patch.VehicleID
	}
	if patch.Depot != nil {
		set["depot"] = *patch.Depot
	}
	if patch.OdoReading != nil {
		set["odo_reading"] = *patch.OdoReading
	}
	if patch.SoC != nil {
		set["soc"] = *patch.SoC
	}
	if patch.IMEINo != nil {
		set["imei_no"] = *patch.IMEINo
	}
	if patch.RegistrationNo != nil {
		set["registration_no"] = *patch.RegistrationNo
	}
	if patch.ChassisNo != nil {
		set["chassis_no"] = *patch.ChassisNo
	}
	if patch.EngineNo != nil {
		set["engine_no"] = *patch.EngineNo
	}
	if patch.DeviceMake != nil {
		set["device_make"] = *patch.DeviceMake
	}
	if patch.LastHeartbeat != nil {
		set["last_heartbeat"] = *patch.LastHeartbeat
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Remarks != nil {
		set["remarks"] = *patch.Remarks
	}
	return set
}

func writeValidationErrors(w http.ResponseWriter, errs []string) {
	zap.S().Debugw("validation rejected input", "errors", errs)
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "validation failed",
		"errors":  errs,
	})
}
