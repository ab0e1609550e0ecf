package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fleetdash/fleet-api/api/handlers"
	"github.com/fleetdash/fleet-api/databases/mocks"
	"github.com/fleetdash/fleet-api/models"
)

const importHeader = "Vehicle ID,Depot,ODO Reading,SoC,IMEI No.,Registration No.,Chassis No.,Engine No.,Device Make,Last Heartbeat,Status,Remarks"

func importRequest(t *testing.T, csv string) *http.Request {
	t.Helper()
	req, err := http.NewRequest("POST", "/api/v1/vehicles/import", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")
	req.Header.Set("Content-Type", "text/csv")
	return req
}

func TestVehicleImport_AllRowsValid(t *testing.T) {
	csv := importHeader + "\n" +
		"EV-001,North Depot,1000,90,123456789012345,KA01AB1234,CH1,EN1,Teltonika,,ACTIVE,\n" +
		"EV-002,North Depot,2000,80,123456789012346,KA01AB1235,CH2,EN2,Teltonika,,ACTIVE,\n" +
		"EV-003,South Depot,3000,70,123456789012347,KA01AB1236,CH3,EN3,Teltonika,,CHARGING,\n"

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("InsertOne", mock.Anything, mock.Anything).Return("mocked-id", nil)

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, csv))

	assert.Equal(t, http.StatusOK, rr.Code)

	var summary handlers.ImportSummary
	err := json.Unmarshal(rr.Body.Bytes(), &summary)
	assert.NoError(t, err)
	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, 3, summary.Success)
	assert.Equal(t, 0, summary.Failures)
	vehicleDatabase.AssertNumberOfCalls(t, "InsertOne", 3)
}

func TestVehicleImport_BackendFailuresAreCountedNotFatal(t *testing.T) {
	csv := importHeader + "\n" +
		"EV-001,North Depot,1000,90,123456789012345,KA01AB1234,CH1,EN1,Teltonika,,ACTIVE,\n" +
		"EV-002,North Depot,2000,80,123456789012346,KA01AB1235,CH2,EN2,Teltonika,,ACTIVE,\n" +
		"EV-003,South Depot,3000,70,123456789012347,KA01AB1236,CH3,EN3,Teltonika,,CHARGING,\n"

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("InsertOne", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
		return v.VehicleID == "EV-002"
	})).Return(nil, errors.New("write failed"))
	vehicleDatabase.On("InsertOne", mock.Anything, mock.Anything).Return("mocked-id", nil)

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, csv))

	assert.Equal(t, http.StatusOK, rr.Code)

	var summary handlers.ImportSummary
	err := json.Unmarshal(rr.Body.Bytes(), &summary)
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failures)
	// every row still gets its attempt
	vehicleDatabase.AssertNumberOfCalls(t, "InsertOne", 3)
}

func TestVehicleImport_OneInvalidRowRejectsWholeBatch(t *testing.T) {
	csv := importHeader + "\n" +
		"EV-001,North Depot,1000,90,123456789012345,KA01AB1234,CH1,EN1,Teltonika,,ACTIVE,\n" +
		"EV-002,North Depot,2000,80,badimei,KA01AB1235,CH2,EN2,Teltonika,,ACTIVE,\n"

	vehicleDatabase := &mocks.VehicleDatabase{}

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, csv))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Message string `json:"message"`
		Invalid int    `json:"invalid"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "invalid data detected", resp.Message)
	assert.Equal(t, 1, resp.Invalid)
	vehicleDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestVehicleImport_MissingRequiredFieldsRejectBatch(t *testing.T) {
	csv := importHeader + "\n" +
		"EV-001,North Depot,1000,90,123456789012345,,CH1,EN1,Teltonika,,ACTIVE,\n"

	vehicleDatabase := &mocks.VehicleDatabase{}

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, csv))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	vehicleDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestVehicleImport_NoCandidateRows(t *testing.T) {
	vehicleDatabase := &mocks.VehicleDatabase{}

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, importHeader+"\n"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no valid vehicle data found")
	vehicleDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestVehicleImport_MismatchedRowsAreSkippedBeforeValidation(t *testing.T) {
	// the second row has too few fields and is dropped by the parser, so the
	// remaining valid row imports on its own
	csv := importHeader + "\n" +
		"EV-001,North Depot,1000,90,123456789012345,KA01AB1234,CH1,EN1,Teltonika,,ACTIVE,\n" +
		"EV-002,North Depot\n"

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("InsertOne", mock.Anything, mock.Anything).Return("mocked-id", nil)

	v := handlers.VehicleImport{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(v.ImportVehiclesCSVHandler)
	handler.ServeHTTP(rr, importRequest(t, csv))

	assert.Equal(t, http.StatusOK, rr.Code)

	var summary handlers.ImportSummary
	err := json.Unmarshal(rr.Body.Bytes(), &summary)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Success)
	assert.Equal(t, 0, summary.Failures)
	vehicleDatabase.AssertNumberOfCalls(t, "InsertOne", 1)
}
