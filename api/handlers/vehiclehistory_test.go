package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetdash/fleet-api/api/handlers"
	"github.com/fleetdash/fleet-api/databases/mocks"
	"github.com/fleetdash/fleet-api/models"
)

func TestVehicleHistory_VehicleHistoryHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicle/1234/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	h := handlers.VehicleHistory{DB: &mocks.VehicleHistoryDatabase{}}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.VehicleHistoryHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}

func TestVehicleHistory_VehicleHistoryHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicle/5fc51f58c72ff10004dca382/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	historyDatabase := &mocks.VehicleHistoryDatabase{}
	historyDatabase.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	h := handlers.VehicleHistory{DB: historyDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.VehicleHistoryHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestVehicleHistory_VehicleHistoryHandlerNewestFirst(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicle/5fc51f58c72ff10004dca382/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	vID, _ := primitive.ObjectIDFromHex("5fc51f58c72ff10004dca382")
	newer := models.VehicleHistory{
		ID:        primitive.NewObjectID(),
		VehicleID: vID,
		Status:    models.StatusActive,
		Timestamp: primitive.NewDateTimeFromTime(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	older := models.VehicleHistory{
		ID:        primitive.NewObjectID(),
		VehicleID: vID,
		Status:    models.StatusCharging,
		Timestamp: primitive.NewDateTimeFromTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	historyDatabase := &mocks.VehicleHistoryDatabase{}
	historyDatabase.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.VehicleHistory{newer, older}, nil)

	h := handlers.VehicleHistory{DB: historyDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.VehicleHistoryHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.VehicleHistory
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, models.StatusActive, got[0].Status)
	assert.Equal(t, models.StatusCharging, got[1].Status)
}

func TestVehicleHistory_AddVehicleHistoryHandlerInvalidStatus(t *testing.T) {
	soc := 50
	body, _ := json.Marshal(models.VehicleHistoryInput{Status: "PARKED", SoC: &soc})
	req, err := http.NewRequest("POST", "/api/v1/vehicle/5fc51f58c72ff10004dca382/history", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	historyDatabase := &mocks.VehicleHistoryDatabase{}
	h := handlers.VehicleHistory{DB: historyDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AddVehicleHistoryHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	historyDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestVehicleHistory_AddVehicleHistoryHandlerSuccess(t *testing.T) {
	lat := 12.9716
	lng := 77.5946
	soc := 74
	body, _ := json.Marshal(models.VehicleHistoryInput{
		Status:      models.StatusActive,
		LocationLat: &lat,
		LocationLng: &lng,
		SoC:         &soc,
	})
	req, err := http.NewRequest("POST", "/api/v1/vehicle/5fc51f58c72ff10004dca382/history", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	historyDatabase := &mocks.VehicleHistoryDatabase{}
	historyDatabase.On("InsertOne", mock.Anything, mock.Anything).Return("mocked-id", nil)

	h := handlers.VehicleHistory{DB: historyDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AddVehicleHistoryHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.VehicleHistory
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)
	assert.Equal(t, "5fc51f58c72ff10004dca382", got.VehicleID.Hex())
	assert.Equal(t, models.StatusActive, got.Status)
	assert.False(t, got.ID.IsZero())
	assert.NotZero(t, got.Timestamp)
	historyDatabase.AssertNumberOfCalls(t, "InsertOne", 1)
}
