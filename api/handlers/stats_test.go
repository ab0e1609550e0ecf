package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fleetdash/fleet-api/api/handlers"
	"github.com/fleetdash/fleet-api/databases/mocks"
	"github.com/fleetdash/fleet-api/models"
)

func intPtr(n int) *int { return &n }

func TestStats_FleetStatsHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicles/stats", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	vehicles := []models.Vehicle{
		{VehicleID: "EV-001", Depot: "North Depot", Status: models.StatusActive, SoC: intPtr(90)},
		{VehicleID: "EV-002", Depot: "North Depot", Status: models.StatusActive, SoC: intPtr(55)},
		{VehicleID: "EV-003", Depot: "South Depot", Status: models.StatusCharging, SoC: intPtr(25)},
		{VehicleID: "EV-004", Depot: "South Depot", Status: models.StatusMaintenance},
		{VehicleID: "EV-005", Depot: "East Depot", Status: models.StatusInactive, SoC: intPtr(40)},
	}

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("Find", mock.Anything, mock.Anything).Return(vehicles, nil)

	s := handlers.Stats{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(s.FleetStatsHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got handlers.FleetStats
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)

	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, got.ByStatus[models.StatusActive])
	assert.Equal(t, 1, got.ByStatus[models.StatusInactive])
	assert.Equal(t, 1, got.ByStatus[models.StatusMaintenance])
	assert.Equal(t, 1, got.ByStatus[models.StatusCharging])

	// depots ordered by count, ties broken by name
	assert.Equal(t, []handlers.DepotCount{
		{Depot: "North Depot", Count: 2},
		{Depot: "South Depot", Count: 2},
		{Depot: "East Depot", Count: 1},
	}, got.TopDepots)

	// vehicles with no SoC reading are excluded from the distribution
	assert.Equal(t, []handlers.SoCBucket{
		{Range: "0-25%", Count: 1},
		{Range: "26-50%", Count: 1},
		{Range: "51-75%", Count: 1},
		{Range: "76-100%", Count: 1},
	}, got.SoC)
}

func TestStats_FleetStatsHandlerTopFiveDepots(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicles/stats", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var vehicles []models.Vehicle
	depots := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, depot := range depots {
		for j := 0; j <= i; j++ {
			vehicles = append(vehicles, models.Vehicle{Depot: depot, Status: models.StatusActive})
		}
	}

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("Find", mock.Anything, mock.Anything).Return(vehicles, nil)

	s := handlers.Stats{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(s.FleetStatsHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got handlers.FleetStats
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)

	assert.Len(t, got.TopDepots, 5)
	assert.Equal(t, handlers.DepotCount{Depot: "G", Count: 7}, got.TopDepots[0])
	assert.Equal(t, handlers.DepotCount{Depot: "C", Count: 3}, got.TopDepots[4])
}

func TestStats_FleetStatsHandlerFindError(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/vehicles/stats", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	vehicleDatabase := &mocks.VehicleDatabase{}
	vehicleDatabase.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	s := handlers.Stats{DB: vehicleDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(s.FleetStatsHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get vehicles", Error: "mocked-error"}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}
