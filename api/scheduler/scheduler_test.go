package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetdash/fleet-api/api/scheduler"
	"github.com/fleetdash/fleet-api/databases/mocks"
	"github.com/fleetdash/fleet-api/models"
)

func TestScheduler_RunHeartbeatSweep(t *testing.T) {
	stale := time.Now().Add(-2 * time.Hour)
	vehicles := []models.Vehicle{
		{ID: primitive.NewObjectID(), VehicleID: "EV-001", Status: models.StatusActive, LastHeartbeat: &stale},
		{ID: primitive.NewObjectID(), VehicleID: "EV-002", Status: models.StatusActive, LastHeartbeat: &stale},
	}

	vdb := &mocks.VehicleDatabase{}
	hdb := &mocks.VehicleHistoryDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return(vehicles, nil)
	vdb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)
	hdb.On("InsertOne", mock.Anything, mock.MatchedBy(func(e models.VehicleHistory) bool {
		return e.Status == models.StatusInactive && !e.VehicleID.IsZero()
	})).Return("mocked-id", nil)

	s := scheduler.NewScheduler(vdb, hdb, "*/15 * * * *", 30*time.Minute)

	err := s.RunHeartbeatSweep(context.Background())
	assert.NoError(t, err)

	hdb.AssertNumberOfCalls(t, "InsertOne", 2)
	vdb.AssertNumberOfCalls(t, "UpdateMany", 1)
}

func TestScheduler_RunHeartbeatSweepNothingStale(t *testing.T) {
	vdb := &mocks.VehicleDatabase{}
	hdb := &mocks.VehicleHistoryDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	s := scheduler.NewScheduler(vdb, hdb, "*/15 * * * *", 30*time.Minute)

	err := s.RunHeartbeatSweep(context.Background())
	assert.NoError(t, err)

	hdb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	vdb.AssertNotCalled(t, "UpdateMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduler_RunHeartbeatSweepFindError(t *testing.T) {
	vdb := &mocks.VehicleDatabase{}
	hdb := &mocks.VehicleHistoryDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	s := scheduler.NewScheduler(vdb, hdb, "*/15 * * * *", 30*time.Minute)

	err := s.RunHeartbeatSweep(context.Background())
	assert.Error(t, err)
}

func TestScheduler_RunHeartbeatSweepHistoryErrorDoesNotAbort(t *testing.T) {
	stale := time.Now().Add(-2 * time.Hour)
	vehicles := []models.Vehicle{
		{ID: primitive.NewObjectID(), VehicleID: "EV-001", Status: models.StatusActive, LastHeartbeat: &stale},
	}

	vdb := &mocks.VehicleDatabase{}
	hdb := &mocks.VehicleHistoryDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return(vehicles, nil)
	vdb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	hdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	s := scheduler.NewScheduler(vdb, hdb, "*/15 * * * *", 30*time.Minute)

	err := s.RunHeartbeatSweep(context.Background())
	assert.NoError(t, err)

	vdb.AssertNumberOfCalls(t, "UpdateMany", 1)
}
