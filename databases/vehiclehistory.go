package databases

//go generate: mockery --name VehicleHistoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetdash/fleet-api/models"
)

const vehicleHistoryName = "vehicle_history"

// VehicleHistoryDatabase contains the methods to use with the vehicle history
// database. History rows are append-only, so there is no update or delete.
type VehicleHistoryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VehicleHistory, error)
	InsertOne(ctx context.Context, entry models.VehicleHistory) (interface{}, error)
}

type vehicleHistoryDatabase struct {
	db DatabaseHelper
}

// NewVehicleHistoryDatabase initializes a new instance of vehicle history database with the provided db connection
func NewVehicleHistoryDatabase(db DatabaseHelper) VehicleHistoryDatabase {
	return &vehicleHistoryDatabase{
		db: db,
	}
}

func (c *vehicleHistoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VehicleHistory, error) {
	var entries []models.VehicleHistory
	cursor, err := c.db.Collection(vehicleHistoryName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *vehicleHistoryDatabase) InsertOne(ctx context.Context, entry models.VehicleHistory) (interface{}, error) {
	return c.db.Collection(vehicleHistoryName).InsertOne(ctx, entry)
}
