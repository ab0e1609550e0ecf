package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleHistory holds the structure for the vehicle_history collection in
// mongo. Entries are append-only and never mutated after insert.
type VehicleHistory struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id"`
	VehicleID   primitive.ObjectID     `json:"vehicle_id" bson:"vehicle_id"`
	Status      VehicleStatus          `json:"status" bson:"status"`
	LocationLat *float64               `json:"location_lat" bson:"location_lat,omitempty"`
	LocationLng *float64               `json:"location_lng" bson:"location_lng,omitempty"`
	OdoReading  *int                   `json:"odo_reading" bson:"odo_reading,omitempty"`
	SoC         *int                   `json:"soc" bson:"soc,omitempty"`
	Timestamp   primitive.DateTime     `json:"timestamp" bson:"timestamp"`
	Details     map[string]interface{} `json:"details" bson:"details,omitempty"`
}

// VehicleHistoryInput is the client-supplied portion of a history entry; the
// server assigns the id, the owning vehicle and the timestamp.
type VehicleHistoryInput struct {
	Status      VehicleStatus          `json:"status"`
	LocationLat *float64               `json:"location_lat"`
	LocationLng *float64               `json:"location_lng"`
	OdoReading  *int                   `json:"odo_reading"`
	SoC         *int                   `json:"soc"`
	Details     map[string]interface{} `json:"details"`
}
