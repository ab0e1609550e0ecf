package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus is the operational state of a vehicle
type VehicleStatus string

// The four states a vehicle can be in
const (
	StatusActive      VehicleStatus = "ACTIVE"
	StatusInactive    VehicleStatus = "INACTIVE"
	StatusMaintenance VehicleStatus = "MAINTENANCE"
	StatusCharging    VehicleStatus = "CHARGING"
)

// IsValid reports whether s is one of the four known statuses
func (s VehicleStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance, StatusCharging:
		return true
	}
	return false
}

// Vehicle holds the structure for the vehicles collection in mongo
type Vehicle struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	VehicleID      string             `json:"vehicle_id" bson:"vehicle_id"`
	Depot          string             `json:"depot" bson:"depot"`
	OdoReading     *int               `json:"odo_reading" bson:"odo_reading,omitempty"`
	SoC            *int               `json:"soc" bson:"soc,omitempty"`
	IMEINo         string             `json:"imei_no" bson:"imei_no"`
	RegistrationNo string             `json:"registration_no" bson:"registration_no"`
	ChassisNo      string             `json:"chassis_no" bson:"chassis_no"`
	EngineNo       string             `json:"engine_no" bson:"engine_no"`
	DeviceMake     string             `json:"device_make" bson:"device_make,omitempty"`
	LastHeartbeat  *time.Time         `json:"last_heartbeat" bson:"last_heartbeat,omitempty"`
	Status         VehicleStatus      `json:"status" bson:"status"`
	Remarks        string             `json:"remarks" bson:"remarks,omitempty"`
	CreatedAt      primitive.DateTime `json:"created_at" bson:"created_at"`
	UpdatedAt      primitive.DateTime `json:"updated_at" bson:"updated_at"`
}

// VehicleFormInput is the candidate shape a vehicle passes through before it is
// validated and persisted. CSV rows and create/update request bodies decode into
// this type; numeric fields that failed to parse are nil rather than zero.
type VehicleFormInput struct {
	VehicleID      string        `json:"vehicle_id"`
	Depot          string        `json:"depot"`
	OdoReading     *int          `json:"odo_reading"`
	SoC            *int          `json:"soc"`
	IMEINo         string        `json:"imei_no"`
	RegistrationNo string        `json:"registration_no"`
	ChassisNo      string        `json:"chassis_no"`
	EngineNo       string        `json:"engine_no"`
	DeviceMake     string        `json:"device_make"`
	LastHeartbeat  string        `json:"last_heartbeat"`
	Status         VehicleStatus `json:"status"`
	Remarks        string        `json:"remarks"`
}

// VehicleUpdateInput carries a partial patch; only non-nil fields are applied
type VehicleUpdateInput struct {
	VehicleID      *string        `json:"vehicle_id,omitempty"`
	Depot          *string        `json:"depot,omitempty"`
	OdoReading     *int           `json:"odo_reading,omitempty"`
	SoC            *int           `json:"soc,omitempty"`
	IMEINo         *string        `json:"imei_no,omitempty"`
	RegistrationNo *string        `json:"registration_no,omitempty"`
	ChassisNo      *string        `json:"chassis_no,omitempty"`
	EngineNo       *string        `json:"engine_no,omitempty"`
	DeviceMake     *string        `json:"device_make,omitempty"`
	LastHeartbeat  *time.Time     `json:"last_heartbeat,omitempty"`
	Status         *VehicleStatus `json:"status,omitempty"`
	Remarks        *string        `json:"remarks,omitempty"`
}

// NewVehicle converts an accepted candidate into a persistable document. The
// caller is expected to have run the validator first; heartbeat text that does
// not parse as RFC 3339 degrades to nil the same way bad CSV integers do.
func NewVehicle(in VehicleFormInput) Vehicle {
	status := in.Status
	if status == "" {
		status = StatusInactive
	}

	var heartbeat *time.Time
	if in.LastHeartbeat != "" {
		if t, err := time.Parse(time.RFC3339, in.LastHeartbeat); err == nil {
			heartbeat = &t
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	return Vehicle{
		ID:             primitive.NewObjectID(),
		VehicleID:      in.VehicleID,
		Depot:          in.Depot,
		OdoReading:     in.OdoReading,
		SoC:            in.SoC,
		IMEINo:         in.IMEINo,
		RegistrationNo: in.RegistrationNo,
		ChassisNo:      in.ChassisNo,
		EngineNo:       in.EngineNo,
		DeviceMake:     in.DeviceMake,
		LastHeartbeat:  heartbeat,
		Status:         status,
		Remarks:        in.Remarks,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
