// Package scheduler runs periodic background jobs against the fleet store.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// Scheduler owns the cron instance and the databases its jobs touch
type Scheduler struct {
	cron      *cron.Cron
	VDB       databases.VehicleDatabase
	HDB       databases.VehicleHistoryDatabase
	schedule  string
	staleness time.Duration
}

// NewScheduler creates a scheduler that flags vehicles with stale heartbeats.
// schedule is a cron expression, staleness is how long a heartbeat may lag
// before an ACTIVE vehicle is marked INACTIVE.
func NewScheduler(vdb databases.VehicleDatabase, hdb databases.VehicleHistoryDatabase, schedule string, staleness time.Duration) *Scheduler {
	if staleness <= 0 {
		staleness = 30 * time.Minute
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		VDB:       vdb,
		HDB:       hdb,
		schedule:  schedule,
		staleness: staleness,
	}
}

// Start registers the heartbeat sweep and begins the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.RunHeartbeatSweep(ctx); err != nil {
			zap.S().Errorw("heartbeat sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	zap.S().Infow("heartbeat sweep scheduled", "schedule", s.schedule, "staleness", s.staleness.String())
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunHeartbeatSweep finds ACTIVE vehicles whose last heartbeat is older than
// the staleness window, records a history entry for each and flips them to
// INACTIVE in one update
func (s *Scheduler) RunHeartbeatSweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.staleness)

	filter := bson.M{
		"status":         models.StatusActive,
		"last_heartbeat": bson.M{"$lt": cutoff},
	}

	stale, err := s.VDB.Find(ctx, filter)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	for _, vehicle := range stale {
		entry := models.VehicleHistory{
			ID:         primitive.NewObjectID(),
			VehicleID:  vehicle.ID,
			Status:     models.StatusInactive,
			OdoReading: vehicle.OdoReading,
			SoC:        vehicle.SoC,
			Timestamp:  now,
			Details: map[string]interface{}{
				"reason": "heartbeat stale",
			},
		}
		if _, err := s.HDB.InsertOne(ctx, entry); err != nil {
			zap.S().Warnw("failed to record stale heartbeat history entry",
				"vehicle_id", vehicle.ID.Hex(),
				"error", err,
			)
		}
	}

	modified, err := s.VDB.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"status":     models.StatusInactive,
			"updated_at": now,
		},
	})
	if err != nil {
		return err
	}

	zap.S().Infow("heartbeat sweep completed",
		"stale", len(stale),
		"deactivated", modified,
		"cutoff", cutoff.UTC().Format(time.RFC3339),
	)
	return nil
}
