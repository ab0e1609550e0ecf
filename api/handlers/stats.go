package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fleetdash/fleet-api/api"
	"github.com/fleetdash/fleet-api/config"
	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// Stats exported for testing purposes
type Stats struct {
	DB databases.VehicleDatabase
}

// DepotCount is one row of the depot distribution
type DepotCount struct {
	Depot string `json:"depot"`
	Count int    `json:"count"`
}

// SoCBucket is one row of the state-of-charge distribution
type SoCBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// FleetStats is the aggregate payload behind the dashboard stat cards
type FleetStats struct {
	Total     int                          `json:"total"`
	ByStatus  map[models.VehicleStatus]int `json:"by_status"`
	TopDepots []DepotCount                 `json:"top_depots"`
	SoC       []SoCBucket                  `json:"soc_distribution"`
}

// FleetStatsHandler aggregates status, depot and SoC distributions over the
// whole fleet
func (s Stats) FleetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vehicles, err := s.DB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get vehicles", http.StatusNotFound, w, err)
		return
	}

	stats := aggregateFleetStats(vehicles)

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func aggregateFleetStats(vehicles []models.Vehicle) FleetStats {
	stats := FleetStats{
		Total: len(vehicles),
		ByStatus: map[models.VehicleStatus]int{
			models.StatusActive:      0,
			models.StatusInactive:    0,
			models.StatusMaintenance: 0,
			models.StatusCharging:    0,
		},
		SoC: []SoCBucket{
			{Range: "0-25%"},
			{Range: "26-50%"},
			{Range: "51-75%"},
			{Range: "76-100%"},
		},
	}

	depots := map[string]int{}
	for _, v := range vehicles {
		stats.ByStatus[v.Status]++
		if v.Depot != "" {
			depots[v.Depot]++
		}
		if v.SoC != nil {
			switch soc := *v.SoC; {
			case soc <= 25:
				stats.SoC[0].Count++
			case soc <= 50:
				stats.SoC[1].Count++
			case soc <= 75:
				stats.SoC[2].Count++
			default:
				stats.SoC[3].Count++
			}
		}
	}

	for depot, count := range depots {
		stats.TopDepots = append(stats.TopDepots, DepotCount{Depot: depot, Count: count})
	}
	sort.Slice(stats.TopDepots, func(i, j int) bool {
		if stats.TopDepots[i].Count != stats.TopDepots[j].Count {
			return stats.TopDepots[i].Count > stats.TopDepots[j].Count
		}
		return stats.TopDepots[i].Depot < stats.TopDepots[j].Depot
	})
	if len(stats.TopDepots) > 5 {
		stats.TopDepots = stats.TopDepots[:5]
	}

	return stats
}
