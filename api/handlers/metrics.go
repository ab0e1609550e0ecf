package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fleetdash/fleet-api/api"
	"github.com/fleetdash/fleet-api/config"
)

// MetricsSummaryHandler returns per-route request counts and latency summaries
func MetricsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary := api.GetMetrics().Summary()

	b, err := json.Marshal(summary)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
