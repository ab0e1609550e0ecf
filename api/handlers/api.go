package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fleetdash/fleet-api/api"
	"github.com/fleetdash/fleet-api/api/scheduler"
	"github.com/fleetdash/fleet-api/config"
	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	LiveFeed  *LiveFeed
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	v := Vehicle{DB: databases.NewVehicleDatabase(a.dbHelper)}
	h := VehicleHistory{DB: databases.NewVehicleHistoryDatabase(a.dbHelper)}
	imp := VehicleImport{DB: databases.NewVehicleDatabase(a.dbHelper)}
	s := Stats{DB: databases.NewVehicleDatabase(a.dbHelper)}
	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	adm := Admin{DB: databases.NewUserDatabase(a.dbHelper)}
	a.LiveFeed = NewLiveFeed(databases.NewVehicleDatabase(a.dbHelper), 0)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(api.QueryTimeout))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")

	apiCreate.Handle("/vehicles", api.Middleware(http.HandlerFunc(v.VehicleHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/live", api.Middleware(http.HandlerFunc(v.LiveVehiclesHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/export", api.Middleware(http.HandlerFunc(v.ExportVehiclesCSVHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/import", api.Middleware(http.HandlerFunc(imp.ImportVehiclesCSVHandler))).Methods("POST")
	apiCreate.Handle("/vehicles/stats", api.Middleware(http.HandlerFunc(s.FleetStatsHandler))).Methods("GET")

	apiCreate.Handle("/vehicle", api.Middleware(http.HandlerFunc(v.CreateVehicleHandler))).Methods("POST")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.VehicleByIDHandler))).Methods("GET")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.UpdateVehicleHandler))).Methods("PUT")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.AdminMiddleware(http.HandlerFunc(v.DeleteVehicleHandler))).Methods("DELETE")
	apiCreate.Handle("/vehicle/{vehicle_id}/history", api.Middleware(http.HandlerFunc(h.VehicleHistoryHandler))).Methods("GET")
	apiCreate.Handle("/vehicle/{vehicle_id}/history", api.Middleware(http.HandlerFunc(h.AddVehicleHistoryHandler))).Methods("POST")

	apiCreate.Handle("/metrics", http.HandlerFunc(MetricsSummaryHandler)).Methods("GET")

	// websocket endpoint lives outside the timeout subrouter
	r.HandleFunc("/ws/vehicles", a.LiveFeed.LiveFeedHandler)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("fleet-api has connected to the database")

	// initialize api router
	a.initializeRoutes()

	if a.Config.HeartbeatSchedule != "" {
		a.Scheduler = scheduler.NewScheduler(
			databases.NewVehicleDatabase(a.dbHelper),
			databases.NewVehicleHistoryDatabase(a.dbHelper),
			a.Config.HeartbeatSchedule,
			a.Config.HeartbeatStaleness,
		)
		if err := a.Scheduler.Start(); err != nil {
			zap.S().With(err).Error("failed to start heartbeat sweep")
			return err
		}
	}

	go a.LiveFeed.Run(context.Background())

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
