package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fleetdash/fleet-api/databases"
	"github.com/fleetdash/fleet-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from a different origin
	},
}

// LiveFeed pushes the active fleet to connected dashboard clients
type LiveFeed struct {
	DB       databases.VehicleDatabase
	Interval time.Duration

	mutex   sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewLiveFeed exported for testing purposes
func NewLiveFeed(db databases.VehicleDatabase, interval time.Duration) *LiveFeed {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &LiveFeed{
		DB:       db,
		Interval: interval,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// LiveFeedHandler upgrades the request to a websocket and registers the
// client for periodic fleet snapshots
func (l *LiveFeed) LiveFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	l.mutex.Lock()
	l.clients[conn] = struct{}{}
	l.mutex.Unlock()
	zap.S().Infow("live feed client connected", "remote_addr", conn.RemoteAddr().String())

	go func() {
		defer func() {
			l.mutex.Lock()
			delete(l.clients, conn)
			l.mutex.Unlock()
			conn.Close()
			zap.S().Infow("live feed client disconnected", "remote_addr", conn.RemoteAddr().String())
		}()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

// Run broadcasts live vehicle snapshots until ctx is cancelled
func (l *LiveFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.broadcast(ctx)
		}
	}
}

func (l *LiveFeed) broadcast(ctx context.Context) {
	l.mutex.Lock()
	count := len(l.clients)
	l.mutex.Unlock()
	if count == 0 {
		return
	}

	vehicles, err := l.DB.Find(ctx,
		bson.M{"status": models.StatusActive},
		options.Find().SetSort(bson.M{"updated_at": -1}),
	)
	if err != nil {
		zap.S().Errorw("failed to load live vehicles for broadcast", "error", err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	payload := map[string]interface{}{
		"event": "live_vehicles",
		"data":  vehicles,
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	for conn := range l.clients {
		if err := conn.WriteJSON(payload); err != nil {
			zap.S().Warnw("dropping live feed client", "remote_addr", conn.RemoteAddr().String(), "error", err)
			delete(l.clients, conn)
			conn.Close()
		}
	}
}
