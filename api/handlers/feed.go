package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

// EmergencyFeed holds the websocket connections subscribed to the live
// emergency feed. Every connected client receives every event.
type EmergencyFeed struct {
	clients map[*websocket.Conn]struct{}
	mutex   sync.Mutex
}

// NewEmergencyFeed creates an empty feed hub
func NewEmergencyFeed() *EmergencyFeed {
	return &EmergencyFeed{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeWS upgrades the request and registers the client on the feed
func (f *EmergencyFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorf("WebSocket upgrade error: %v", err)
		return
	}

	f.mutex.Lock()
	f.clients[conn] = struct{}{}
	total := len(f.clients)
	f.mutex.Unlock()
	zap.S().Debugf("client connected to /ws/emergencies, total: %d", total)

	conn.SetCloseHandler(func(code int, text string) error {
		f.mutex.Lock()
		delete(f.clients, conn)
		f.mutex.Unlock()
		zap.S().Debug("client disconnected from /ws/emergencies")
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			f.mutex.Lock()
			delete(f.clients, conn)
			f.mutex.Unlock()
			conn.Close()
			break
		}
	}
}

// Broadcast sends an event to every connected client. Clients whose write
// fails are dropped from the feed.
func (f *EmergencyFeed) Broadcast(event string, data interface{}) {
	if f == nil {
		return
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for conn := range f.clients {
		err := conn.WriteJSON(map[string]interface{}{
			"event": event,
			"data":  data,
		})
		if err != nil {
			zap.S().Errorf("error broadcasting %s event: %v", event, err)
			delete(f.clients, conn)
			conn.Close()
		}
	}
}
