// Package stream pushes live simulation frames to browser viewers over
// websockets. The viewer is pure presentation: it renders whatever frames
// arrive and never reaches into the core beyond the read-only snapshots
// packaged here.
package stream

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/talgya/outbreak/internal/engine"
	"github.com/talgya/outbreak/internal/sim"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Frame is one rendered-state update sent to every connected viewer.
type Frame struct {
	Type       string          `json:"type"` // Always "frame"
	Tick       uint64          `json:"tick"`
	TPS        float64         `json:"tps"`
	Agents     []sim.AgentView `json:"agents"`
	Counts     sim.Counts      `json:"counts"`
	Eradicated bool            `json:"eradicated"`
}

// client is one websocket connection. Writes are serialized per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected viewers and broadcasts frames to all of them.
type Hub struct {
	pop *sim.Population
	eng *engine.Engine

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub serving the given population and engine.
func NewHub(pop *sim.Population, eng *engine.Engine) *Hub {
	return &Hub{
		pop:     pop,
		eng:     eng,
		clients: make(map[*client]struct{}),
	}
}

// Handle upgrades an HTTP request to a websocket viewer connection.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("viewer connected", "remote", conn.RemoteAddr())

	cfg := h.pop.Config()
	_ = c.send(map[string]any{
		"type":             "config",
		"region_size":      h.pop.Size(),
		"agents":           h.pop.Count(),
		"infection_radius": cfg.InfectionRadius,
	})

	// Read loop: viewer commands. Only engine pacing is adjustable — the
	// epidemiological knobs are fixed for the lifetime of the run.
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		msgType, _ := msg["type"].(string)
		switch msgType {
		case "speed":
			if v, ok := msg["value"].(float64); ok {
				if v < 0 {
					v = 0
				}
				if v > 4 {
					v = 4
				}
				h.eng.SetSpeed(v)
				slog.Info("viewer set speed", "speed", v)
			}
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()
	slog.Info("viewer disconnected", "remote", conn.RemoteAddr())
}

// BroadcastFrame snapshots the simulation and sends it to every viewer.
// Dead connections are dropped.
func (h *Hub) BroadcastFrame(tick uint64) {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	frame := Frame{
		Type:       "frame",
		Tick:       tick,
		TPS:        h.eng.TPS(),
		Agents:     h.pop.AgentViews(),
		Counts:     h.pop.Counts(),
		Eradicated: h.pop.Eradicated(),
	}

	for _, c := range list {
		if err := c.send(frame); err != nil {
			slog.Info("dropping viewer", "error", err)
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.conn.Close()
		}
	}
}
