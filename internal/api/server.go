// Package api provides the HTTP surface for the simulation: a read-only
// JSON observation API, the websocket viewer endpoint, and the static
// viewer page. POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/outbreak/internal/engine"
	"github.com/talgya/outbreak/internal/sim"
	"github.com/talgya/outbreak/internal/stream"
)

// Server serves simulation state over HTTP.
type Server struct {
	Pop       *sim.Population
	Eng       *engine.Engine
	Hub       *stream.Hub
	RunID     uuid.UUID
	Port      int
	AdminKey  string // Bearer token for POST endpoints. Empty = POST disabled.
	StaticDir string // Viewer page root

	started time.Time
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()

	// The full agent dump is the one expensive endpoint (every agent,
	// every request) — keep scrapers off it.
	agentLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/counts", s.handleCounts)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/agents", RateLimitMiddleware(agentLimiter, s.handleAgents))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	// Live viewer.
	if s.Hub != nil {
		mux.HandleFunc("/ws", s.Hub.Handle)
	}
	if s.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.StaticDir)))
	}

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows browser frontends served from other origins to read
// the observation API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no OUTBREAK_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts := s.Pop.Counts()
	writeJSON(w, map[string]any{
		"name":        "Outbreak",
		"run_id":      s.RunID.String(),
		"tick":        s.Eng.CurrentTick(),
		"tps":         s.Eng.TPS(),
		"speed":       s.Eng.Speed(),
		"running":     s.Eng.Running(),
		"uptime":      humanize.RelTime(s.started, time.Now(), "", ""),
		"agents":      s.Pop.Count(),
		"region_size": s.Pop.Size(),
		"counts":      counts,
		"eradicated":  counts.Infected == 0,
	})
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pop.Counts())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.Pop.History()
	writeJSON(w, map[string]any{
		"samples": len(history),
		"agents":  s.Pop.Count(),
		"history": history,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"infection_radius": s.Pop.Config().InfectionRadius,
		"agents":           s.Pop.AgentViews(),
	})
}

// handleSpeed adjusts engine pacing. This is loop pacing only — the
// epidemiological parameters are fixed at construction.
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"speed": s.Eng.Speed()})
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 4 {
		http.Error(w, "speed must be in [0, 4]", http.StatusBadRequest)
		return
	}

	s.Eng.SetSpeed(req.Speed)
	slog.Info("engine speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
