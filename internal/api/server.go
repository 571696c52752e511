// Package api provides the read-only HTTP observer for a running
// simulation: JSON state endpoints plus a websocket tick-event stream.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hamlet/internal/engine"
)

// Server serves simulation state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	Eng  *engine.Engine
	Addr string

	upgrader websocket.Upgrader
}

// NewServer creates an observer server.
func NewServer(sim *engine.Simulation, eng *engine.Engine, addr string) *Server {
	return &Server{
		Sim:  sim,
		Eng:  eng,
		Addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Observers are read-only; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/ws", s.handleWS)

	slog.Info("observer API starting", "addr", s.Addr)
	go func() {
		if err := http.ListenAndServe(s.Addr, mux); err != nil {
			slog.Error("observer API server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"run":      s.Sim.RunID.String(),
		"world":    s.Sim.World.Name,
		"tick":     s.Sim.LastTick,
		"sim_time": s.Sim.World.Now.Format(time.RFC3339),
		"agents":   len(s.Sim.World.Agents),
		"running":  s.Eng != nil && s.Eng.Running,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, s.Sim.RecentEvents(limit))
}

// handleWS streams tick events to a websocket observer, polling the
// bounded event log and forwarding anything new.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	slog.Info("observer connected", "remote", r.RemoteAddr)

	var lastTick uint64
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	// Discard inbound frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for range ticker.C {
		events := s.Sim.RecentEvents(0)
		var fresh []engine.Event
		for _, e := range events {
			if e.Tick > lastTick {
				fresh = append(fresh, e)
			}
		}
		if len(fresh) == 0 {
			continue
		}
		lastTick = fresh[len(fresh)-1].Tick

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(fresh); err != nil {
			slog.Debug("observer disconnected", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response failed", "error", err)
	}
}
