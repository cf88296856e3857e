package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/ferrodyne/rtcore/logger"
	"github.com/ferrodyne/rtcore/task"
)

// CounterSource exposes the running Stats of every named task the executor
// is driving, for the /counters and /ws/telemetry endpoints.
type CounterSource func() map[string]task.Stats

// LevelSource exposes the safety system's current level name, for the
// /safety/level endpoint. Returns "" if no safety system is wired.
type LevelSource func() string

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is a read-only HTTP+WebSocket view onto executor counters and
// safety level: a diagnostic surface, not a control surface -- nothing
// reachable through it can influence the executor, preserving the core's
// no-wire-protocol contract (see spec.md §6).
//
// Grounded on the teacher's chi-based demo command-servers in spirit, and
// on CodedInternet-godynastat's signaling server for the websocket
// broadcast loop (there: gorilla/mux + redis pub/sub; here: chi + a local
// ticker, since there is no external broker to subscribe to).
type Server struct {
	router  chi.Router
	stats   CounterSource
	level   LevelSource
	log     *logger.Logger
	clients sync.Map // *websocket.Conn -> struct{}
}

// NewServer wires the routes. stats and level may be nil if that facet is
// not available (e.g. no safety system configured).
func NewServer(stats CounterSource, level LevelSource, log *logger.Logger) *Server {
	s := &Server{stats: stats, level: level, log: log.WithChannel("telemetry")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/counters", s.handleCounters)
	r.Get("/safety/level", s.handleLevel)
	r.Get("/ws/telemetry", s.handleWS)
	s.router = r

	return s
}

// ServeHTTP lets Server plug into any http.Server as its Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "no counter source configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats())
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	if s.level == nil {
		http.Error(w, "no safety system configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"level": s.level()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.clients.Store(conn, struct{}{})
	defer func() {
		s.clients.Delete(conn)
		conn.Close()
	}()

	// Drain and discard client reads; this is a push-only feed, but we
	// still need to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes one JSON snapshot (counters + safety level, if
// available) to every connected WebSocket client. Call it on a ticker from
// the hosting binary; it never blocks the executor's own tick.
func (s *Server) Broadcast() {
	snapshot := struct {
		Counters map[string]task.Stats `json:"counters,omitempty"`
		Level    string                `json:"level,omitempty"`
		At       time.Time             `json:"at"`
	}{At: time.Now()}

	if s.stats != nil {
		snapshot.Counters = s.stats()
	}
	if s.level != nil {
		snapshot.Level = s.level()
	}

	s.clients.Range(func(key, _ any) bool {
		conn := key.(*websocket.Conn)
		if err := conn.WriteJSON(snapshot); err != nil {
			s.clients.Delete(conn)
			conn.Close()
		}
		return true
	})
}
