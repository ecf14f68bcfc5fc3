// Package web provides an HTTP status server for the alarm daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/marker"
	"github.com/sweeney/alarmd/internal/status"
)

// Commands lets /cmd/{symbol} raise a command by creating its marker, which
// the loop consumes on its next pass.
type Commands struct {
	Store marker.Store
	List  []logic.Command
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	cmds       Commands
}

// New creates a Server that reads state from the given tracker. metrics, if
// non-nil, is mounted at /metrics. The sensor and command routes answer
// loopback clients only.
func New(addr string, tracker *status.Tracker, metrics http.Handler, cmds Commands) *Server {
	s := &Server{tracker: tracker, cmds: cmds}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	r.Group(func(r chi.Router) {
		r.Use(localOnly)
		r.Get("/sensor/{name}", s.handleSensor)
		r.Get("/cmd/{symbol}", s.handleCommand)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// SensorJSON is the body of /sensor/{name}.
type SensorJSON struct {
	Value int `json:"value"`
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sensor, ok := s.tracker.Snapshot().Sensor(name)
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown sensor " + name})
		return
	}
	json.NewEncoder(w).Encode(SensorJSON{Value: status.Bit(sensor.Value)})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	w.Header().Set("Content-Type", "application/json")
	for _, c := range s.cmds.List {
		if c.Symbol != symbol || s.cmds.Store == nil {
			continue
		}
		if err := s.cmds.Store.Create(r.Context(), symbol); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{string(c.Event()): "OK"})
		return
	}
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "unknown command " + symbol})
}

func localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
