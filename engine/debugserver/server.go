// Package debugserver exposes frame statistics over HTTP and a WebSocket feed while the engine runs.
package debugserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:6061"

// Source provides the data served by the debug endpoints. *profiler.Profiler implements it.
type Source interface {
	Stats() profiler.Stats
	Last() renderer.FrameReport
}

var _ Source = &profiler.Profiler{}

// Server serves GET /stats, GET /debug/frame and GET /ws.
type Server struct {
	mu *sync.Mutex

	source   Source
	logger   *log.Logger
	addr     string
	interval time.Duration

	handler  http.Handler
	upgrader websocket.Upgrader
	clients  map[*client]struct{}

	http     *http.Server
	listener net.Listener
	stop     chan struct{}
	done     chan struct{}
}

// NewServer builds the router and middleware. Nothing listens until Start.
//
// Parameters:
//   - source: the stats source
//   - opts: variadic list of ServerBuilderOption functions
//
// Returns:
//   - *Server: the server
func NewServer(source Source, opts ...ServerBuilderOption) *Server {
	if source == nil {
		panic("debugserver: source is required")
	}
	s := &Server{
		mu:       &sync.Mutex{},
		source:   source,
		addr:     DefaultAddr,
		interval: time.Second,
		clients:  make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}

	r := mux.NewRouter()
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/debug/frame", s.handleFrame).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS)

	std := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel})
	recovered := handlers.RecoveryHandler(handlers.RecoveryLogger(std), handlers.PrintRecoveryStack(true))(r)
	s.handler = handlers.LoggingHandler(std.Writer(), recovered)
	return s
}

// Handler returns the routed handler wrapped with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address once Start has succeeded, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listen address, then serves and broadcasts stats on background goroutines.
//
// Returns:
//   - error: error if the address cannot be bound or the server is already running
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return errors.New("debugserver: already started")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.addr)
	}
	s.listener = ln
	s.http = &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	srv := s.http
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server stopped", "err", err)
		}
	}()
	go s.broadcastLoop(s.stop, s.done)
	s.logger.Info("debug server listening", "addr", ln.Addr().String())
	return nil
}

func (s *Server) broadcastLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Broadcast pushes the current stats to every connected WebSocket client. Clients whose queue is full
// miss this message.
func (s *Server) Broadcast() {
	data, err := json.Marshal(s.source.Stats())
	if err != nil {
		s.logger.Error("encode stats", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown stops the broadcast loop, closes every client and gracefully stops the HTTP server.
//
// Parameters:
//   - ctx: bounds the graceful shutdown
//
// Returns:
//   - error: error from http.Server.Shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, stop, done := s.http, s.stop, s.done
	s.http, s.listener = nil, nil
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	close(stop)
	<-done
	return srv.Shutdown(ctx)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Stats()); err != nil {
		s.logger.Error("write stats", "err", err)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	cfg := spew.NewDefaultConfig()
	cfg.DisableCapacities = true
	cfg.DisablePointerAddresses = true
	cfg.Fdump(w, s.source.Last())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	data, err := json.Marshal(s.source.Stats())
	if err != nil {
		conn.Close()
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	c.send <- data
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go c.writePump()
	go c.readPump(func() { s.unregister(c) })
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}
