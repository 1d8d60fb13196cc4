package debugserver

import (
	"time"

	"github.com/charmbracelet/log"
)

// ServerBuilderOption is a functional option used to configure a Server during construction.
type ServerBuilderOption func(*Server)

// WithAddr sets the listen address, e.g. "127.0.0.1:6061" or ":0" for an ephemeral port.
func WithAddr(addr string) ServerBuilderOption {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithInterval sets how often stats are pushed to WebSocket clients.
//
// Parameters:
//   - d: the push interval, values at or below zero keep the 1 second default
//
// Returns:
//   - ServerBuilderOption: a function that applies the interval to a server
func WithInterval(d time.Duration) ServerBuilderOption {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger used for request logs and server events.
func WithLogger(l *log.Logger) ServerBuilderOption {
	return func(s *Server) {
		s.logger = l
	}
}
