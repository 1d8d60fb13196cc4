package asset

import "github.com/charmbracelet/log"

// storeConfig holds the options shared by every Store instantiation.
type storeConfig struct {
	name    string
	workers int
	logger  *log.Logger
}

// StoreBuilderOption is a functional option used to configure a Store during construction.
type StoreBuilderOption func(*storeConfig)

// WithName sets the name used in log lines, e.g. "models".
func WithName(name string) StoreBuilderOption {
	return func(c *storeConfig) {
		c.name = name
	}
}

// WithWorkers sets how many files are decoded in parallel during DrainPending.
// Values below 1 decode on the calling goroutine.
//
// Parameters:
//   - n: the number of decode workers
//
// Returns:
//   - StoreBuilderOption: a function that applies the worker count to a store
func WithWorkers(n int) StoreBuilderOption {
	return func(c *storeConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger used for load and reload events.
func WithLogger(l *log.Logger) StoreBuilderOption {
	return func(c *storeConfig) {
		c.logger = l
	}
}
