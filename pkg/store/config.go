package store

import (
	"errors"
)

// Default static errors
var (
	ErrPathRequired = errors.New("path is required")
)

// Config contains the configuration for the metric store
type Config struct {
	// Path is the SQLite database file path. ":memory:" runs fully
	// in-memory, which the tests rely on.
	Path string `yaml:"path" default:"metrics.db"`
	// BusyTimeout is how long SQLite waits on a locked database, in
	// milliseconds.
	BusyTimeout int `yaml:"busyTimeout" default:"5000"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrPathRequired
	}

	return nil
}
