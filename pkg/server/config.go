// Package server wires the metric store, registry, API, and rescoring
// sweeps into a single long-running process.
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/semlayer/semgov/pkg/api"
	"github.com/semlayer/semgov/pkg/scheduler"
	"github.com/semlayer/semgov/pkg/store"
)

// Define static errors
var (
	ErrStoreConfigRequired = errors.New("store configuration is required")
)

// Config holds server configuration
type Config struct {
	// LoggingLevel is the logging level to use.
	LoggingLevel string `yaml:"logging" default:"info"`
	// MetricsAddr is the address to listen on for metrics.
	MetricsAddr string `yaml:"metricsAddr" default:":9090"`
	// HealthCheckAddr is the address to listen on for healthcheck.
	HealthCheckAddr *string `yaml:"healthCheckAddr"`
	// PProfAddr is the address to listen on for pprof.
	PProfAddr *string `yaml:"pprofAddr"`
	// ShutdownTimeout is the timeout for shutting down the server.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"10s"`
	// Store is the metric store configuration.
	Store *store.Config `yaml:"store"`
	// API is the HTTP API configuration.
	API *api.Config `yaml:"api"`
	// Scheduler is the rescoring sweep configuration.
	Scheduler *scheduler.Config `yaml:"scheduler"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store == nil {
		return ErrStoreConfigRequired
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("invalid api configuration: %w", err)
		}
	}

	if c.Scheduler != nil {
		if err := c.Scheduler.Validate(); err != nil {
			return fmt.Errorf("invalid scheduler configuration: %w", err)
		}
	}

	return nil
}
