// Package scheduler periodically rescores the catalog so trust scores
// and their history stay current without manual requests.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config defines rescoring sweep configuration
type Config struct {
	Enabled  bool   `yaml:"enabled" default:"true"`
	Schedule string `yaml:"schedule" default:"@every 1h"`
}

// Validate checks if the scheduler configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if _, err := parseScheduleInterval(c.Schedule); err != nil {
		return err
	}

	return nil
}

// parseScheduleInterval converts a cron schedule string to a duration.
// Supports @every format (e.g., "@every 30s", "@every 5m") and standard
// cron expressions.
func parseScheduleInterval(schedule string) (time.Duration, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	sched, err := parser.Parse(schedule)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule format: %w", err)
	}

	// For @every format, extract the duration directly
	if len(schedule) > 7 && schedule[:6] == "@every" {
		duration, err := time.ParseDuration(schedule[7:])
		if err != nil {
			return 0, fmt.Errorf("failed to parse @every duration: %w", err)
		}

		return duration, nil
	}

	// For standard cron expressions, calculate next two runs and use the gap
	now := time.Now()
	next1 := sched.Next(now)
	next2 := sched.Next(next1)

	return next2.Sub(next1), nil
}
