package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/semlayer/semgov/pkg/observability"
	"github.com/semlayer/semgov/pkg/registry"
)

// Service runs periodic rescoring sweeps over the catalog
type Service interface {
	// Start begins the sweep ticker. Non-blocking.
	Start(ctx context.Context) error
	// Stop shuts down the ticker
	Stop() error
	// Sweep rescores every metric once, persisting each score, and
	// returns how many metrics were scored
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	log      logrus.FieldLogger
	cfg      *Config
	registry registry.Service
	interval time.Duration
	done     chan struct{}
}

var _ Service = (*service)(nil)

// NewService creates a new rescoring sweep service
func NewService(log logrus.FieldLogger, cfg *Config, reg registry.Service) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc := &service{
		log:      log.WithField("service", "scheduler"),
		cfg:      cfg,
		registry: reg,
		done:     make(chan struct{}),
	}

	if cfg.Enabled {
		interval, err := parseScheduleInterval(cfg.Schedule)
		if err != nil {
			return nil, err
		}

		svc.interval = interval
	}

	return svc, nil
}

func (s *service) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("Rescoring sweeps disabled")

		return nil
	}

	s.log.WithFields(logrus.Fields{
		"schedule": s.cfg.Schedule,
		"interval": s.interval,
	}).Info("Starting rescoring sweeps")

	go s.run(ctx)

	return nil
}

func (s *service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *service) runSweep(ctx context.Context) {
	runID := uuid.New().String()
	log := s.log.WithField("run_id", runID)
	start := time.Now()

	scored, err := s.Sweep(ctx)

	duration := time.Since(start)

	status := "success"

	switch {
	case err != nil && scored == 0:
		status = "error"
	case err != nil:
		status = "partial"
	}

	observability.RecordSweep(status, duration.Seconds(), scored)

	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"scored":   scored,
			"duration": duration,
		}).Warn("Rescoring sweep finished with errors")

		return
	}

	log.WithFields(logrus.Fields{
		"scored":   scored,
		"duration": duration,
	}).Info("Rescoring sweep complete")
}

func (s *service) Sweep(ctx context.Context) (int, error) {
	metrics, err := s.registry.Search(ctx, "", "")
	if err != nil {
		return 0, fmt.Errorf("failed to list metrics: %w", err)
	}

	scored := 0

	var firstErr error

	for _, m := range metrics {
		if _, err := s.registry.Score(ctx, m.ID, true); err != nil {
			s.log.WithError(err).WithField("metric_id", m.ID).Warn("Failed to rescore metric")

			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		scored++
	}

	return scored, firstErr
}

func (s *service) Stop() error {
	if !s.cfg.Enabled {
		return nil
	}

	s.log.Info("Stopping rescoring sweeps")
	close(s.done)

	return nil
}
