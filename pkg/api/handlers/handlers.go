// Package handlers implements the request handlers for the semgov API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/semlayer/semgov/pkg/export"
	"github.com/semlayer/semgov/pkg/registry"
	"github.com/semlayer/semgov/pkg/store"
)

// Server holds the handler dependencies
type Server struct {
	registry registry.Service
	exporter *export.Exporter
	log      logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(reg registry.Service, exporter *export.Exporter, log logrus.FieldLogger) *Server {
	return &Server{
		registry: reg,
		exporter: exporter,
		log:      log.WithField("component", "api.handlers"),
	}
}

// Register wires all routes onto the router group
func (s *Server) Register(r fiber.Router) {
	r.Get("/metrics", s.ListMetrics)
	r.Post("/metrics", s.DefineMetric)
	r.Get("/metrics/:id", s.GetMetric)
	r.Patch("/metrics/:id", s.UpdateMetric)
	r.Delete("/metrics/:id", s.DeleteMetric)

	r.Post("/metrics/:id/usage", s.RecordUsage)
	r.Get("/metrics/:id/usage", s.GetUsageStats)
	r.Get("/metrics/:id/history", s.GetChangeHistory)

	r.Get("/metrics/:id/trust", s.GetTrustScore)
	r.Get("/metrics/:id/trust/history", s.GetTrustHistory)
	r.Get("/metrics/:id/trust/sparkline", s.GetTrustSparkline)

	r.Post("/metrics/:id/validate", s.ValidateMetric)
	r.Get("/metrics/:id/lineage", s.GetLineage)
	r.Get("/metrics/:id/downstream", s.GetDownstream)
	r.Get("/metrics/:id/export/:format", s.ExportMetric)

	r.Get("/compare/:first/:second", s.CompareMetrics)

	r.Get("/lineage/audit", s.AuditLineage)
	r.Get("/lineage/info", s.GetLineageInfo)
	r.Get("/lineage/dot", s.GetLineageDOT)
}

// mapError translates service errors into HTTP errors.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrMetricNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrMetricExists
	case errors.Is(err, registry.ErrNameRequired),
		errors.Is(err, registry.ErrDescriptionRequired),
		errors.Is(err, registry.ErrCalculationRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		s.log.WithError(err).Error("Request failed")

		return err
	}
}
