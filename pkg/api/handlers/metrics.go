package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/semlayer/semgov/pkg/registry"
	"github.com/semlayer/semgov/pkg/store"
)

// ListMetricsParams are the query parameters for GET /metrics
type ListMetricsParams struct {
	Query string `query:"q"`
	Tag   string `query:"tag"`
}

// ListMetrics handles GET /api/v1/metrics
func (s *Server) ListMetrics(c fiber.Ctx) error {
	var params ListMetricsParams
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	metrics, err := s.registry.Search(c.Context(), params.Query, params.Tag)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"metrics": metrics,
		"total":   len(metrics),
	})
}

// DefineMetric handles POST /api/v1/metrics
func (s *Server) DefineMetric(c fiber.Ctx) error {
	var def registry.Definition
	if err := c.Bind().Body(&def); err != nil {
		return ErrInvalidBody
	}

	m, err := s.registry.Define(c.Context(), &def)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// suggestionLimit caps "did you mean" hints on missed lookups.
const suggestionLimit = 3

// GetMetric handles GET /api/v1/metrics/:id
func (s *Server) GetMetric(c fiber.Ctx) error {
	id := c.Params("id")

	m, err := s.registry.Get(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		suggestions, suggestErr := s.registry.Suggest(c.Context(), id, suggestionLimit)
		if suggestErr != nil {
			suggestions = nil
		}

		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":        ErrMetricNotFound.Message,
			"did_you_mean": suggestions,
		})
	}

	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(m)
}

// UpdateMetricBody is the request body for PATCH /metrics/:id
type UpdateMetricBody struct {
	registry.UpdateRequest
	ChangedBy string `json:"changed_by"`
}

// UpdateMetric handles PATCH /api/v1/metrics/:id
func (s *Server) UpdateMetric(c fiber.Ctx) error {
	var body UpdateMetricBody
	if err := c.Bind().Body(&body); err != nil {
		return ErrInvalidBody
	}

	if body.ChangedBy == "" {
		body.ChangedBy = "api"
	}

	m, err := s.registry.Update(c.Context(), c.Params("id"), &body.UpdateRequest, body.ChangedBy)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(m)
}

// DeleteMetric handles DELETE /api/v1/metrics/:id
func (s *Server) DeleteMetric(c fiber.Ctx) error {
	if err := s.registry.Delete(c.Context(), c.Params("id")); err != nil {
		return s.mapError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RecordUsageBody is the request body for POST /metrics/:id/usage
type RecordUsageBody struct {
	UsedBy  string `json:"used_by"`
	Context string `json:"context"`
}

// RecordUsage handles POST /api/v1/metrics/:id/usage
func (s *Server) RecordUsage(c fiber.Ctx) error {
	var body RecordUsageBody
	if err := c.Bind().Body(&body); err != nil {
		return ErrInvalidBody
	}

	if err := s.registry.RecordUsage(c.Context(), c.Params("id"), body.UsedBy, body.Context); err != nil {
		return s.mapError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// WindowParams carry a day-window query parameter.
type WindowParams struct {
	Days int `query:"days"`
}

// GetUsageStats handles GET /api/v1/metrics/:id/usage
func (s *Server) GetUsageStats(c fiber.Ctx) error {
	params := WindowParams{Days: 30}
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	stats, err := s.registry.UsageStats(c.Context(), c.Params("id"), params.Days)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// HistoryParams carry a record-count limit.
type HistoryParams struct {
	Limit int `query:"limit"`
}

// GetChangeHistory handles GET /api/v1/metrics/:id/history
func (s *Server) GetChangeHistory(c fiber.Ctx) error {
	params := HistoryParams{Limit: 10}
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	history, err := s.registry.ChangeHistory(c.Context(), c.Params("id"), params.Limit)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"history": history,
		"total":   len(history),
	})
}
