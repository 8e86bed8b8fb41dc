package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// LineageParams are the query parameters for GET /metrics/:id/lineage
type LineageParams struct {
	Depth int `query:"depth"`
}

// GetLineage handles GET /api/v1/metrics/:id/lineage
func (s *Server) GetLineage(c fiber.Ctx) error {
	params := LineageParams{Depth: 3}
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	id := c.Params("id")

	if _, err := s.registry.Get(c.Context(), id); err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tree":  s.registry.UpstreamTree(id, params.Depth),
		"cycle": s.registry.DetectCycle(id),
	})
}

// GetDownstream handles GET /api/v1/metrics/:id/downstream
func (s *Server) GetDownstream(c fiber.Ctx) error {
	downstream, err := s.registry.Downstream(c.Context(), c.Params("id"))
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"downstream": downstream,
		"total":      len(downstream),
	})
}

// AuditLineage handles GET /api/v1/lineage/audit
func (s *Server) AuditLineage(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(s.registry.AuditLineage())
}

// GetLineageInfo handles GET /api/v1/lineage/info
func (s *Server) GetLineageInfo(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(s.registry.LineageInfo())
}

// GetLineageDOT handles GET /api/v1/lineage/dot
func (s *Server) GetLineageDOT(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/vnd.graphviz")

	return c.Status(fiber.StatusOK).SendString(s.registry.LineageDOT())
}
