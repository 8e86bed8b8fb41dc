package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/semlayer/semgov/pkg/trust"
)

// TrustParams are the query parameters for GET /metrics/:id/trust
type TrustParams struct {
	// Persist records the computed score as a snapshot.
	Persist bool `query:"persist"`
}

// GetTrustScore handles GET /api/v1/metrics/:id/trust
func (s *Server) GetTrustScore(c fiber.Ctx) error {
	var params TrustParams
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	result, err := s.registry.Score(c.Context(), c.Params("id"), params.Persist)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetTrustHistory handles GET /api/v1/metrics/:id/trust/history
func (s *Server) GetTrustHistory(c fiber.Ctx) error {
	params := WindowParams{Days: 90}
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	history, err := s.registry.ScoreHistory(c.Context(), c.Params("id"), params.Days)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"history": history,
		"total":   len(history),
	})
}

// GetTrustSparkline handles GET /api/v1/metrics/:id/trust/sparkline
func (s *Server) GetTrustSparkline(c fiber.Ctx) error {
	params := WindowParams{Days: 90}
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	history, err := s.registry.ScoreHistory(c.Context(), c.Params("id"), params.Days)
	if err != nil {
		return s.mapError(err)
	}

	// History is newest first; the sparkline reads left to right.
	scores := make([]float64, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		scores = append(scores, history[i].Score)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"scores":    scores,
		"levels":    trust.Levels(scores),
		"sparkline": trust.Sparkline(scores),
	})
}
