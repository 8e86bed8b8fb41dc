package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/semlayer/semgov/pkg/export"
)

// ValidateBody is the request body for POST /metrics/:id/validate
type ValidateBody struct {
	// TestDescription, when set, records a validation test.
	TestDescription string `json:"test_description"`
}

// ValidateMetric handles POST /api/v1/metrics/:id/validate
func (s *Server) ValidateMetric(c fiber.Ctx) error {
	body := ValidateBody{}
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&body); err != nil {
			return ErrInvalidBody
		}
	}

	report, err := s.registry.Validate(c.Context(), c.Params("id"), body.TestDescription)
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

// CompareMetrics handles GET /api/v1/compare/:first/:second
func (s *Server) CompareMetrics(c fiber.Ctx) error {
	comparison, err := s.registry.Compare(c.Context(), c.Params("first"), c.Params("second"))
	if err != nil {
		return s.mapError(err)
	}

	return c.Status(fiber.StatusOK).JSON(comparison)
}

// ExportParams are the query parameters for GET /metrics/:id/export/:format
type ExportParams struct {
	View       string `query:"view"`
	Explore    string `query:"explore"`
	Connection string `query:"connection"`
}

// ExportMetric handles GET /api/v1/metrics/:id/export/:format
func (s *Server) ExportMetric(c fiber.Ctx) error {
	format, err := export.ParseFormat(c.Params("format"))
	if err != nil {
		return ErrInvalidFormat
	}

	var params ExportParams
	if err := c.Bind().Query(&params); err != nil {
		return ErrInvalidBody
	}

	id := c.Params("id")

	m, err := s.registry.Get(c.Context(), id)
	if err != nil {
		return s.mapError(err)
	}

	result, err := s.registry.Score(c.Context(), id, false)
	if err != nil {
		return s.mapError(err)
	}

	out, err := s.exporter.Export(m, result.Score, format, export.Options{
		View:       params.View,
		Explore:    params.Explore,
		Connection: params.Connection,
	})
	if err != nil {
		return s.mapError(err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

	return c.Status(fiber.StatusOK).SendString(out)
}
