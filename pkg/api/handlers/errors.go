package handlers

import "github.com/gofiber/fiber/v3"

// ErrMetricNotFound is returned when a metric id is unknown
var ErrMetricNotFound = fiber.NewError(fiber.StatusNotFound, "metric not found")

// ErrMetricExists is returned when defining over an existing metric id
var ErrMetricExists = fiber.NewError(fiber.StatusConflict, "metric already exists")

// ErrInvalidBody is returned when the request body cannot be parsed
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrInvalidFormat is returned for an unknown export format
var ErrInvalidFormat = fiber.NewError(fiber.StatusBadRequest, "invalid export format, expected lookml, tds or dbt")
