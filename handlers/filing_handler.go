package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fenilmodi00/sebi-ipo-api/services"
	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

type FilingHandler struct {
	Service *services.FilingService
}

func NewFilingHandler(service *services.FilingService) *FilingHandler {
	return &FilingHandler{Service: service}
}

// GetFilings returns one page of filings, newest first, with optional
// company substring and exact filing-date filters.
func (h *FilingHandler) GetFilings(c *fiber.Ctx) error {
	page, err := parseMinQuery(c, "page", 1, 1)
	if err != nil {
		return badRequest(c, err)
	}
	limit, err := parseRangeQuery(c, "limit", 50, 1, 500)
	if err != nil {
		return badRequest(c, err)
	}

	company := c.Query("company")
	date := c.Query("date")
	offset := (page - 1) * limit

	total, filings, err := h.Service.ListFilings(c.Context(), company, date, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"data":        filings,
	})
}

// GetLatestFilings returns the newest limit filings. count is the number of
// rows returned, not the table total.
func (h *FilingHandler) GetLatestFilings(c *fiber.Ctx) error {
	limit, err := parseRangeQuery(c, "limit", 10, 1, 100)
	if err != nil {
		return badRequest(c, err)
	}

	filings, err := h.Service.LatestFilings(c.Context(), limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(filings),
		"data":  filings,
	})
}

// GetFilingByID returns the bare record object for an existing id.
func (h *FilingHandler) GetFilingByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid filing ID",
		})
	}

	filing, err := h.Service.GetFilingByID(c.Context(), int64(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	if filing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "IPO not found",
		})
	}
	return c.JSON(filing)
}

// totalPages is ceil(total/limit); zero when the table is empty.
func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// respondServiceError maps service-layer failures onto the error contract:
// connection failures get the fixed message, query failures surface the raw
// error text.
func respondServiceError(c *fiber.Ctx, err error) error {
	var se *shared.ServiceError
	if errors.As(err, &se) {
		se.LogError()
		return c.Status(se.HTTPStatus()).JSON(fiber.Map{
			"success": false,
			"error":   se.PublicMessage(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Error: " + err.Error(),
	})
}

// parseMinQuery reads an integer query parameter with a lower bound only.
// An absent parameter yields the default; a malformed or out-of-bounds one
// is rejected before any query runs.
func parseMinQuery(c *fiber.Ctx, name string, def, min int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < min {
		return 0, fmt.Errorf("%s must be greater than or equal to %d", name, min)
	}
	return n, nil
}

// parseRangeQuery reads an integer query parameter bounded on both sides.
func parseRangeQuery(c *fiber.Ctx, name string, def, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return n, nil
}
