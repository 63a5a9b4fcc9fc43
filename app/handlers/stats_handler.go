// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/middleware"
	businessflow "github.com/tasksms/dashboard/business_flow"
)

// StatsHandlerInterface defines the contract for display counter handlers
type StatsHandlerInterface interface {
	GetStats(c fiber.Ctx) error
	UpdateStats(c fiber.Ctx) error
}

// StatsHandler implements StatsHandlerInterface
type StatsHandler struct {
	flow      businessflow.StatsFlow
	validator *validator.Validate
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(flow businessflow.StatsFlow) StatsHandlerInterface {
	return &StatsHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// GetStats returns the dashboard display counters
// @Summary Get stats
// @Description The admin-edited display counters; zeros when never written
// @Tags Stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatsDTO} "Stats"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.flow.GetStats(createRequestContext(c, "/api/v1/stats"))
	if err != nil {
		log.Println("Stats lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load stats", "STATS_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Stats retrieved", stats)
}

// UpdateStats overwrites the display counters
// @Summary Update stats
// @Description Overwrite the dashboard display counters
// @Tags Stats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateStatsRequest true "Counter values"
// @Success 200 {object} dto.APIResponse{data=dto.StatsDTO} "Stats updated"
// @Failure 400 {object} dto.APIResponse "Invalid or negative values"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/stats [put]
func (h *StatsHandler) UpdateStats(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateStatsRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateStats(createRequestContext(c, "/api/v1/admin/stats"), &req, adminID, metadata)
	if err != nil {
		if businessflow.IsNegativeStatsValue(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Stats values cannot be negative", "NEGATIVE_STATS_VALUE", nil)
		}
		log.Println("Stats update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update stats", "STATS_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Stats updated", result)
}
