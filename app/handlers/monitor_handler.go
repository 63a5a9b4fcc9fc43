// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/middleware"
	businessflow "github.com/tasksms/dashboard/business_flow"
)

// MonitorHandlerInterface defines the contract for the admin monitor handlers
type MonitorHandlerInterface interface {
	MonitorRows(c fiber.Ctx) error
	ExportMonitor(c fiber.Ctx) error
}

// MonitorHandler implements MonitorHandlerInterface
type MonitorHandler struct {
	messageFlow businessflow.MessageFlow
	exportFlow  businessflow.ExportFlow
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(messageFlow businessflow.MessageFlow, exportFlow businessflow.ExportFlow) MonitorHandlerInterface {
	return &MonitorHandler{
		messageFlow: messageFlow,
		exportFlow:  exportFlow,
	}
}

// MonitorRows returns one row per inventory number with holder and activity
// @Summary Monitor rows
// @Description One row per inventory number: country, holder, and recent message activity
// @Tags Monitor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MonitorRowDTO} "Monitor rows"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/monitor [get]
func (h *MonitorHandler) MonitorRows(c fiber.Ctx) error {
	rows, err := h.messageFlow.MonitorRows(createRequestContext(c, "/api/v1/admin/monitor"))
	if err != nil {
		log.Println("Monitor lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load monitor", "MONITOR_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Monitor retrieved", rows)
}

// ExportMonitor streams the monitor as an XLSX download
// @Summary Export monitor
// @Description Download the monitor as an XLSX workbook
// @Tags Monitor
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "XLSX workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/monitor/export [get]
func (h *MonitorHandler) ExportMonitor(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	filename, content, err := h.exportFlow.ExportMonitor(createRequestContext(c, "/api/v1/admin/monitor/export"), adminID, metadata)
	if err != nil {
		log.Println("Monitor export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export monitor", "MONITOR_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
