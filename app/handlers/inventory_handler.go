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

// InventoryHandlerInterface defines the contract for number inventory handlers
type InventoryHandlerInterface interface {
	ListInventories(c fiber.Ctx) error
	GetInventory(c fiber.Ctx) error
	ReplaceInventory(c fiber.Ctx) error
}

// InventoryHandler implements InventoryHandlerInterface
type InventoryHandler struct {
	flow      businessflow.InventoryFlow
	validator *validator.Validate
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(flow businessflow.InventoryFlow) InventoryHandlerInterface {
	return &InventoryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListInventories returns every country's number list
// @Summary List inventories
// @Description List the full phone number inventory of every country
// @Tags Inventory
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.InventoryDTO} "Inventories"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/inventory [get]
func (h *InventoryHandler) ListInventories(c fiber.Ctx) error {
	inventories, err := h.flow.ListInventories(createRequestContext(c, "/api/v1/inventory"))
	if err != nil {
		log.Println("Inventory listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list inventories", "INVENTORY_LIST_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Inventories retrieved", inventories)
}

// GetInventory returns one country's number list
// @Summary Get inventory
// @Description Get the phone number inventory of one country; a country without numbers yields an empty list
// @Tags Inventory
// @Produce json
// @Param country path string true "Country name"
// @Success 200 {object} dto.APIResponse{data=dto.InventoryDTO} "Inventory"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/inventory/{country} [get]
func (h *InventoryHandler) GetInventory(c fiber.Ctx) error {
	country := c.Params("country")
	if country == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Country name is required", "INVALID_REQUEST", nil)
	}

	inventory, err := h.flow.GetInventory(createRequestContext(c, "/api/v1/inventory/:country"), country)
	if err != nil {
		log.Println("Inventory lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load inventory", "INVENTORY_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Inventory retrieved", inventory)
}

// ReplaceInventory overwrites a country's full number list
// @Summary Replace inventory
// @Description Overwrite the full phone number list of a country
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param country path string true "Country name"
// @Param request body dto.ReplaceInventoryRequest true "Number list"
// @Success 200 {object} dto.APIResponse{data=dto.InventoryDTO} "Inventory replaced"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Country not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/inventory/{country} [put]
func (h *InventoryHandler) ReplaceInventory(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	country := c.Params("country")
	if country == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Country name is required", "INVALID_REQUEST", nil)
	}

	var req dto.ReplaceInventoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ReplaceInventory(createRequestContext(c, "/api/v1/admin/inventory/:country"), country, &req, adminID, metadata)
	if err != nil {
		if businessflow.IsCountryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Country not found", "COUNTRY_NOT_FOUND", nil)
		}
		log.Println("Inventory replacement failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to replace inventory", "INVENTORY_REPLACE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Inventory replaced", result)
}
