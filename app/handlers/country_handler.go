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

// CountryHandlerInterface defines the contract for country handlers
type CountryHandlerInterface interface {
	ListCountries(c fiber.Ctx) error
	CreateCountry(c fiber.Ctx) error
	UpdateCountry(c fiber.Ctx) error
	DeleteCountry(c fiber.Ctx) error
}

// CountryHandler implements CountryHandlerInterface
type CountryHandler struct {
	flow      businessflow.CountryFlow
	validator *validator.Validate
}

// NewCountryHandler creates a new country handler
func NewCountryHandler(flow businessflow.CountryFlow) CountryHandlerInterface {
	return &CountryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListCountries returns all countries in display order
// @Summary List countries
// @Description List all countries with dial codes and flag thumbnails
// @Tags Countries
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CountryDTO} "Countries"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/countries [get]
func (h *CountryHandler) ListCountries(c fiber.Ctx) error {
	countries, err := h.flow.ListCountries(createRequestContext(c, "/api/v1/countries"))
	if err != nil {
		log.Println("Country listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list countries", "COUNTRY_LIST_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Countries retrieved", countries)
}

// CreateCountry adds a country to the pool
// @Summary Create country
// @Description Create a country; the flag image is decoded and downscaled to a thumbnail
// @Tags Countries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCountryRequest true "Country data"
// @Success 201 {object} dto.APIResponse{data=dto.CountryDTO} "Country created"
// @Failure 400 {object} dto.APIResponse "Invalid request or flag image"
// @Failure 409 {object} dto.APIResponse "Country already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/countries [post]
func (h *CountryHandler) CreateCountry(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateCountryRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateCountry(createRequestContext(c, "/api/v1/admin/countries"), &req, adminID, metadata)
	if err != nil {
		if businessflow.IsCountryAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Country already exists", "COUNTRY_ALREADY_EXISTS", nil)
		}
		if businessflow.IsInvalidFlagImage(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Flag image could not be decoded", "INVALID_FLAG_IMAGE", nil)
		}
		if businessflow.IsCountryNameRequired(err) || businessflow.IsDialCodeRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Country name and dial code are required", "VALIDATION_ERROR", nil)
		}
		log.Println("Country creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create country", "COUNTRY_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Country created", result)
}

// UpdateCountry changes a country's dial code or flag; the name is immutable
// @Summary Update country
// @Description Update mutable country fields (dial code, flag image)
// @Tags Countries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Country UUID"
// @Param request body dto.UpdateCountryRequest true "Country updates"
// @Success 200 {object} dto.APIResponse{data=dto.CountryDTO} "Country updated"
// @Failure 400 {object} dto.APIResponse "Invalid request or flag image"
// @Failure 404 {object} dto.APIResponse "Country not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/countries/{uuid} [put]
func (h *CountryHandler) UpdateCountry(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	countryUUID := c.Params("uuid")
	if countryUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Country UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateCountryRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateCountry(createRequestContext(c, "/api/v1/admin/countries/:uuid"), countryUUID, &req, adminID, metadata)
	if err != nil {
		if businessflow.IsCountryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Country not found", "COUNTRY_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidFlagImage(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Flag image could not be decoded", "INVALID_FLAG_IMAGE", nil)
		}
		log.Println("Country update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update country", "COUNTRY_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Country updated", result)
}

// DeleteCountry removes a country entry
// @Summary Delete country
// @Description Delete a country; its inventory and allocations are left untouched
// @Tags Countries
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Country UUID"
// @Success 200 {object} dto.APIResponse "Country deleted"
// @Failure 404 {object} dto.APIResponse "Country not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/countries/{uuid} [delete]
func (h *CountryHandler) DeleteCountry(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	countryUUID := c.Params("uuid")
	if countryUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Country UUID is required", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.DeleteCountry(createRequestContext(c, "/api/v1/admin/countries/:uuid"), countryUUID, adminID, metadata); err != nil {
		if businessflow.IsCountryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Country not found", "COUNTRY_NOT_FOUND", nil)
		}
		log.Println("Country deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete country", "COUNTRY_DELETE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Country deleted", nil)
}
