// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/middleware"
	businessflow "github.com/tasksms/dashboard/business_flow"
)

// AllocationHandlerInterface defines the contract for number allocation handlers
type AllocationHandlerInterface interface {
	MyAllocations(c fiber.Ctx) error
	AvailableInCountry(c fiber.Ctx) error
	AllocateNumber(c fiber.Ctx) error
	DeallocateNumber(c fiber.Ctx) error
	ToggleCountry(c fiber.Ctx) error
	ListAllocations(c fiber.Ctx) error
	ReleaseNumber(c fiber.Ctx) error
	AdminAllocateNumber(c fiber.Ctx) error
	AdminDeallocateNumber(c fiber.Ctx) error
	AdminToggleCountry(c fiber.Ctx) error
}

// AllocationHandler implements AllocationHandlerInterface
type AllocationHandler struct {
	flow        businessflow.AllocationFlow
	sessionFlow businessflow.SessionFlow
	validator   *validator.Validate
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(flow businessflow.AllocationFlow, sessionFlow businessflow.SessionFlow) AllocationHandlerInterface {
	return &AllocationHandler{
		flow:        flow,
		sessionFlow: sessionFlow,
		validator:   validator.New(),
	}
}

// resolveMember maps the request's session token to a member UUID. The second
// return value is a non-nil response already written when resolution failed.
func (h *AllocationHandler) resolveMember(ctx context.Context, c fiber.Ctx) (string, error) {
	token, ok := middleware.GetMemberTokenFromContext(c)
	if !ok {
		return "", errorResponse(c, fiber.StatusUnauthorized, "Member session token is required", "MISSING_MEMBER_TOKEN", nil)
	}

	session, err := h.sessionFlow.RestoreSession(ctx, token)
	if err != nil {
		if businessflow.IsSessionNotFound(err) || businessflow.IsSessionExpired(err) || businessflow.IsMemberNotFound(err) {
			return "", errorResponse(c, fiber.StatusUnauthorized, "Session is no longer valid", "SESSION_INVALID", nil)
		}
		log.Println("Session resolution failed", err)
		return "", errorResponse(c, fiber.StatusInternalServerError, "Failed to resolve session", "SESSION_RESOLVE_FAILED", nil)
	}

	return session.Member.UUID, nil
}

// MyAllocations returns the current member's number set
// @Summary My allocations
// @Description List the numbers held by the member behind the session token
// @Tags Allocations
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Allocations"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/allocations [get]
func (h *AllocationHandler) MyAllocations(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/allocations")
	memberUUID, failed := h.resolveMember(ctx, c)
	if failed != nil {
		return failed
	}

	result, err := h.flow.MemberAllocations(ctx, memberUUID)
	if err != nil {
		log.Println("Allocation lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load allocations", "ALLOCATION_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Allocations retrieved", result)
}

// AvailableInCountry lists what the member may take in one country
// @Summary Available numbers
// @Description List numbers in one country that are unheld or already held by this member, in inventory order
// @Tags Allocations
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Param country path string true "Country name"
// @Success 200 {object} dto.APIResponse{data=dto.AvailableNumbersResponse} "Available numbers"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/available/{country} [get]
func (h *AllocationHandler) AvailableInCountry(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/available/:country")
	memberUUID, failed := h.resolveMember(ctx, c)
	if failed != nil {
		return failed
	}

	country := c.Params("country")
	if country == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Country name is required", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.AvailableInCountry(ctx, country, memberUUID)
	if err != nil {
		log.Println("Availability lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load available numbers", "AVAILABILITY_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Available numbers retrieved", result)
}

// AllocateNumber assigns one number to the current member
// @Summary Allocate number
// @Description Take one number for the current member; numbers held by someone else are rejected
// @Tags Allocations
// @Accept json
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Param request body dto.AllocateNumberRequest true "Number to take"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Number allocated"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 404 {object} dto.APIResponse "Number not in any inventory"
// @Failure 409 {object} dto.APIResponse "Number held by another member"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/allocations [post]
func (h *AllocationHandler) AllocateNumber(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/allocations")
	memberUUID, failed := h.resolveMember(ctx, c)
	if failed != nil {
		return failed
	}

	var req dto.AllocateNumberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.AllocateNumber(ctx, memberUUID, &req, metadata)
	if err != nil {
		if businessflow.IsNumberNotInInventory(err) {
			return errorResponse(c, fiber.StatusNotFound, "Number is not in any inventory", "NUMBER_NOT_IN_INVENTORY", nil)
		}
		if businessflow.IsNumberAlreadyAllocated(err) {
			return errorResponse(c, fiber.StatusConflict, "Number is held by another member", "NUMBER_ALREADY_ALLOCATED", nil)
		}
		log.Println("Number allocation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to allocate number", "ALLOCATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Number allocated", result)
}

// DeallocateNumber releases one number from the current member
// @Summary Deallocate number
// @Description Release one number from the current member; releasing an unheld number is a no-op
// @Tags Allocations
// @Accept json
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Param request body dto.DeallocateNumberRequest true "Number to release"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Number released"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/allocations [delete]
func (h *AllocationHandler) DeallocateNumber(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/allocations")
	memberUUID, failed := h.resolveMember(ctx, c)
	if failed != nil {
		return failed
	}

	var req dto.DeallocateNumberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.DeallocateNumber(ctx, memberUUID, &req, metadata)
	if err != nil {
		log.Println("Number deallocation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to release number", "DEALLOCATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Number released", result)
}

// ToggleCountry flips the member's hold on a whole country
// @Summary Toggle country
// @Description Grab every available number in the country, or release them all when the member already holds everything available
// @Tags Allocations
// @Accept json
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Param request body dto.ToggleCountryRequest true "Country to toggle"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Country toggled"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/allocations/toggle [post]
func (h *AllocationHandler) ToggleCountry(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/allocations/toggle")
	memberUUID, failed := h.resolveMember(ctx, c)
	if failed != nil {
		return failed
	}

	var req dto.ToggleCountryRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ToggleCountry(ctx, memberUUID, &req, metadata)
	if err != nil {
		log.Println("Country toggle failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to toggle country", "TOGGLE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Country toggled", result)
}

// ListAllocations returns the full allocation map for the admin monitor
// @Summary List all allocations
// @Description Map every member UUID to the numbers they hold
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Allocation map"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/allocations [get]
func (h *AllocationHandler) ListAllocations(c fiber.Ctx) error {
	allocations, err := h.flow.FullMap(createRequestContext(c, "/api/v1/admin/allocations"))
	if err != nil {
		log.Println("Allocation map lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load allocations", "ALLOCATION_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Allocations retrieved", allocations)
}

// ReleaseNumber frees a number from whoever holds it
// @Summary Release number
// @Description Admin override: release a number regardless of which member holds it
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReleaseNumberRequest true "Number to release"
// @Success 200 {object} dto.APIResponse "Number released"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/allocations/release [post]
func (h *AllocationHandler) ReleaseNumber(c fiber.Ctx) error {
	if _, ok := middleware.GetAdminIDFromContext(c); !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ReleaseNumberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.ReleaseNumber(createRequestContext(c, "/api/v1/admin/allocations/release"), &req, metadata); err != nil {
		log.Println("Number release failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to release number", "RELEASE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Number released", nil)
}

// AdminAllocateNumber assigns one number to a chosen member
// @Summary Allocate number to member
// @Description Admin override: assign one number to the chosen member
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminAllocateNumberRequest true "Member and number"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Number allocated"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Member or number not found"
// @Failure 409 {object} dto.APIResponse "Number held by another member"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/allocations [post]
func (h *AllocationHandler) AdminAllocateNumber(c fiber.Ctx) error {
	if _, ok := middleware.GetAdminIDFromContext(c); !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.AdminAllocateNumberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.AllocateNumber(createRequestContext(c, "/api/v1/admin/allocations"), req.MemberUUID, &dto.AllocateNumberRequest{Number: req.Number}, metadata)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Team member not found", "MEMBER_NOT_FOUND", nil)
		}
		if businessflow.IsNumberNotInInventory(err) {
			return errorResponse(c, fiber.StatusNotFound, "Number is not in any inventory", "NUMBER_NOT_IN_INVENTORY", nil)
		}
		if businessflow.IsNumberAlreadyAllocated(err) {
			return errorResponse(c, fiber.StatusConflict, "Number is held by another member", "NUMBER_ALREADY_ALLOCATED", nil)
		}
		log.Println("Admin number allocation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to allocate number", "ALLOCATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Number allocated", result)
}

// AdminDeallocateNumber removes one number from a chosen member
// @Summary Deallocate number from member
// @Description Admin override: remove one number from the chosen member; a number they do not hold is a no-op
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminDeallocateNumberRequest true "Member and number"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Number released"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/allocations [delete]
func (h *AllocationHandler) AdminDeallocateNumber(c fiber.Ctx) error {
	if _, ok := middleware.GetAdminIDFromContext(c); !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.AdminDeallocateNumberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.DeallocateNumber(createRequestContext(c, "/api/v1/admin/allocations"), req.MemberUUID, &dto.DeallocateNumberRequest{Number: req.Number}, metadata)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Team member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Admin number deallocation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to release number", "DEALLOCATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Number released", result)
}

// AdminToggleCountry flips a chosen member's hold on a whole country
// @Summary Toggle country for member
// @Description Admin override: grab every available number in the country for the chosen member, or release them all
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminToggleCountryRequest true "Member and country"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationDTO} "Country toggled"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/allocations/toggle [post]
func (h *AllocationHandler) AdminToggleCountry(c fiber.Ctx) error {
	if _, ok := middleware.GetAdminIDFromContext(c); !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.AdminToggleCountryRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ToggleCountry(createRequestContext(c, "/api/v1/admin/allocations/toggle"), req.MemberUUID, &dto.ToggleCountryRequest{CountryName: req.CountryName}, metadata)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Team member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Admin country toggle failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to toggle country", "TOGGLE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Country toggled", result)
}
