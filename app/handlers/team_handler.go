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

// TeamHandlerInterface defines the contract for team roster handlers
type TeamHandlerInterface interface {
	ListMembers(c fiber.Ctx) error
	AddMember(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
}

// TeamHandler implements TeamHandlerInterface
type TeamHandler struct {
	flow      businessflow.TeamFlow
	validator *validator.Validate
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(flow businessflow.TeamFlow) TeamHandlerInterface {
	return &TeamHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListMembers returns the team roster; it backs the member picker view
// @Summary List team members
// @Description List the team roster used by the member picker
// @Tags Team
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.TeamMemberDTO} "Members"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/team [get]
func (h *TeamHandler) ListMembers(c fiber.Ctx) error {
	members, err := h.flow.ListMembers(createRequestContext(c, "/api/v1/team"))
	if err != nil {
		log.Println("Team listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list team members", "TEAM_LIST_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Team retrieved", members)
}

// AddMember creates a roster entry
// @Summary Add team member
// @Description Add a member to the team roster
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddTeamMemberRequest true "Member data"
// @Success 201 {object} dto.APIResponse{data=dto.TeamMemberDTO} "Member added"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/team [post]
func (h *TeamHandler) AddMember(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.AddTeamMemberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.AddMember(createRequestContext(c, "/api/v1/admin/team"), &req, adminID, metadata)
	if err != nil {
		if businessflow.IsMemberNameRequired(err) || businessflow.IsMemberEmailRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Member name and email are required", "VALIDATION_ERROR", nil)
		}
		log.Println("Member creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to add team member", "MEMBER_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Member added", result)
}

// RemoveMember deletes a roster entry and releases everything they held
// @Summary Remove team member
// @Description Remove a member from the roster; their allocated numbers return to the pool
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Member UUID"
// @Success 200 {object} dto.APIResponse "Member removed"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/team/{uuid} [delete]
func (h *TeamHandler) RemoveMember(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "UNAUTHORIZED", nil)
	}

	memberUUID := c.Params("uuid")
	if memberUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Member UUID is required", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.RemoveMember(createRequestContext(c, "/api/v1/admin/team/:uuid"), memberUUID, adminID, metadata); err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Team member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Member removal failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to remove team member", "MEMBER_REMOVE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Member removed", nil)
}
