// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/middleware"
	businessflow "github.com/tasksms/dashboard/business_flow"
)

// SessionHandlerInterface defines the contract for member session handlers
type SessionHandlerInterface interface {
	SelectMember(c fiber.Ctx) error
	RestoreSession(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	ResolveRole(c fiber.Ctx) error
}

// SessionHandler implements SessionHandlerInterface
type SessionHandler struct {
	flow      businessflow.SessionFlow
	validator *validator.Validate
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(flow businessflow.SessionFlow) SessionHandlerInterface {
	return &SessionHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// SelectMember opens a member session for a roster entry
// @Summary Select team member
// @Description Pick a roster member and receive an opaque session token for the member view
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.SelectMemberRequest true "Member selection"
// @Success 200 {object} dto.APIResponse{data=dto.MemberSessionResponse} "Session created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/session/select [post]
func (h *SessionHandler) SelectMember(c fiber.Ctx) error {
	var req dto.SelectMemberRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.SelectMember(createRequestContext(c, "/api/v1/session/select"), &req, metadata)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Team member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Member selection failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create session", "SESSION_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Session created", result)
}

// RestoreSession resolves a persisted member token back to its member
// @Summary Restore member session
// @Description Resolve the locally persisted session token back to its roster member
// @Tags Sessions
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Success 200 {object} dto.APIResponse{data=dto.MemberSessionResponse} "Session restored"
// @Failure 401 {object} dto.APIResponse "Session missing, expired, or orphaned"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/session/restore [get]
func (h *SessionHandler) RestoreSession(c fiber.Ctx) error {
	token := c.Get(middleware.MemberTokenHeader)
	if token == "" {
		return errorResponse(c, fiber.StatusUnauthorized, "Member session token is required", "MISSING_MEMBER_TOKEN", nil)
	}

	result, err := h.flow.RestoreSession(createRequestContext(c, "/api/v1/session/restore"), token)
	if err != nil {
		if businessflow.IsSessionNotFound(err) || businessflow.IsSessionExpired(err) || businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Session is no longer valid", "SESSION_INVALID", nil)
		}
		log.Println("Session restore failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to restore session", "SESSION_RESTORE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Session restored", result)
}

// Logout closes the member session
// @Summary Member logout
// @Description Delete the member session; logging out an unknown token succeeds
// @Tags Sessions
// @Produce json
// @Param X-Member-Token header string false "Member session token"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/session/logout [post]
func (h *SessionHandler) Logout(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.Logout(createRequestContext(c, "/api/v1/session/logout"), c.Get(middleware.MemberTokenHeader), metadata); err != nil {
		log.Println("Member logout failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to close session", "LOGOUT_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Logged out", nil)
}

// ResolveRole reports the viewer role for the presented credentials
// @Summary Resolve viewer role
// @Description Resolve admin JWT and/or member token into a role; admin identity wins over a member session
// @Tags Sessions
// @Produce json
// @Param Authorization header string false "Bearer admin access token"
// @Param X-Member-Token header string false "Member session token"
// @Success 200 {object} dto.APIResponse{data=dto.RoleStateResponse} "Role resolved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/session/role [get]
func (h *SessionHandler) ResolveRole(c fiber.Ctx) error {
	adminToken := ""
	if authHeader := c.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		adminToken = strings.TrimPrefix(authHeader, "Bearer ")
	}

	result, err := h.flow.ResolveRole(createRequestContext(c, "/api/v1/session/role"), adminToken, c.Get(middleware.MemberTokenHeader))
	if err != nil {
		log.Println("Role resolution failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to resolve role", "ROLE_RESOLVE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Role resolved", result)
}
