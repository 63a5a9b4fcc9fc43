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

// MessageHandlerInterface defines the contract for SMS message handlers
type MessageHandlerInterface interface {
	RecentFeed(c fiber.Ctx) error
	MessagesFor(c fiber.Ctx) error
	Ingest(c fiber.Ctx) error
	MemberDashboard(c fiber.Ctx) error
}

// MessageHandler implements MessageHandlerInterface
type MessageHandler struct {
	flow        businessflow.MessageFlow
	sessionFlow businessflow.SessionFlow
	validator   *validator.Validate
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(flow businessflow.MessageFlow, sessionFlow businessflow.SessionFlow) MessageHandlerInterface {
	return &MessageHandler{
		flow:        flow,
		sessionFlow: sessionFlow,
		validator:   validator.New(),
	}
}

// RecentFeed returns the shared recent-message feed, newest first
// @Summary Recent messages
// @Description The shared recent-message feed, newest first, capped at the feed limit
// @Tags Messages
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageDTO} "Messages"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/messages [get]
func (h *MessageHandler) RecentFeed(c fiber.Ctx) error {
	messages, err := h.flow.RecentMessages(createRequestContext(c, "/api/v1/messages"))
	if err != nil {
		log.Println("Message feed lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load messages", "MESSAGE_FEED_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Messages retrieved", messages)
}

// MessagesFor returns recent messages matching one number
// @Summary Messages for a number
// @Description Recent messages whose target matches the number after digit normalization
// @Tags Messages
// @Produce json
// @Param number path string true "Phone number"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageDTO} "Messages"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/messages/{number} [get]
func (h *MessageHandler) MessagesFor(c fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Number is required", "INVALID_REQUEST", nil)
	}

	messages, err := h.flow.MessagesFor(createRequestContext(c, "/api/v1/messages/:number"), number)
	if err != nil {
		log.Println("Message lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load messages", "MESSAGE_LOOKUP_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Messages retrieved", messages)
}

// Ingest records one inbound SMS from the delivery pipeline
// @Summary Ingest message
// @Description Record an inbound SMS; re-delivering a known store key is a no-op
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body dto.IngestMessageRequest true "Message data"
// @Success 201 {object} dto.APIResponse{data=dto.MessageDTO} "Message recorded"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/ingest/messages [post]
func (h *MessageHandler) Ingest(c fiber.Ctx) error {
	var req dto.IngestMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.flow.Ingest(createRequestContext(c, "/api/v1/ingest/messages"), &req)
	if err != nil {
		log.Println("Message ingestion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to record message", "MESSAGE_INGEST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Message recorded", result)
}

// MemberDashboard returns the member view payload in one request
// @Summary Member dashboard
// @Description The member, their numbers, and the messages matching those numbers
// @Tags Messages
// @Produce json
// @Param X-Member-Token header string true "Member session token"
// @Success 200 {object} dto.APIResponse{data=dto.MemberDashboardResponse} "Dashboard"
// @Failure 401 {object} dto.APIResponse "Session missing or invalid"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/member/dashboard [get]
func (h *MessageHandler) MemberDashboard(c fiber.Ctx) error {
	ctx := createRequestContext(c, "/api/v1/member/dashboard")

	token, ok := middleware.GetMemberTokenFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Member session token is required", "MISSING_MEMBER_TOKEN", nil)
	}

	session, err := h.sessionFlow.RestoreSession(ctx, token)
	if err != nil {
		if businessflow.IsSessionNotFound(err) || businessflow.IsSessionExpired(err) || businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Session is no longer valid", "SESSION_INVALID", nil)
		}
		log.Println("Session resolution failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to resolve session", "SESSION_RESOLVE_FAILED", nil)
	}

	dashboard, err := h.flow.MemberDashboard(ctx, session.Member.UUID)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Session is no longer valid", "SESSION_INVALID", nil)
		}
		log.Println("Dashboard lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard", "DASHBOARD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dashboard retrieved", dashboard)
}
