// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/services"
	businessflow "github.com/tasksms/dashboard/business_flow"
	"github.com/tasksms/dashboard/utils"
)

// AdminAuthHandlerInterface defines the contract for admin authentication handlers
type AdminAuthHandlerInterface interface {
	CaptchaChallenge(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AdminAuthHandler implements AdminAuthHandlerInterface
type AdminAuthHandler struct {
	flow         businessflow.SessionFlow
	captcha      services.CaptchaService
	tokenService services.TokenService
	validator    *validator.Validate
}

// NewAdminAuthHandler creates a new admin authentication handler
func NewAdminAuthHandler(flow businessflow.SessionFlow, captcha services.CaptchaService, tokenService services.TokenService) AdminAuthHandlerInterface {
	return &AdminAuthHandler{
		flow:         flow,
		captcha:      captcha,
		tokenService: tokenService,
		validator:    validator.New(),
	}
}

// CaptchaChallenge starts admin login by returning a rotate captcha challenge
// @Summary Admin captcha challenge
// @Description Generate a rotate captcha for admin login (returns base64 images and challenge ID)
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaChallengeResponse} "Captcha generated"
// @Failure 500 {object} dto.APIResponse "Failed to generate captcha"
// @Router /api/v1/auth/admin/captcha [get]
func (h *AdminAuthHandler) CaptchaChallenge(c fiber.Ctx) error {
	challenge, err := h.captcha.Generate(createRequestContext(c, "/api/v1/auth/admin/captcha"))
	if err != nil {
		log.Println("Captcha generation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to generate captcha", "CAPTCHA_GENERATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Captcha generated", dto.CaptchaChallengeResponse{
		CaptchaID:   challenge.ID,
		MasterImage: challenge.MasterImageBase64,
		ThumbImage:  challenge.ThumbImageBase64,
	})
}

// Login authenticates the coordinator with captcha, email, and password
// @Summary Admin login
// @Description Verify captcha and authenticate the admin with email/password
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin login data"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or captcha"
// @Failure 401 {object} dto.APIResponse "Incorrect credentials or admin not found"
// @Failure 403 {object} dto.APIResponse "Account inactive or email not allowed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/admin/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.AdminLogin(createRequestContext(c, "/api/v1/auth/admin/login"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidCaptcha(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsEmailNotAllowed(err) {
			return errorResponse(c, fiber.StatusForbidden, "Email is not on the admin allowlist", "EMAIL_NOT_ALLOWED", nil)
		}
		if businessflow.IsAdminNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Admin not found", "ADMIN_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Incorrect password", "INCORRECT_PASSWORD", nil)
		}
		log.Println("Admin login failed", err)
		return errorResponse(c, fiber.StatusUnauthorized, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}

// RefreshToken rotates the admin refresh token and issues a new token pair
// @Summary Refresh admin tokens
// @Description Exchange a valid refresh token for a new access/refresh pair
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenDTO} "Tokens refreshed"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Refresh token invalid or expired"
// @Router /api/v1/auth/admin/refresh [post]
func (h *AdminAuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	accessToken, refreshToken, err := h.tokenService.RefreshAdminToken(req.RefreshToken)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Refresh token invalid or expired", "TOKEN_INVALID", nil)
	}

	return successResponse(c, fiber.StatusOK, "Tokens refreshed", dto.TokenDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
	})
}

// Logout revokes the presented admin tokens
// @Summary Admin logout
// @Description Revoke the current access token and, when supplied, the refresh token
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /api/v1/admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c fiber.Ctx) error {
	if authHeader := c.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != "" {
			_ = h.tokenService.RevokeToken(token)
		}
	}

	var req dto.RefreshTokenRequest
	if err := c.Bind().Body(&req); err == nil && req.RefreshToken != "" {
		_ = h.tokenService.RevokeToken(req.RefreshToken)
	}

	return successResponse(c, fiber.StatusOK, "Logged out", nil)
}
