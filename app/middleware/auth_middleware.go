// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/services"
	"github.com/tasksms/dashboard/utils"
)

// MemberTokenHeader carries the opaque member session token. The browser
// client persists it under the local key utils.MemberSessionStorageKey and
// sends it on every member-scoped request.
const MemberTokenHeader = "X-Member-Token"

// AuthMiddleware handles JWT validation for admin endpoints and member token
// extraction for member endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// AdminAuthenticate validates admin JWTs and sets admin context values
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error:   &dto.ErrorDetail{Code: "MISSING_AUTHORIZATION_HEADER"},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error:   &dto.ErrorDetail{Code: "INVALID_AUTHORIZATION_FORMAT"},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error:   &dto.ErrorDetail{Code: "MISSING_ACCESS_TOKEN"},
			})
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			var code, msg string
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				code = "TOKEN_EXPIRED"
				msg = "Access token has expired"
			case errors.Is(err, services.ErrTokenRevoked):
				code = "TOKEN_REVOKED"
				msg = "Access token has been revoked"
			default:
				code = "TOKEN_INVALID"
				msg = "Invalid access token"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: msg,
				Error:   &dto.ErrorDetail{Code: code},
			})
		}
		if claims.TokenType != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Refresh tokens cannot access the API",
				Error:   &dto.ErrorDetail{Code: "TOKEN_INVALID"},
			})
		}

		c.Locals("admin_id", claims.AdminID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// MemberSession extracts the member token into the request context. The
// handler resolves it against the session store; an absent token leads to the
// unauthenticated picker view, not a 401.
func (m *AuthMiddleware) MemberSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		if token := c.Get(MemberTokenHeader); token != "" {
			c.Locals("member_token", token)
		}
		return c.Next()
	}
}

// RequestContext copies client metadata into locals for audit logging
func RequestContext() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(string(utils.IPAddressKey), c.IP())
		c.Locals(string(utils.UserAgentKey), c.Get("User-Agent"))
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(string(utils.RequestIDKey), requestID)
		}
		return c.Next()
	}
}

// GetAdminIDFromContext extracts admin ID from the request context
func GetAdminIDFromContext(c fiber.Ctx) (uint, bool) {
	adminID, ok := c.Locals("admin_id").(uint)
	return adminID, ok
}

// GetMemberTokenFromContext extracts the member session token, if present
func GetMemberTokenFromContext(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals("member_token").(string)
	return token, ok && token != ""
}
