// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/app/services"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
	"golang.org/x/crypto/bcrypt"
)

// RoleState is the resolved viewer role for one request. Clients start in
// RoleUnresolved until the server answers; the server itself only ever
// returns one of the other three.
type RoleState string

const (
	RoleUnresolved      RoleState = "unresolved"
	RoleUnauthenticated RoleState = "unauthenticated"
	RoleAdminView       RoleState = "admin"
	RoleMemberView      RoleState = "member"
)

// SessionFlow handles admin authentication, member selection, and role
// resolution. Admin identity always wins over a member session when both are
// presented.
type SessionFlow interface {
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	SelectMember(ctx context.Context, req *dto.SelectMemberRequest, metadata *ClientMetadata) (*dto.MemberSessionResponse, error)
	RestoreSession(ctx context.Context, token string) (*dto.MemberSessionResponse, error)
	Logout(ctx context.Context, memberToken string, metadata *ClientMetadata) error
	ResolveRole(ctx context.Context, adminToken, memberToken string) (*dto.RoleStateResponse, error)
}

// SessionFlowImpl implements SessionFlow
type SessionFlowImpl struct {
	adminRepo      repository.AdminRepository
	memberRepo     repository.TeamMemberRepository
	sessionRepo    repository.MemberSessionRepository
	auditRepo      repository.AuditLogRepository
	tokenService   services.TokenService
	captchaService services.CaptchaService
	allowedEmail   string
}

// NewSessionFlow creates a new session flow. allowedEmail is the single admin
// address accepted by this deployment; any other email is rejected before the
// password is even checked.
func NewSessionFlow(
	adminRepo repository.AdminRepository,
	memberRepo repository.TeamMemberRepository,
	sessionRepo repository.MemberSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaService services.CaptchaService,
	allowedEmail string,
) SessionFlow {
	return &SessionFlowImpl{
		adminRepo:      adminRepo,
		memberRepo:     memberRepo,
		sessionRepo:    sessionRepo,
		auditRepo:      auditRepo,
		tokenService:   tokenService,
		captchaService: captchaService,
		allowedEmail:   strings.ToLower(allowedEmail),
	}
}

// AdminLogin authenticates the coordinator: captcha, allowlist, bcrypt, JWT.
func (f *SessionFlowImpl) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if f.captchaService != nil && !f.captchaService.Verify(ctx, req.CaptchaID, float64(req.CaptchaAngle)) {
		recordAudit(ctx, f.auditRepo, nil, models.AuditActionAdminLoginFailed, "captcha verification failed for "+email, metadata, nil, false)
		return nil, NewBusinessError("INVALID_CAPTCHA", "captcha verification failed", ErrInvalidCaptcha)
	}

	if email != f.allowedEmail {
		recordAudit(ctx, f.auditRepo, nil, models.AuditActionAdminLoginFailed, "email not on allowlist: "+email, metadata, nil, false)
		return nil, NewBusinessError("EMAIL_NOT_ALLOWED", "email is not on the admin allowlist", ErrEmailNotAllowed)
	}

	admin, err := f.adminRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up admin", err)
	}
	if admin == nil {
		recordAudit(ctx, f.auditRepo, nil, models.AuditActionAdminLoginFailed, "admin not found: "+email, metadata, nil, false)
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		recordAudit(ctx, f.auditRepo, &admin.ID, models.AuditActionAdminLoginFailed, "inactive admin: "+email, metadata, nil, false)
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		recordAudit(ctx, f.auditRepo, &admin.ID, models.AuditActionAdminLoginFailed, "incorrect password for "+email, metadata, nil, false)
		return nil, NewBusinessError("INCORRECT_PASSWORD", "incorrect password", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := f.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := f.adminRepo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to update last login", err)
	}

	recordAudit(ctx, f.auditRepo, &admin.ID, models.AuditActionAdminLoginSuccess, "admin logged in: "+email, metadata, nil, true)

	return &dto.AdminLoginResponse{
		Admin: dto.AdminDTO{
			UUID:        admin.UUID.String(),
			Email:       admin.Email,
			LastLoginAt: now.Format(time.RFC3339),
		},
		Tokens: dto.TokenDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		},
	}, nil
}

// SelectMember creates a persisted member session. No authentication happens
// here: the roster is trusted, the session only scopes the view.
func (f *SessionFlowImpl) SelectMember(ctx context.Context, req *dto.SelectMemberRequest, metadata *ClientMetadata) (*dto.MemberSessionResponse, error) {
	member, err := f.memberRepo.ByUUID(ctx, req.MemberUUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up member", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "team member not found", ErrMemberNotFound)
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate session token", err)
	}

	session := &models.MemberSession{
		Token:      token,
		MemberUUID: member.UUID,
		ExpiresAt:  utils.UTCNowAdd(utils.MemberSessionTTL),
		CreatedAt:  utils.UTCNow(),
	}
	if err := f.sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to persist session", err)
	}

	recordAudit(ctx, f.auditRepo, nil, models.AuditActionMemberSelected, "member selected: "+member.Name, metadata, map[string]any{"member_uuid": member.UUID.String()}, true)

	return &dto.MemberSessionResponse{
		Token:     token,
		Member:    toTeamMemberDTO(member),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// RestoreSession resolves a persisted token back to its member. Expired
// sessions are purged on sight.
func (f *SessionFlowImpl) RestoreSession(ctx context.Context, token string) (*dto.MemberSessionResponse, error) {
	session, err := f.sessionRepo.ByToken(ctx, token)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up session", err)
	}
	if session == nil {
		return nil, NewBusinessError("SESSION_NOT_FOUND", "session not found", ErrSessionNotFound)
	}
	if session.IsExpired(utils.UTCNow()) {
		_ = f.sessionRepo.DeleteByToken(ctx, token)
		return nil, NewBusinessError("SESSION_EXPIRED", "session has expired", ErrSessionExpired)
	}

	member, err := f.memberRepo.ByUUID(ctx, session.MemberUUID.String())
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up member", err)
	}
	if member == nil {
		// The member was removed from the roster after the session was issued.
		_ = f.sessionRepo.DeleteByToken(ctx, token)
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "team member not found", ErrMemberNotFound)
	}

	if err := f.sessionRepo.Touch(ctx, session.ID, utils.UTCNow()); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to touch session", err)
	}

	return &dto.MemberSessionResponse{
		Token:     token,
		Member:    toTeamMemberDTO(member),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Logout drops the member session. Logging out an unknown token succeeds.
func (f *SessionFlowImpl) Logout(ctx context.Context, memberToken string, metadata *ClientMetadata) error {
	if memberToken == "" {
		return nil
	}
	if err := f.sessionRepo.DeleteByToken(ctx, memberToken); err != nil {
		return NewBusinessError("DATABASE_ERROR", "failed to delete session", err)
	}
	recordAudit(ctx, f.auditRepo, nil, models.AuditActionLogout, "member session closed", metadata, nil, true)
	return nil
}

// ResolveRole turns whatever credentials the request carried into a role.
// An authenticated admin beats a member session; neither yields the
// unauthenticated picker view.
func (f *SessionFlowImpl) ResolveRole(ctx context.Context, adminToken, memberToken string) (*dto.RoleStateResponse, error) {
	if adminToken != "" {
		if claims, err := f.tokenService.ValidateAdminToken(adminToken); err == nil && claims.TokenType == "access" {
			admin, err := f.adminRepo.ByID(ctx, claims.AdminID)
			if err != nil {
				return nil, NewBusinessError("DATABASE_ERROR", "failed to look up admin", err)
			}
			if admin != nil && utils.IsTrue(admin.IsActive) && strings.EqualFold(admin.Email, f.allowedEmail) {
				return &dto.RoleStateResponse{
					Role: string(RoleAdminView),
					Admin: &dto.AdminDTO{
						UUID:  admin.UUID.String(),
						Email: admin.Email,
					},
				}, nil
			}
		}
	}

	if memberToken != "" {
		restored, err := f.RestoreSession(ctx, memberToken)
		if err == nil {
			return &dto.RoleStateResponse{
				Role:   string(RoleMemberView),
				Member: &restored.Member,
			}, nil
		}
		if !IsSessionNotFound(err) && !IsSessionExpired(err) && !IsMemberNotFound(err) {
			return nil, err
		}
	}

	return &dto.RoleStateResponse{Role: string(RoleUnauthenticated)}, nil
}

func toTeamMemberDTO(member *models.TeamMember) dto.TeamMemberDTO {
	return dto.TeamMemberDTO{
		UUID:      member.UUID.String(),
		Name:      member.Name,
		Email:     member.Email,
		CreatedAt: member.CreatedAt.Format(time.RFC3339),
	}
}

// generateSessionToken returns 32 bytes of entropy in hex, the opaque token
// clients persist under utils.MemberSessionStorageKey.
func generateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
