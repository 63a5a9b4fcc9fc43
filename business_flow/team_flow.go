// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
)

// TeamFlow manages the member roster. Removing a member also drops their
// allocation row in the same transaction, which returns their numbers to the
// pool immediately.
type TeamFlow interface {
	AddMember(ctx context.Context, req *dto.AddTeamMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.TeamMemberDTO, error)
	RemoveMember(ctx context.Context, memberUUID string, adminID uint, metadata *ClientMetadata) error
	ListMembers(ctx context.Context) ([]dto.TeamMemberDTO, error)
}

// TeamFlowImpl implements TeamFlow
type TeamFlowImpl struct {
	memberRepo     repository.TeamMemberRepository
	allocationRepo repository.AllocationRepository
	auditRepo      repository.AuditLogRepository
	store          realtime.Store
	db             *gorm.DB
}

// NewTeamFlow creates a new team flow
func NewTeamFlow(
	memberRepo repository.TeamMemberRepository,
	allocationRepo repository.AllocationRepository,
	auditRepo repository.AuditLogRepository,
	store realtime.Store,
	db *gorm.DB,
) TeamFlow {
	return &TeamFlowImpl{
		memberRepo:     memberRepo,
		allocationRepo: allocationRepo,
		auditRepo:      auditRepo,
		store:          store,
		db:             db,
	}
}

// AddMember creates a roster entry
func (f *TeamFlowImpl) AddMember(ctx context.Context, req *dto.AddTeamMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.TeamMemberDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("MEMBER_NAME_REQUIRED", "member name is required", ErrMemberNameRequired)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, NewBusinessError("MEMBER_EMAIL_REQUIRED", "member email is required", ErrMemberEmailRequired)
	}

	member := &models.TeamMember{
		UUID:      uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := f.memberRepo.Save(ctx, member); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to save member", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionMemberCreated, "member added: "+name, metadata, nil, true)
	f.publishTeam(ctx)

	result := toTeamMemberDTO(member)
	return &result, nil
}

// RemoveMember deletes a roster entry and its allocation row together
func (f *TeamFlowImpl) RemoveMember(ctx context.Context, memberUUID string, adminID uint, metadata *ClientMetadata) error {
	member, err := f.memberRepo.ByUUID(ctx, memberUUID)
	if err != nil {
		return NewBusinessError("DATABASE_ERROR", "failed to look up member", err)
	}
	if member == nil {
		return NewBusinessError("MEMBER_NOT_FOUND", "team member not found", ErrMemberNotFound)
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.allocationRepo.DeleteByMemberUUID(txCtx, member.UUID); err != nil {
			return err
		}
		return f.memberRepo.DeleteByUUID(txCtx, memberUUID)
	})
	if err != nil {
		return NewBusinessError("DATABASE_ERROR", "failed to remove member", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionMemberDeleted, "member removed: "+member.Name, metadata, map[string]any{"member_uuid": member.UUID.String()}, true)
	f.publishTeam(ctx)
	publishSnapshot(ctx, f.store, realtime.AllocationsPath(member.UUID.String()), []string{})
	return nil
}

// ListMembers returns the full roster in creation order
func (f *TeamFlowImpl) ListMembers(ctx context.Context) ([]dto.TeamMemberDTO, error) {
	members, err := f.memberRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load members", err)
	}

	out := make([]dto.TeamMemberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, toTeamMemberDTO(m))
	}
	return out, nil
}

func (f *TeamFlowImpl) publishTeam(ctx context.Context) {
	members, err := f.ListMembers(ctx)
	if err != nil {
		return
	}
	publishSnapshot(ctx, f.store, realtime.PathTeam, members)
}
