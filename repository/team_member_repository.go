// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
)

// TeamMemberRepositoryImpl implements TeamMemberRepository interface
type TeamMemberRepositoryImpl struct {
	*BaseRepository[models.TeamMember, models.TeamMemberFilter]
}

// NewTeamMemberRepository creates a new team member repository
func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &TeamMemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TeamMember, models.TeamMemberFilter](db),
	}
}

// ByUUID retrieves a team member by UUID (string)
func (r *TeamMemberRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.TeamMember, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.TeamMemberFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListAll retrieves the full roster in creation order
func (r *TeamMemberRepositoryImpl) ListAll(ctx context.Context) ([]*models.TeamMember, error) {
	return r.ByFilter(ctx, models.TeamMemberFilter{}, "created_at ASC, id ASC", 0, 0)
}

// DeleteByUUID removes a roster entry
func (r *TeamMemberRepositoryImpl) DeleteByUUID(ctx context.Context, uuid string) error {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return err
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("uuid = ?", parsed).Delete(&models.TeamMember{}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *TeamMemberRepositoryImpl) applyFilter(query *gorm.DB, filter models.TeamMemberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves team members based on filter criteria
func (r *TeamMemberRepositoryImpl) ByFilter(ctx context.Context, filter models.TeamMemberFilter, orderBy string, limit, offset int) ([]*models.TeamMember, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TeamMember{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var members []*models.TeamMember
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Count returns the number of team members matching the filter
func (r *TeamMemberRepositoryImpl) Count(ctx context.Context, filter models.TeamMemberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TeamMember{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any team member matching the filter exists
func (r *TeamMemberRepositoryImpl) Exists(ctx context.Context, filter models.TeamMemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
