// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
)

// MemberSessionRepositoryImpl implements MemberSessionRepository interface
type MemberSessionRepositoryImpl struct {
	*BaseRepository[models.MemberSession, models.MemberSessionFilter]
}

// NewMemberSessionRepository creates a new member session repository
func NewMemberSessionRepository(db *gorm.DB) MemberSessionRepository {
	return &MemberSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MemberSession, models.MemberSessionFilter](db),
	}
}

// ByToken retrieves a session by its opaque token
func (r *MemberSessionRepositoryImpl) ByToken(ctx context.Context, token string) (*models.MemberSession, error) {
	filter := models.MemberSessionFilter{Token: &token}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// Touch stamps a session's last access time
func (r *MemberSessionRepositoryImpl) Touch(ctx context.Context, sessionID uint, at time.Time) error {
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

	err = db.Model(&models.MemberSession{}).
		Where("id = ?", sessionID).
		Update("last_accessed_at", at).Error
	return err
}

// DeleteByToken removes one session (logout)
func (r *MemberSessionRepositoryImpl) DeleteByToken(ctx context.Context, token string) error {
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

	err = db.Where("token = ?", token).Delete(&models.MemberSession{}).Error
	return err
}

// DeleteExpired purges sessions past their expiry
func (r *MemberSessionRepositoryImpl) DeleteExpired(ctx context.Context) error {
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

	err = db.Where("expires_at <= ?", utils.UTCNow()).Delete(&models.MemberSession{}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *MemberSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.MemberSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Token != nil {
		query = query.Where("token = ?", *filter.Token)
	}
	if filter.MemberUUID != nil {
		query = query.Where("member_uuid = ?", *filter.MemberUUID)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *MemberSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.MemberSessionFilter, orderBy string, limit, offset int) ([]*models.MemberSession, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.MemberSession{})

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

	var sessions []*models.MemberSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Count returns the number of sessions matching the filter
func (r *MemberSessionRepositoryImpl) Count(ctx context.Context, filter models.MemberSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.MemberSession{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any session matching the filter exists
func (r *MemberSessionRepositoryImpl) Exists(ctx context.Context, filter models.MemberSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
