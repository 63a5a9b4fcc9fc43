// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllocationRepositoryImpl implements AllocationRepository interface
type AllocationRepositoryImpl struct {
	*BaseRepository[models.Allocation, models.AllocationFilter]
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &AllocationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Allocation, models.AllocationFilter](db),
	}
}

// ByMemberUUID retrieves the allocation row for one member
func (r *AllocationRepositoryImpl) ByMemberUUID(ctx context.Context, memberUUID uuid.UUID) (*models.Allocation, error) {
	filter := models.AllocationFilter{MemberUUID: &memberUUID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// allocationWriteLock is the row lock taken by FullMapForUpdate.
var allocationWriteLock = clause.Locking{Strength: "UPDATE"}

// FullMap loads every allocation row into the in-memory snapshot shape the
// reconciler operates on. Members without a row simply have no key.
func (r *AllocationRepositoryImpl) FullMap(ctx context.Context) (models.AllocationMap, error) {
	rows, err := r.ByFilter(ctx, models.AllocationFilter{}, "id ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	return toAllocationMap(rows), nil
}

// FullMapForUpdate loads the same snapshot under SELECT ... FOR UPDATE. Write
// paths call it inside their transaction so two concurrent read-modify-write
// cycles serialize instead of both reading the pre-write state. Outside a
// transaction the locks are released immediately and it degrades to FullMap.
func (r *AllocationRepositoryImpl) FullMapForUpdate(ctx context.Context) (models.AllocationMap, error) {
	db := r.getDB(ctx)

	var rows []*models.Allocation
	if err := db.Model(&models.Allocation{}).Clauses(allocationWriteLock).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAllocationMap(rows), nil
}

func toAllocationMap(rows []*models.Allocation) models.AllocationMap {
	m := make(models.AllocationMap, len(rows))
	for _, row := range rows {
		m[row.MemberUUID.String()] = append([]string(nil), row.Numbers...)
	}
	return m
}

// ReplaceNumbers overwrites one member's number set, creating the row when it
// does not exist yet. An empty set is stored as an empty array, not a delete,
// mirroring how the browser client writes allocations.
func (r *AllocationRepositoryImpl) ReplaceNumbers(ctx context.Context, memberUUID uuid.UUID, numbers []string) error {
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

	if numbers == nil {
		numbers = []string{}
	}
	row := models.Allocation{
		MemberUUID: memberUUID,
		Numbers:    pq.StringArray(numbers),
		UpdatedAt:  utils.UTCNow(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"numbers", "updated_at"}),
	}).Create(&row).Error
	return err
}

// DeleteByMemberUUID removes a member's allocation row entirely
func (r *AllocationRepositoryImpl) DeleteByMemberUUID(ctx context.Context, memberUUID uuid.UUID) error {
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

	err = db.Where("member_uuid = ?", memberUUID).Delete(&models.Allocation{}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *AllocationRepositoryImpl) applyFilter(query *gorm.DB, filter models.AllocationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.MemberUUID != nil {
		query = query.Where("member_uuid = ?", *filter.MemberUUID)
	}
	return query
}

// ByFilter retrieves allocations based on filter criteria
func (r *AllocationRepositoryImpl) ByFilter(ctx context.Context, filter models.AllocationFilter, orderBy string, limit, offset int) ([]*models.Allocation, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Allocation{})

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

	var allocations []*models.Allocation
	if err := query.Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// Count returns the number of allocations matching the filter
func (r *AllocationRepositoryImpl) Count(ctx context.Context, filter models.AllocationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Allocation{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any allocation matching the filter exists
func (r *AllocationRepositoryImpl) Exists(ctx context.Context, filter models.AllocationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
