// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/tasksms/dashboard/models"
	"gorm.io/gorm"
)

// SmsMessageRepositoryImpl implements SmsMessageRepository interface
type SmsMessageRepositoryImpl struct {
	*BaseRepository[models.SmsMessage, models.SmsMessageFilter]
}

// NewSmsMessageRepository creates a new message repository
func NewSmsMessageRepository(db *gorm.DB) SmsMessageRepository {
	return &SmsMessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SmsMessage, models.SmsMessageFilter](db),
	}
}

// ByStoreKey retrieves a message by its store key
func (r *SmsMessageRepositoryImpl) ByStoreKey(ctx context.Context, storeKey string) (*models.SmsMessage, error) {
	filter := models.SmsMessageFilter{StoreKey: &storeKey}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListRecent retrieves the most recent messages, newest first. Ordering is by
// the pipeline timestamp, not insertion order, so backfilled rows sort correctly.
func (r *SmsMessageRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.SmsMessage, error) {
	db := r.getDB(ctx)

	var messages []*models.SmsMessage
	if err := db.Model(&models.SmsMessage{}).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *SmsMessageRepositoryImpl) applyFilter(query *gorm.DB, filter models.SmsMessageFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.StoreKey != nil {
		query = query.Where("store_key = ?", *filter.StoreKey)
	}
	if filter.TargetNumber != nil {
		query = query.Where("target_number = ?", *filter.TargetNumber)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves messages based on filter criteria
func (r *SmsMessageRepositoryImpl) ByFilter(ctx context.Context, filter models.SmsMessageFilter, orderBy string, limit, offset int) ([]*models.SmsMessage, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SmsMessage{})

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

	var messages []*models.SmsMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// Count returns the number of messages matching the filter
func (r *SmsMessageRepositoryImpl) Count(ctx context.Context, filter models.SmsMessageFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SmsMessage{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any message matching the filter exists
func (r *SmsMessageRepositoryImpl) Exists(ctx context.Context, filter models.SmsMessageFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
