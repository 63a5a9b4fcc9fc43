// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppStatsRepositoryImpl implements AppStatsRepository interface
type AppStatsRepositoryImpl struct {
	*BaseRepository[models.AppStats, struct{}]
}

// NewAppStatsRepository creates a new stats repository
func NewAppStatsRepository(db *gorm.DB) AppStatsRepository {
	return &AppStatsRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AppStats, struct{}](db),
	}
}

// Get retrieves the singleton stats row, nil when it has never been written
func (r *AppStatsRepositoryImpl) Get(ctx context.Context) (*models.AppStats, error) {
	db := r.getDB(ctx)

	var stats models.AppStats
	err := db.First(&stats, models.AppStatsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Upsert writes the singleton stats row, creating it on first use
func (r *AppStatsRepositoryImpl) Upsert(ctx context.Context, stats *models.AppStats) error {
	if stats == nil {
		return errors.New("stats payload is nil")
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

	stats.ID = models.AppStatsRowID
	stats.UpdatedAt = utils.UTCNow()
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sms_today", "my_numbers_count", "updated_at"}),
	}).Create(stats).Error
	return err
}
