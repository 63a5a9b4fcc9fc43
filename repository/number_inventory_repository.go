// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/lib/pq"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberInventoryRepositoryImpl implements NumberInventoryRepository interface
type NumberInventoryRepositoryImpl struct {
	*BaseRepository[models.NumberInventory, models.NumberInventoryFilter]
}

// NewNumberInventoryRepository creates a new inventory repository
func NewNumberInventoryRepository(db *gorm.DB) NumberInventoryRepository {
	return &NumberInventoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.NumberInventory, models.NumberInventoryFilter](db),
	}
}

// ByCountryName retrieves the inventory row for one country
func (r *NumberInventoryRepositoryImpl) ByCountryName(ctx context.Context, countryName string) (*models.NumberInventory, error) {
	filter := models.NumberInventoryFilter{CountryName: &countryName}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListAll retrieves every inventory row
func (r *NumberInventoryRepositoryImpl) ListAll(ctx context.Context) ([]*models.NumberInventory, error) {
	return r.ByFilter(ctx, models.NumberInventoryFilter{}, "country_name ASC", 0, 0)
}

// ReplaceNumbers overwrites the full number list for a country, creating the
// row when it does not exist yet.
func (r *NumberInventoryRepositoryImpl) ReplaceNumbers(ctx context.Context, countryName string, numbers []string) error {
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
	row := models.NumberInventory{
		CountryName: countryName,
		Numbers:     pq.StringArray(numbers),
		UpdatedAt:   utils.UTCNow(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"numbers", "updated_at"}),
	}).Create(&row).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *NumberInventoryRepositoryImpl) applyFilter(query *gorm.DB, filter models.NumberInventoryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CountryName != nil {
		query = query.Where("country_name = ?", *filter.CountryName)
	}
	return query
}

// ByFilter retrieves inventory rows based on filter criteria
func (r *NumberInventoryRepositoryImpl) ByFilter(ctx context.Context, filter models.NumberInventoryFilter, orderBy string, limit, offset int) ([]*models.NumberInventory, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.NumberInventory{})

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

	var rows []*models.NumberInventory
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of inventory rows matching the filter
func (r *NumberInventoryRepositoryImpl) Count(ctx context.Context, filter models.NumberInventoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.NumberInventory{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any inventory row matching the filter exists
func (r *NumberInventoryRepositoryImpl) Exists(ctx context.Context, filter models.NumberInventoryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
