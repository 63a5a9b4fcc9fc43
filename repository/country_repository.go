// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/utils"
	"gorm.io/gorm"
)

// CountryRepositoryImpl implements CountryRepository interface
type CountryRepositoryImpl struct {
	*BaseRepository[models.Country, models.CountryFilter]
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &CountryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Country, models.CountryFilter](db),
	}
}

// ByUUID retrieves a country by UUID (string)
func (r *CountryRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Country, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CountryFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByName retrieves a country by its uppercased display key
func (r *CountryRepositoryImpl) ByName(ctx context.Context, name string) (*models.Country, error) {
	filter := models.CountryFilter{Name: &name}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListAll retrieves every country in creation order
func (r *CountryRepositoryImpl) ListAll(ctx context.Context) ([]*models.Country, error) {
	return r.ByFilter(ctx, models.CountryFilter{}, "created_at ASC, id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *CountryRepositoryImpl) applyFilter(query *gorm.DB, filter models.CountryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves countries based on filter criteria
func (r *CountryRepositoryImpl) ByFilter(ctx context.Context, filter models.CountryFilter, orderBy string, limit, offset int) ([]*models.Country, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Country{})

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

	var countries []*models.Country
	if err := query.Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

// Count returns the number of countries matching the filter
func (r *CountryRepositoryImpl) Count(ctx context.Context, filter models.CountryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Country{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any country matching the filter exists
func (r *CountryRepositoryImpl) Exists(ctx context.Context, filter models.CountryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates mutable fields for a country by ID
func (r *CountryRepositoryImpl) Update(ctx context.Context, country *models.Country) error {
	if country == nil {
		return errors.New("country payload is nil")
	}
	if country.ID == 0 {
		return errors.New("country ID is required for update")
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

	updates := map[string]any{
		"updated_at": utils.UTCNow(),
	}
	if country.Name != "" {
		updates["name"] = country.Name
	}
	if country.DialCode != "" {
		updates["dial_code"] = country.DialCode
	}
	if country.FlagImage != nil {
		updates["flag_image"] = *country.FlagImage
	}

	result := db.Model(&models.Country{}).
		Where("id = ?", country.ID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("country not found with ID: " + strconv.Itoa(int(country.ID)))
	}
	return nil
}

// DeleteByUUID removes a country row. Inventory and allocations referencing the
// country's numbers are left in place.
func (r *CountryRepositoryImpl) DeleteByUUID(ctx context.Context, uuid string) error {
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

	err = db.Where("uuid = ?", parsed).Delete(&models.Country{}).Error
	return err
}
