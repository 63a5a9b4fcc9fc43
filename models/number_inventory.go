// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"

	"github.com/lib/pq"
)

// NumberInventory holds the ordered list of raw number strings for one country.
// Order is insertion/line order and carries no meaning beyond display.
// Deleting a country does not purge its inventory row, and deleting a number
// does not purge allocations that still reference it (accepted staleness).
// Table: number_inventories
// Array column uses PostgreSQL text[]
type NumberInventory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CountryName string         `gorm:"size:128;not null;uniqueIndex:uk_number_inventories_country" json:"country_name"`
	Numbers     pq.StringArray `gorm:"type:text[];not null" json:"numbers"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (NumberInventory) TableName() string {
	return "number_inventories"
}

// NumberInventoryFilter represents filter criteria for inventory queries
type NumberInventoryFilter struct {
	ID          *uint
	CountryName *string
}
