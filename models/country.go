// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"

	"github.com/google/uuid"
)

// Country represents an admin-managed country entry.
// Name is the uppercased display key and doubles as the lookup key into the
// number inventory, so it must stay unique and stable once numbers reference it.
// FlagImage holds an inline-encoded (base64 data URL) image, optional.
// Table: countries
type Country struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_countries_uuid" json:"uuid"`

	Name      string  `gorm:"size:128;not null;uniqueIndex:uk_countries_name" json:"name"`
	DialCode  string  `gorm:"size:16;not null" json:"dial_code"`
	FlagImage *string `gorm:"type:text" json:"flag_image,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_countries_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Country) TableName() string {
	return "countries"
}

// CountryFilter represents filter criteria for country queries
type CountryFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
