// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"
)

// AppStats holds the display counters shown on the public dashboard.
// These are admin-edited values, intentionally not derived from or verified
// against the message feed or the allocation tables.
// Table: app_stats (single row, ID fixed to AppStatsRowID)
type AppStats struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	SmsToday       int  `gorm:"not null;default:0" json:"sms_today"`
	MyNumbersCount int  `gorm:"not null;default:0" json:"my_numbers_count"`

	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (AppStats) TableName() string {
	return "app_stats"
}

// AppStatsRowID is the fixed primary key of the singleton stats row.
const AppStatsRowID uint = 1
