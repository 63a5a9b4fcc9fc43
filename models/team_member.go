// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamMember represents an admin-managed roster entry.
// Members do not authenticate; selecting a member from the picker creates a
// MemberSession that scopes the dashboard to this member's allocations.
// Table: team_members
type TeamMember struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_team_members_uuid" json:"uuid"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;not null" json:"email"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_team_members_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// TeamMemberFilter represents filter criteria for team member queries
type TeamMemberFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	Email         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
