// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberSession persists a "selected member" choice. The client stores the
// opaque token under the local key utils.MemberSessionStorageKey and presents
// it to restore the member view across restarts without re-authentication.
// Table: member_sessions
type MemberSession struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Token      string    `gorm:"size:64;not null;uniqueIndex:uk_member_sessions_token" json:"token"`
	MemberUUID uuid.UUID `gorm:"type:uuid;not null;index:idx_member_sessions_member_uuid" json:"member_uuid"`

	ExpiresAt      time.Time  `gorm:"not null;index:idx_member_sessions_expires_at" json:"expires_at"`
	CreatedAt      time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

func (MemberSession) TableName() string {
	return "member_sessions"
}

// IsExpired reports whether the session is past its expiry.
func (s *MemberSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// MemberSessionFilter represents filter criteria for member session queries
type MemberSessionFilter struct {
	ID           *uint
	Token        *string
	MemberUUID   *uuid.UUID
	ExpiresAfter *time.Time
}
