// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Allocation holds the set of numbers currently assigned to one team member.
// Stored as an array but treated as a set: no duplicates. The single-ownership
// invariant (a number appears in at most one member's row) is enforced by the
// allocation flow, not by the schema.
// Table: allocations
// Array column uses PostgreSQL text[]
type Allocation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MemberUUID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_allocations_member_uuid" json:"member_uuid"`
	Numbers    pq.StringArray `gorm:"type:text[];not null" json:"numbers"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Allocation) TableName() string {
	return "allocations"
}

// AllocationFilter represents filter criteria for allocation queries
type AllocationFilter struct {
	ID         *uint
	MemberUUID *uuid.UUID
}

// AllocationMap is the in-memory snapshot form of the allocations table:
// member UUID string to that member's number set. The allocation reconciler
// operates on this shape only and never touches storage directly.
type AllocationMap map[string][]string

// Clone returns a deep copy so reconciler results never alias the snapshot.
func (m AllocationMap) Clone() AllocationMap {
	out := make(AllocationMap, len(m))
	for member, numbers := range m {
		cp := make([]string, len(numbers))
		copy(cp, numbers)
		out[member] = cp
	}
	return out
}
