// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AdminID     *uint           `gorm:"index:idx_audit_admin_id" json:"admin_id,omitempty"`
	Action      string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress   *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent   *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID   *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata    json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success     *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	CreatedAt   time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionAdminLoginSuccess = "admin_login_success"
	AuditActionAdminLoginFailed  = "admin_login_failed"
	AuditActionMemberSelected    = "member_selected"
	AuditActionLogout            = "logout"
	AuditActionStatsUpdated      = "stats_updated"
	AuditActionCountryCreated    = "country_created"
	AuditActionCountryUpdated    = "country_updated"
	AuditActionCountryDeleted    = "country_deleted"
	AuditActionInventoryReplaced = "inventory_replaced"
	AuditActionMemberCreated     = "member_created"
	AuditActionMemberDeleted     = "member_deleted"
	AuditActionNumberAllocated   = "number_allocated"
	AuditActionNumberDeallocated = "number_deallocated"
	AuditActionCountryToggled    = "country_toggled"
	AuditActionNumberReleased    = "number_released"
	AuditActionMonitorExported   = "monitor_exported"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	AdminID       *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
