// Package models contains domain entities and business models for the number pool dashboard
package models

import (
	"time"
)

// SmsMessage represents one inbound SMS recorded by the external ingestion pipeline.
// Rows are append-only from this service's perspective: the dashboard reads and
// displays them but never mutates or deletes them.
// Table: messages
// Paid and LimitValue are kept as raw strings because the pipeline writes
// provider-specific values that are not normalized here.
type SmsMessage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	StoreKey string `gorm:"size:64;not null;uniqueIndex:uk_messages_store_key" json:"store_key"`

	TargetNumber      string `gorm:"size:32;not null;index:idx_messages_target_number" json:"target_number"`
	ProviderSessionID string `gorm:"size:128" json:"provider_session_id"`
	Paid              string `gorm:"size:32" json:"paid"`
	LimitValue        string `gorm:"size:32" json:"limit_value"`
	MessageContent    string `gorm:"type:text;not null" json:"message_content"`

	// Timestamp is epoch milliseconds as written by the pipeline.
	Timestamp int64     `gorm:"not null;index:idx_messages_timestamp" json:"timestamp"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SmsMessage) TableName() string {
	return "messages"
}

// SmsMessageFilter represents filter criteria for message queries
type SmsMessageFilter struct {
	ID            *uint
	StoreKey      *string
	TargetNumber  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
