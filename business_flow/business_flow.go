// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"log"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// recordAudit writes one audit entry. Audit failures are logged and swallowed
// so they never fail the operation being audited.
func recordAudit(ctx context.Context, repo repository.AuditLogRepository, adminID *uint, action, description string, metadata *ClientMetadata, extra map[string]any, success bool) {
	entry := &models.AuditLog{
		AdminID:     adminID,
		Action:      action,
		Description: utils.ToPtr(description),
		Success:     utils.ToPtr(success),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = utils.ToPtr(metadata.UserAgent)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}
	if len(extra) > 0 {
		if raw, err := json.Marshal(extra); err == nil {
			entry.Metadata = raw
		}
	}

	if err := repo.Save(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

// publishSnapshot pushes a value into the live-sync store. Publish failures are
// logged and swallowed: storage is the source of truth and clients converge on
// the next snapshot.
func publishSnapshot(ctx context.Context, store realtime.Store, path string, value any) {
	if store == nil {
		return
	}
	if err := store.Publish(ctx, path, value); err != nil {
		log.Printf("realtime: failed to publish %s: %v", path, err)
	}
}
