package utils

import (
	"time"
)

// contextKey is the private type for request-scoped context values.
type contextKey string

// Context keys populated by handlers for downstream flows and audit logging.
const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
	CancelFuncKey contextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for admin refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// MemberSessionTTL is how long a persisted member choice stays valid (30 days)
	MemberSessionTTL = 30 * 24 * time.Hour
)

// Dashboard constants
const (
	// MemberSessionStorageKey is the local-storage key under which clients
	// persist the member session token across restarts.
	MemberSessionStorageKey = "tasksms_member_session"

	// RecentMessageLimit bounds the live feed query to the most recent N
	// messages, displayed newest-first.
	RecentMessageLimit = 100

	// FlagThumbnailMaxPx bounds the longest edge of a stored flag image.
	FlagThumbnailMaxPx = 128
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
