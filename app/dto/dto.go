// Package dto contains Data Transfer Objects for API requests and responses
package dto

import (
	"time"
)

// APIResponse is the standard envelope for all API responses
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Data      any          `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
}

// ErrorDetail provides structured error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// --- Admin authentication ---

// CaptchaChallengeResponse carries a rotation captcha challenge
type CaptchaChallengeResponse struct {
	CaptchaID   string `json:"captcha_id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
}

// AdminLoginRequest represents an admin login attempt
type AdminLoginRequest struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	CaptchaID    string `json:"captcha_id" validate:"required"`
	CaptchaAngle int    `json:"captcha_angle" validate:"required,min=1,max=360"`
}

// AdminDTO is the admin shape returned to clients
type AdminDTO struct {
	UUID        string `json:"uuid"`
	Email       string `json:"email"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// TokenDTO carries issued JWT tokens
type TokenDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshTokenRequest rotates an admin refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AdminLoginResponse is returned on successful admin login
type AdminLoginResponse struct {
	Admin  AdminDTO `json:"admin"`
	Tokens TokenDTO `json:"tokens"`
}

// --- Member sessions and roles ---

// SelectMemberRequest picks a roster member for the member view
type SelectMemberRequest struct {
	MemberUUID string `json:"member_uuid" validate:"required,uuid"`
}

// MemberSessionResponse carries the opaque token clients persist locally
type MemberSessionResponse struct {
	Token     string        `json:"token"`
	Member    TeamMemberDTO `json:"member"`
	ExpiresAt string        `json:"expires_at"`
}

// RoleStateResponse reports the resolved viewer role
type RoleStateResponse struct {
	Role   string         `json:"role"`
	Admin  *AdminDTO      `json:"admin,omitempty"`
	Member *TeamMemberDTO `json:"member,omitempty"`
}

// --- Team roster ---

// AddTeamMemberRequest creates a roster entry
type AddTeamMemberRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// TeamMemberDTO is the roster entry shape returned to clients
type TeamMemberDTO struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// --- Countries and inventory ---

// CreateCountryRequest creates a country entry
type CreateCountryRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=128"`
	DialCode  string  `json:"dial_code" validate:"required,max=16"`
	FlagImage *string `json:"flag_image,omitempty" validate:"omitempty,max=2097152"`
}

// UpdateCountryRequest updates mutable country fields
type UpdateCountryRequest struct {
	DialCode  *string `json:"dial_code,omitempty" validate:"omitempty,max=16"`
	FlagImage *string `json:"flag_image,omitempty" validate:"omitempty,max=2097152"`
}

// CountryDTO is the country shape returned to clients
type CountryDTO struct {
	UUID      string  `json:"uuid"`
	Name      string  `json:"name"`
	DialCode  string  `json:"dial_code"`
	FlagImage *string `json:"flag_image,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ReplaceInventoryRequest overwrites a country's full number list
type ReplaceInventoryRequest struct {
	Numbers []string `json:"numbers" validate:"required,dive,min=3,max=32"`
}

// InventoryDTO is the inventory shape returned to clients
type InventoryDTO struct {
	CountryName string   `json:"country_name"`
	Numbers     []string `json:"numbers"`
}

// --- Allocations ---

// AllocateNumberRequest assigns one number to the current member
type AllocateNumberRequest struct {
	Number string `json:"number" validate:"required,min=3,max=32"`
}

// DeallocateNumberRequest releases one number from the current member
type DeallocateNumberRequest struct {
	Number string `json:"number" validate:"required,min=3,max=32"`
}

// ToggleCountryRequest flips the current member's hold on a whole country
type ToggleCountryRequest struct {
	CountryName string `json:"country_name" validate:"required,min=2,max=128"`
}

// ReleaseNumberRequest releases a number from whoever holds it (admin)
type ReleaseNumberRequest struct {
	Number string `json:"number" validate:"required,min=3,max=32"`
}

// AdminAllocateNumberRequest assigns one number to a chosen member (admin)
type AdminAllocateNumberRequest struct {
	MemberUUID string `json:"member_uuid" validate:"required,uuid"`
	Number     string `json:"number" validate:"required,min=3,max=32"`
}

// AdminDeallocateNumberRequest removes one number from a chosen member (admin)
type AdminDeallocateNumberRequest struct {
	MemberUUID string `json:"member_uuid" validate:"required,uuid"`
	Number     string `json:"number" validate:"required,min=3,max=32"`
}

// AdminToggleCountryRequest flips a chosen member's hold on a country (admin)
type AdminToggleCountryRequest struct {
	MemberUUID  string `json:"member_uuid" validate:"required,uuid"`
	CountryName string `json:"country_name" validate:"required,min=2,max=128"`
}

// AllocationDTO is one member's number set
type AllocationDTO struct {
	MemberUUID string   `json:"member_uuid"`
	Numbers    []string `json:"numbers"`
}

// AvailableNumbersResponse lists what the member may take in one country
type AvailableNumbersResponse struct {
	CountryName string   `json:"country_name"`
	Numbers     []string `json:"numbers"`
}

// --- Messages ---

// IngestMessageRequest records one inbound SMS from the pipeline
type IngestMessageRequest struct {
	StoreKey          string `json:"store_key" validate:"required,max=64"`
	TargetNumber      string `json:"target_number" validate:"required,max=32"`
	ProviderSessionID string `json:"provider_session_id,omitempty" validate:"omitempty,max=128"`
	Paid              string `json:"paid,omitempty" validate:"omitempty,max=32"`
	LimitValue        string `json:"limit_value,omitempty" validate:"omitempty,max=32"`
	MessageContent    string `json:"message_content" validate:"required"`
	Timestamp         int64  `json:"timestamp" validate:"required,min=1"`
}

// MessageDTO is the message shape returned to clients
type MessageDTO struct {
	StoreKey          string `json:"store_key"`
	TargetNumber      string `json:"target_number"`
	ProviderSessionID string `json:"provider_session_id,omitempty"`
	Paid              string `json:"paid,omitempty"`
	LimitValue        string `json:"limit_value,omitempty"`
	MessageContent    string `json:"message_content"`
	Timestamp         int64  `json:"timestamp"`
}

// --- Stats ---

// UpdateStatsRequest overwrites the dashboard display counters
type UpdateStatsRequest struct {
	SmsToday       *int `json:"sms_today" validate:"required,min=0"`
	MyNumbersCount *int `json:"my_numbers_count" validate:"required,min=0"`
}

// StatsDTO is the counters shape returned to clients
type StatsDTO struct {
	SmsToday       int    `json:"sms_today"`
	MyNumbersCount int    `json:"my_numbers_count"`
	UpdatedAt      string `json:"updated_at"`
}

// --- Monitor ---

// MonitorRowDTO is one row of the admin monitor: a number, who holds it, and
// its message activity
type MonitorRowDTO struct {
	Number       string `json:"number"`
	CountryName  string `json:"country_name"`
	OwnerUUID    string `json:"owner_uuid,omitempty"`
	OwnerName    string `json:"owner_name,omitempty"`
	MessageCount int    `json:"message_count"`
	LastMessage  string `json:"last_message,omitempty"`
	LastSeenAt   string `json:"last_seen_at,omitempty"`
}

// MemberDashboardResponse is the member view payload: the member, their
// numbers, and the messages for those numbers
type MemberDashboardResponse struct {
	Member   TeamMemberDTO `json:"member"`
	Numbers  []string      `json:"numbers"`
	Messages []MessageDTO  `json:"messages"`
}
