// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasksms/dashboard/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SmsMessageRepository defines operations for the inbound message feed
type SmsMessageRepository interface {
	Repository[models.SmsMessage, models.SmsMessageFilter]
	ByStoreKey(ctx context.Context, storeKey string) (*models.SmsMessage, error)
	ListRecent(ctx context.Context, limit int) ([]*models.SmsMessage, error)
}

// CountryRepository defines operations for countries
type CountryRepository interface {
	Repository[models.Country, models.CountryFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Country, error)
	ByName(ctx context.Context, name string) (*models.Country, error)
	ListAll(ctx context.Context) ([]*models.Country, error)
	Update(ctx context.Context, country *models.Country) error
	DeleteByUUID(ctx context.Context, uuid string) error
}

// NumberInventoryRepository defines operations for per-country number lists
type NumberInventoryRepository interface {
	Repository[models.NumberInventory, models.NumberInventoryFilter]
	ByCountryName(ctx context.Context, countryName string) (*models.NumberInventory, error)
	ListAll(ctx context.Context) ([]*models.NumberInventory, error)
	ReplaceNumbers(ctx context.Context, countryName string, numbers []string) error
}

// TeamMemberRepository defines operations for the member roster
type TeamMemberRepository interface {
	Repository[models.TeamMember, models.TeamMemberFilter]
	ByUUID(ctx context.Context, uuid string) (*models.TeamMember, error)
	ListAll(ctx context.Context) ([]*models.TeamMember, error)
	DeleteByUUID(ctx context.Context, uuid string) error
}

// AllocationRepository defines operations for member number assignments
type AllocationRepository interface {
	Repository[models.Allocation, models.AllocationFilter]
	ByMemberUUID(ctx context.Context, memberUUID uuid.UUID) (*models.Allocation, error)
	FullMap(ctx context.Context) (models.AllocationMap, error)
	FullMapForUpdate(ctx context.Context) (models.AllocationMap, error)
	ReplaceNumbers(ctx context.Context, memberUUID uuid.UUID, numbers []string) error
	DeleteByMemberUUID(ctx context.Context, memberUUID uuid.UUID) error
}

// AppStatsRepository defines operations for the singleton stats row
type AppStatsRepository interface {
	Get(ctx context.Context) (*models.AppStats, error)
	Upsert(ctx context.Context, stats *models.AppStats) error
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
	UpdatePassword(ctx context.Context, adminID uint, passwordHash string) error
}

// MemberSessionRepository defines operations for persisted member choices
type MemberSessionRepository interface {
	Repository[models.MemberSession, models.MemberSessionFilter]
	ByToken(ctx context.Context, token string) (*models.MemberSession, error)
	Touch(ctx context.Context, sessionID uint, at time.Time) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
