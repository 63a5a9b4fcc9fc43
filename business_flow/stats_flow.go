// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
)

// StatsFlow manages the admin-edited display counters. These are presentation
// values, deliberately not derived from the message feed or allocations.
type StatsFlow interface {
	GetStats(ctx context.Context) (*dto.StatsDTO, error)
	UpdateStats(ctx context.Context, req *dto.UpdateStatsRequest, adminID uint, metadata *ClientMetadata) (*dto.StatsDTO, error)
}

// StatsFlowImpl implements StatsFlow
type StatsFlowImpl struct {
	statsRepo repository.AppStatsRepository
	auditRepo repository.AuditLogRepository
	store     realtime.Store
}

// NewStatsFlow creates a new stats flow
func NewStatsFlow(
	statsRepo repository.AppStatsRepository,
	auditRepo repository.AuditLogRepository,
	store realtime.Store,
) StatsFlow {
	return &StatsFlowImpl{
		statsRepo: statsRepo,
		auditRepo: auditRepo,
		store:     store,
	}
}

// GetStats returns the counters; zeros when the row was never written
func (f *StatsFlowImpl) GetStats(ctx context.Context) (*dto.StatsDTO, error) {
	stats, err := f.statsRepo.Get(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load stats", err)
	}
	if stats == nil {
		return &dto.StatsDTO{}, nil
	}
	return toStatsDTO(stats), nil
}

// UpdateStats overwrites the counters
func (f *StatsFlowImpl) UpdateStats(ctx context.Context, req *dto.UpdateStatsRequest, adminID uint, metadata *ClientMetadata) (*dto.StatsDTO, error) {
	if *req.SmsToday < 0 || *req.MyNumbersCount < 0 {
		return nil, NewBusinessError("NEGATIVE_STATS_VALUE", "stats values cannot be negative", ErrNegativeStatsValue)
	}

	stats := &models.AppStats{
		SmsToday:       *req.SmsToday,
		MyNumbersCount: *req.MyNumbersCount,
	}
	if err := f.statsRepo.Upsert(ctx, stats); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to save stats", err)
	}

	result := toStatsDTO(stats)
	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionStatsUpdated, "stats updated", metadata, map[string]any{"sms_today": stats.SmsToday, "my_numbers_count": stats.MyNumbersCount}, true)
	publishSnapshot(ctx, f.store, realtime.PathStats, result)

	return result, nil
}

func toStatsDTO(s *models.AppStats) *dto.StatsDTO {
	return &dto.StatsDTO{
		SmsToday:       s.SmsToday,
		MyNumbersCount: s.MyNumbersCount,
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}
