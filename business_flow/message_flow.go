// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
)

// MessageFlow serves the inbound SMS feed: ingestion from the pipeline, the
// recent-messages view, and the per-number association used by the member
// dashboard and the admin monitor.
type MessageFlow interface {
	Ingest(ctx context.Context, req *dto.IngestMessageRequest) (*dto.MessageDTO, error)
	RecentMessages(ctx context.Context) ([]dto.MessageDTO, error)
	MessagesFor(ctx context.Context, number string) ([]dto.MessageDTO, error)
	MemberDashboard(ctx context.Context, memberUUID string) (*dto.MemberDashboardResponse, error)
	MonitorRows(ctx context.Context) ([]dto.MonitorRowDTO, error)
}

// MessageFlowImpl implements MessageFlow
type MessageFlowImpl struct {
	messageRepo    repository.SmsMessageRepository
	allocationRepo repository.AllocationRepository
	inventoryRepo  repository.NumberInventoryRepository
	memberRepo     repository.TeamMemberRepository
	store          realtime.Store
}

// NewMessageFlow creates a new message flow
func NewMessageFlow(
	messageRepo repository.SmsMessageRepository,
	allocationRepo repository.AllocationRepository,
	inventoryRepo repository.NumberInventoryRepository,
	memberRepo repository.TeamMemberRepository,
	store realtime.Store,
) MessageFlow {
	return &MessageFlowImpl{
		messageRepo:    messageRepo,
		allocationRepo: allocationRepo,
		inventoryRepo:  inventoryRepo,
		memberRepo:     memberRepo,
		store:          store,
	}
}

// normalizeNumber strips everything but digits so "+1 (111) 555-0100" and
// "11115550100" compare by the same digits.
func normalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// MessageMatchesNumber reports whether a message targeted at targetNumber
// belongs to number. The pipeline and the inventory disagree on prefixes
// (country codes, plus signs), so after normalizing, a match is an exact
// equality or either digit string containing the other.
func MessageMatchesNumber(targetNumber, number string) bool {
	t := normalizeNumber(targetNumber)
	n := normalizeNumber(number)
	if t == "" || n == "" {
		return false
	}
	return t == n || strings.Contains(t, n) || strings.Contains(n, t)
}

// Ingest records one pipeline message. The store key dedupes redelivery: a
// key already present returns the stored row unchanged.
func (f *MessageFlowImpl) Ingest(ctx context.Context, req *dto.IngestMessageRequest) (*dto.MessageDTO, error) {
	existing, err := f.messageRepo.ByStoreKey(ctx, req.StoreKey)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to check store key", err)
	}
	if existing != nil {
		return toMessageDTO(existing), nil
	}

	message := &models.SmsMessage{
		StoreKey:          req.StoreKey,
		TargetNumber:      req.TargetNumber,
		ProviderSessionID: req.ProviderSessionID,
		Paid:              req.Paid,
		LimitValue:        req.LimitValue,
		MessageContent:    req.MessageContent,
		Timestamp:         req.Timestamp,
		CreatedAt:         utils.UTCNow(),
	}
	if err := f.messageRepo.Save(ctx, message); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to save message", err)
	}

	// Push the refreshed feed so dashboards update without polling.
	if recent, err := f.RecentMessages(ctx); err == nil {
		publishSnapshot(ctx, f.store, realtime.PathMessages, recent)
	}

	return toMessageDTO(message), nil
}

// RecentMessages returns the live feed: the newest messages first, capped at
// the feed limit.
func (f *MessageFlowImpl) RecentMessages(ctx context.Context) ([]dto.MessageDTO, error) {
	messages, err := f.messageRepo.ListRecent(ctx, utils.RecentMessageLimit)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load messages", err)
	}
	return toMessageDTOs(messages), nil
}

// MessagesFor returns the recent messages belonging to one number, newest
// first. Matching happens against the recent feed, not full history, the same
// window the dashboard displays.
func (f *MessageFlowImpl) MessagesFor(ctx context.Context, number string) ([]dto.MessageDTO, error) {
	messages, err := f.messageRepo.ListRecent(ctx, utils.RecentMessageLimit)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load messages", err)
	}

	matched := make([]dto.MessageDTO, 0)
	for _, m := range messages {
		if MessageMatchesNumber(m.TargetNumber, number) {
			matched = append(matched, *toMessageDTO(m))
		}
	}
	return matched, nil
}

// MemberDashboard assembles the member view: the member, their numbers, and
// the recent messages for those numbers.
func (f *MessageFlowImpl) MemberDashboard(ctx context.Context, memberUUID string) (*dto.MemberDashboardResponse, error) {
	member, err := f.memberRepo.ByUUID(ctx, memberUUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up member", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "team member not found", ErrMemberNotFound)
	}

	allocation, err := f.allocationRepo.ByMemberUUID(ctx, member.UUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load allocation", err)
	}
	numbers := []string{}
	if allocation != nil {
		numbers = allocation.Numbers
	}

	recent, err := f.messageRepo.ListRecent(ctx, utils.RecentMessageLimit)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load messages", err)
	}

	messages := make([]dto.MessageDTO, 0)
	for _, m := range recent {
		for _, number := range numbers {
			if MessageMatchesNumber(m.TargetNumber, number) {
				messages = append(messages, *toMessageDTO(m))
				break
			}
		}
	}

	return &dto.MemberDashboardResponse{
		Member:   toTeamMemberDTO(member),
		Numbers:  numbers,
		Messages: messages,
	}, nil
}

// MonitorRows builds the admin monitor: every inventory number with its
// country, current holder, and recent message activity.
func (f *MessageFlowImpl) MonitorRows(ctx context.Context) ([]dto.MonitorRowDTO, error) {
	inventories, err := f.inventoryRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load inventories", err)
	}
	allocs, err := f.allocationRepo.FullMap(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
	}
	members, err := f.memberRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load members", err)
	}
	recent, err := f.messageRepo.ListRecent(ctx, utils.RecentMessageLimit)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load messages", err)
	}

	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.UUID.String()] = m.Name
	}

	rows := make([]dto.MonitorRowDTO, 0)
	for _, inv := range inventories {
		for _, number := range inv.Numbers {
			row := dto.MonitorRowDTO{
				Number:      number,
				CountryName: inv.CountryName,
			}
			if owner, owned := OwnerOf(allocs, number); owned {
				row.OwnerUUID = owner
				row.OwnerName = memberNames[owner]
			}
			for _, m := range recent {
				if !MessageMatchesNumber(m.TargetNumber, number) {
					continue
				}
				row.MessageCount++
				// recent is newest first, keep the first hit.
				if row.LastMessage == "" {
					row.LastMessage = m.MessageContent
					row.LastSeenAt = time.UnixMilli(m.Timestamp).UTC().Format(time.RFC3339)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func toMessageDTO(m *models.SmsMessage) *dto.MessageDTO {
	return &dto.MessageDTO{
		StoreKey:          m.StoreKey,
		TargetNumber:      m.TargetNumber,
		ProviderSessionID: m.ProviderSessionID,
		Paid:              m.Paid,
		LimitValue:        m.LimitValue,
		MessageContent:    m.MessageContent,
		Timestamp:         m.Timestamp,
	}
}

func toMessageDTOs(messages []*models.SmsMessage) []dto.MessageDTO {
	out := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, *toMessageDTO(m))
	}
	return out
}
