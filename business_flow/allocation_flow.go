// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"gorm.io/gorm"
)

// AllocationFlow owns every mutation of number ownership. Each write loads the
// full allocation snapshot, runs the pure reconciler on it, and persists the
// result inside one database transaction, so the read-modify-write cannot
// interleave with a concurrent allocation and break single ownership.
type AllocationFlow interface {
	AllocateNumber(ctx context.Context, memberUUID string, req *dto.AllocateNumberRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error)
	DeallocateNumber(ctx context.Context, memberUUID string, req *dto.DeallocateNumberRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error)
	ToggleCountry(ctx context.Context, memberUUID string, req *dto.ToggleCountryRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error)
	ReleaseNumber(ctx context.Context, req *dto.ReleaseNumberRequest, metadata *ClientMetadata) error
	MemberAllocations(ctx context.Context, memberUUID string) (*dto.AllocationDTO, error)
	AvailableInCountry(ctx context.Context, countryName, memberUUID string) (*dto.AvailableNumbersResponse, error)
	FullMap(ctx context.Context) (models.AllocationMap, error)
}

// AllocationFlowImpl implements AllocationFlow
type AllocationFlowImpl struct {
	allocationRepo repository.AllocationRepository
	inventoryRepo  repository.NumberInventoryRepository
	memberRepo     repository.TeamMemberRepository
	auditRepo      repository.AuditLogRepository
	store          realtime.Store
	db             *gorm.DB
}

// NewAllocationFlow creates a new allocation flow
func NewAllocationFlow(
	allocationRepo repository.AllocationRepository,
	inventoryRepo repository.NumberInventoryRepository,
	memberRepo repository.TeamMemberRepository,
	auditRepo repository.AuditLogRepository,
	store realtime.Store,
	db *gorm.DB,
) AllocationFlow {
	return &AllocationFlowImpl{
		allocationRepo: allocationRepo,
		inventoryRepo:  inventoryRepo,
		memberRepo:     memberRepo,
		auditRepo:      auditRepo,
		store:          store,
		db:             db,
	}
}

// AllocateNumber assigns one number to the member. Allocating a number the
// member already holds succeeds without change; a number held by someone else
// is rejected even if the client believed it was free.
func (f *AllocationFlowImpl) AllocateNumber(ctx context.Context, memberUUID string, req *dto.AllocateNumberRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error) {
	member, err := f.requireMember(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	var result []string
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		allocs, err := f.allocationRepo.FullMapForUpdate(txCtx)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
		}

		inInventory, err := f.numberInAnyInventory(txCtx, req.Number)
		if err != nil {
			return err
		}
		if !inInventory {
			return NewBusinessError("NUMBER_NOT_IN_INVENTORY", "number is not in the inventory", ErrNumberNotInInventory)
		}

		if owner, owned := OwnerOf(allocs, req.Number); owned && owner != member.UUID.String() {
			return NewBusinessError("NUMBER_ALREADY_ALLOCATED", "number is already allocated to another member", ErrNumberAlreadyAllocated)
		}

		next := Allocate(allocs, member.UUID.String(), req.Number)
		result = next[member.UUID.String()]
		return f.allocationRepo.ReplaceNumbers(txCtx, member.UUID, result)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, f.auditRepo, nil, models.AuditActionNumberAllocated, "number allocated: "+req.Number, metadata, map[string]any{"member_uuid": member.UUID.String()}, true)
	publishSnapshot(ctx, f.store, realtime.AllocationsPath(member.UUID.String()), result)

	return &dto.AllocationDTO{MemberUUID: member.UUID.String(), Numbers: result}, nil
}

// DeallocateNumber removes one number from the member's own set. Numbers the
// member does not hold are left alone, so retries and stale clicks are
// harmless.
func (f *AllocationFlowImpl) DeallocateNumber(ctx context.Context, memberUUID string, req *dto.DeallocateNumberRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error) {
	member, err := f.requireMember(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	var result []string
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		allocs, err := f.allocationRepo.FullMapForUpdate(txCtx)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
		}

		owner, owned := OwnerOf(allocs, req.Number)
		if !owned || owner != member.UUID.String() {
			// Not ours: report the current set unchanged.
			result = allocs[member.UUID.String()]
			if result == nil {
				result = []string{}
			}
			return nil
		}

		next := Deallocate(allocs, req.Number)
		result = next[member.UUID.String()]
		return f.allocationRepo.ReplaceNumbers(txCtx, member.UUID, result)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, f.auditRepo, nil, models.AuditActionNumberDeallocated, "number deallocated: "+req.Number, metadata, map[string]any{"member_uuid": member.UUID.String()}, true)
	publishSnapshot(ctx, f.store, realtime.AllocationsPath(member.UUID.String()), result)

	return &dto.AllocationDTO{MemberUUID: member.UUID.String(), Numbers: result}, nil
}

// ToggleCountry flips the member's hold on a whole country. A country with no
// inventory toggles against an empty list, which changes nothing.
func (f *AllocationFlowImpl) ToggleCountry(ctx context.Context, memberUUID string, req *dto.ToggleCountryRequest, metadata *ClientMetadata) (*dto.AllocationDTO, error) {
	member, err := f.requireMember(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	country := normalizeCountryName(req.CountryName)

	var result []string
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		allocs, err := f.allocationRepo.FullMapForUpdate(txCtx)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
		}

		inventory, err := f.inventoryRepo.ByCountryName(txCtx, country)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "failed to load inventory", err)
		}
		var countryNumbers []string
		if inventory != nil {
			countryNumbers = inventory.Numbers
		}

		next := ToggleCountry(allocs, member.UUID.String(), countryNumbers)
		result = next[member.UUID.String()]
		return f.allocationRepo.ReplaceNumbers(txCtx, member.UUID, result)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, f.auditRepo, nil, models.AuditActionCountryToggled, "country toggled: "+country, metadata, map[string]any{"member_uuid": member.UUID.String()}, true)
	publishSnapshot(ctx, f.store, realtime.AllocationsPath(member.UUID.String()), result)

	return &dto.AllocationDTO{MemberUUID: member.UUID.String(), Numbers: result}, nil
}

// ReleaseNumber frees a number from whoever holds it, typically after the
// task using it finished. Releasing an unowned number is a no-op.
func (f *AllocationFlowImpl) ReleaseNumber(ctx context.Context, req *dto.ReleaseNumberRequest, metadata *ClientMetadata) error {
	var ownerUUID string
	var ownerNumbers []string
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		allocs, err := f.allocationRepo.FullMapForUpdate(txCtx)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
		}

		owner, owned := OwnerOf(allocs, req.Number)
		if !owned {
			return nil
		}

		parsed, err := uuid.Parse(owner)
		if err != nil {
			return NewBusinessError("DATABASE_ERROR", "malformed member UUID in allocations", err)
		}

		next := Deallocate(allocs, req.Number)
		ownerUUID = owner
		ownerNumbers = next[owner]
		return f.allocationRepo.ReplaceNumbers(txCtx, parsed, ownerNumbers)
	})
	if err != nil {
		return err
	}

	if ownerUUID != "" {
		recordAudit(ctx, f.auditRepo, nil, models.AuditActionNumberReleased, "number released: "+req.Number, metadata, map[string]any{"member_uuid": ownerUUID}, true)
		publishSnapshot(ctx, f.store, realtime.AllocationsPath(ownerUUID), ownerNumbers)
	}
	return nil
}

// MemberAllocations returns one member's current number set
func (f *AllocationFlowImpl) MemberAllocations(ctx context.Context, memberUUID string) (*dto.AllocationDTO, error) {
	member, err := f.requireMember(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	allocation, err := f.allocationRepo.ByMemberUUID(ctx, member.UUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load allocation", err)
	}

	numbers := []string{}
	if allocation != nil {
		numbers = allocation.Numbers
	}
	return &dto.AllocationDTO{MemberUUID: member.UUID.String(), Numbers: numbers}, nil
}

// AvailableInCountry lists the numbers the member may take in one country
func (f *AllocationFlowImpl) AvailableInCountry(ctx context.Context, countryName, memberUUID string) (*dto.AvailableNumbersResponse, error) {
	member, err := f.requireMember(ctx, memberUUID)
	if err != nil {
		return nil, err
	}

	country := normalizeCountryName(countryName)
	inventory, err := f.inventoryRepo.ByCountryName(ctx, country)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load inventory", err)
	}
	var countryNumbers []string
	if inventory != nil {
		countryNumbers = inventory.Numbers
	}

	allocs, err := f.allocationRepo.FullMap(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
	}

	return &dto.AvailableNumbersResponse{
		CountryName: country,
		Numbers:     AvailableNumbers(allocs, countryNumbers, member.UUID.String()),
	}, nil
}

// FullMap exposes the current allocation snapshot for the admin monitor
func (f *AllocationFlowImpl) FullMap(ctx context.Context) (models.AllocationMap, error) {
	allocs, err := f.allocationRepo.FullMap(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load allocations", err)
	}
	return allocs, nil
}

func (f *AllocationFlowImpl) requireMember(ctx context.Context, memberUUID string) (*models.TeamMember, error) {
	member, err := f.memberRepo.ByUUID(ctx, memberUUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up member", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "team member not found", ErrMemberNotFound)
	}
	return member, nil
}

func (f *AllocationFlowImpl) numberInAnyInventory(ctx context.Context, number string) (bool, error) {
	inventories, err := f.inventoryRepo.ListAll(ctx)
	if err != nil {
		return false, NewBusinessError("DATABASE_ERROR", "failed to load inventories", err)
	}
	for _, inv := range inventories {
		for _, n := range inv.Numbers {
			if n == number {
				return true, nil
			}
		}
	}
	return false, nil
}
