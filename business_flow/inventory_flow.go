// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"strings"

	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
)

// InventoryFlow manages per-country number lists. Replacement is wholesale:
// the admin pastes the full list and it overwrites what was there. Numbers
// that disappear are NOT purged from existing allocations; stale entries
// simply stop matching anything.
type InventoryFlow interface {
	ReplaceInventory(ctx context.Context, countryName string, req *dto.ReplaceInventoryRequest, adminID uint, metadata *ClientMetadata) (*dto.InventoryDTO, error)
	GetInventory(ctx context.Context, countryName string) (*dto.InventoryDTO, error)
	ListInventories(ctx context.Context) ([]dto.InventoryDTO, error)
}

// InventoryFlowImpl implements InventoryFlow
type InventoryFlowImpl struct {
	inventoryRepo repository.NumberInventoryRepository
	countryRepo   repository.CountryRepository
	auditRepo     repository.AuditLogRepository
	store         realtime.Store
}

// NewInventoryFlow creates a new inventory flow
func NewInventoryFlow(
	inventoryRepo repository.NumberInventoryRepository,
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditLogRepository,
	store realtime.Store,
) InventoryFlow {
	return &InventoryFlowImpl{
		inventoryRepo: inventoryRepo,
		countryRepo:   countryRepo,
		auditRepo:     auditRepo,
		store:         store,
	}
}

// ReplaceInventory overwrites a country's number list. Lines are trimmed,
// blanks dropped, duplicates collapsed keeping first position.
func (f *InventoryFlowImpl) ReplaceInventory(ctx context.Context, countryName string, req *dto.ReplaceInventoryRequest, adminID uint, metadata *ClientMetadata) (*dto.InventoryDTO, error) {
	name := normalizeCountryName(countryName)

	country, err := f.countryRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up country", err)
	}
	if country == nil {
		return nil, NewBusinessError("COUNTRY_NOT_FOUND", "country not found", ErrCountryNotFound)
	}

	seen := make(map[string]bool, len(req.Numbers))
	numbers := make([]string, 0, len(req.Numbers))
	for _, n := range req.Numbers {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	if err := f.inventoryRepo.ReplaceNumbers(ctx, name, numbers); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to replace inventory", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionInventoryReplaced, "inventory replaced: "+name, metadata, map[string]any{"count": len(numbers)}, true)
	publishSnapshot(ctx, f.store, realtime.NumbersPath(name), numbers)

	return &dto.InventoryDTO{CountryName: name, Numbers: numbers}, nil
}

// GetInventory returns a country's number list; a country without a row gets
// an empty list, not an error.
func (f *InventoryFlowImpl) GetInventory(ctx context.Context, countryName string) (*dto.InventoryDTO, error) {
	name := normalizeCountryName(countryName)

	inventory, err := f.inventoryRepo.ByCountryName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load inventory", err)
	}

	numbers := []string{}
	if inventory != nil {
		numbers = inventory.Numbers
	}
	return &dto.InventoryDTO{CountryName: name, Numbers: numbers}, nil
}

// ListInventories returns every country's number list
func (f *InventoryFlowImpl) ListInventories(ctx context.Context) ([]dto.InventoryDTO, error) {
	inventories, err := f.inventoryRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load inventories", err)
	}

	out := make([]dto.InventoryDTO, 0, len(inventories))
	for _, inv := range inventories {
		out = append(out, dto.InventoryDTO{CountryName: inv.CountryName, Numbers: inv.Numbers})
	}
	return out, nil
}
