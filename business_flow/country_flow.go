// Package businessflow contains the business logic for the application.
package businessflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/tasksms/dashboard/app/dto"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
)

// normalizeCountryName canonicalizes a country name the way it is stored.
// Country names double as the inventory lookup key, so every flow that
// receives one from a client must pass it through here first.
func normalizeCountryName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// CountryFlow manages the admin's country list. Country names are uppercased
// on entry because they double as the inventory lookup key.
type CountryFlow interface {
	CreateCountry(ctx context.Context, req *dto.CreateCountryRequest, adminID uint, metadata *ClientMetadata) (*dto.CountryDTO, error)
	UpdateCountry(ctx context.Context, countryUUID string, req *dto.UpdateCountryRequest, adminID uint, metadata *ClientMetadata) (*dto.CountryDTO, error)
	DeleteCountry(ctx context.Context, countryUUID string, adminID uint, metadata *ClientMetadata) error
	ListCountries(ctx context.Context) ([]dto.CountryDTO, error)
}

// CountryFlowImpl implements CountryFlow
type CountryFlowImpl struct {
	countryRepo repository.CountryRepository
	auditRepo   repository.AuditLogRepository
	store       realtime.Store
}

// NewCountryFlow creates a new country flow
func NewCountryFlow(
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditLogRepository,
	store realtime.Store,
) CountryFlow {
	return &CountryFlowImpl{
		countryRepo: countryRepo,
		auditRepo:   auditRepo,
		store:       store,
	}
}

// CreateCountry adds a country. The flag image, when present, is decoded and
// downscaled to a thumbnail before storage so oversized uploads never bloat
// the snapshot every client receives.
func (f *CountryFlowImpl) CreateCountry(ctx context.Context, req *dto.CreateCountryRequest, adminID uint, metadata *ClientMetadata) (*dto.CountryDTO, error) {
	name := normalizeCountryName(req.Name)
	if name == "" {
		return nil, NewBusinessError("COUNTRY_NAME_REQUIRED", "country name is required", ErrCountryNameRequired)
	}
	dialCode := strings.TrimSpace(req.DialCode)
	if dialCode == "" {
		return nil, NewBusinessError("DIAL_CODE_REQUIRED", "dial code is required", ErrDialCodeRequired)
	}

	existing, err := f.countryRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to check country", err)
	}
	if existing != nil {
		return nil, NewBusinessError("COUNTRY_ALREADY_EXISTS", "country already exists", ErrCountryAlreadyExists)
	}

	flag, err := processFlagImage(req.FlagImage)
	if err != nil {
		return nil, err
	}

	country := &models.Country{
		UUID:      uuid.New(),
		Name:      name,
		DialCode:  dialCode,
		FlagImage: flag,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := f.countryRepo.Save(ctx, country); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to save country", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionCountryCreated, "country created: "+name, metadata, nil, true)
	f.publishCountries(ctx)

	return toCountryDTO(country), nil
}

// UpdateCountry changes a country's dial code or flag. The name is immutable
// because inventory rows key on it.
func (f *CountryFlowImpl) UpdateCountry(ctx context.Context, countryUUID string, req *dto.UpdateCountryRequest, adminID uint, metadata *ClientMetadata) (*dto.CountryDTO, error) {
	country, err := f.countryRepo.ByUUID(ctx, countryUUID)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to look up country", err)
	}
	if country == nil {
		return nil, NewBusinessError("COUNTRY_NOT_FOUND", "country not found", ErrCountryNotFound)
	}

	if req.DialCode != nil && strings.TrimSpace(*req.DialCode) != "" {
		country.DialCode = strings.TrimSpace(*req.DialCode)
	}
	if req.FlagImage != nil {
		flag, err := processFlagImage(req.FlagImage)
		if err != nil {
			return nil, err
		}
		country.FlagImage = flag
	}

	if err := f.countryRepo.Update(ctx, country); err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to update country", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionCountryUpdated, "country updated: "+country.Name, metadata, nil, true)
	f.publishCountries(ctx)

	return toCountryDTO(country), nil
}

// DeleteCountry removes the country entry. Its inventory row and any
// allocations of its numbers stay behind, per the lenient deletion model.
func (f *CountryFlowImpl) DeleteCountry(ctx context.Context, countryUUID string, adminID uint, metadata *ClientMetadata) error {
	country, err := f.countryRepo.ByUUID(ctx, countryUUID)
	if err != nil {
		return NewBusinessError("DATABASE_ERROR", "failed to look up country", err)
	}
	if country == nil {
		return NewBusinessError("COUNTRY_NOT_FOUND", "country not found", ErrCountryNotFound)
	}

	if err := f.countryRepo.DeleteByUUID(ctx, countryUUID); err != nil {
		return NewBusinessError("DATABASE_ERROR", "failed to delete country", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionCountryDeleted, "country deleted: "+country.Name, metadata, nil, true)
	f.publishCountries(ctx)
	return nil
}

// ListCountries returns every country in creation order
func (f *CountryFlowImpl) ListCountries(ctx context.Context) ([]dto.CountryDTO, error) {
	countries, err := f.countryRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DATABASE_ERROR", "failed to load countries", err)
	}

	out := make([]dto.CountryDTO, 0, len(countries))
	for _, c := range countries {
		out = append(out, *toCountryDTO(c))
	}
	return out, nil
}

func (f *CountryFlowImpl) publishCountries(ctx context.Context) {
	countries, err := f.ListCountries(ctx)
	if err != nil {
		return
	}
	publishSnapshot(ctx, f.store, realtime.PathCountries, countries)
}

func toCountryDTO(c *models.Country) *dto.CountryDTO {
	return &dto.CountryDTO{
		UUID:      c.UUID.String(),
		Name:      c.Name,
		DialCode:  c.DialCode,
		FlagImage: c.FlagImage,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// processFlagImage validates an inline flag upload and re-encodes it as a
// bounded PNG thumbnail data URL. Nil input passes through (no flag).
func processFlagImage(dataURL *string) (*string, error) {
	if dataURL == nil || strings.TrimSpace(*dataURL) == "" {
		return nil, nil
	}

	payload := *dataURL
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewBusinessError("INVALID_FLAG_IMAGE", "flag image could not be decoded", ErrInvalidFlagImage)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, NewBusinessError("INVALID_FLAG_IMAGE", "flag image could not be decoded", ErrInvalidFlagImage)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > utils.FlagThumbnailMaxPx || h > utils.FlagThumbnailMaxPx {
		scale := float64(utils.FlagThumbnailMaxPx) / float64(max(w, h))
		dw := int(float64(w) * scale)
		dh := int(float64(h) * scale)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, NewBusinessError("INVALID_FLAG_IMAGE", "flag image could not be encoded", err)
	}

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return &encoded, nil
}
