package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/dashboard"
	"github.com/assetmgr/assetmgr/internal/models"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
)

const assetIDAttempts = 5

// AssetFilter narrows asset listings.
type AssetFilter struct {
	Module              string
	Types               []string
	Status              string
	IncludePlaceholders bool
}

// AssetInput describes an asset to create.
type AssetInput struct {
	ID            string
	ItemName      string
	Type          string
	Category      string
	Status        string
	SerialNumber  string
	Location      string
	AssignedTo    string
	IsPlaceholder bool
	Metadata      map[string]any
}

// AssetService reads and records assets for rollups.
type AssetService struct {
	db            *gorm.DB
	audit         *AuditService
	now           func() time.Time
	entropy       io.Reader
	defaultModule string

	mu       sync.RWMutex
	onCreate []func(*models.Asset)
}

// AssetOption customises an AssetService.
type AssetOption func(*AssetService)

// WithAssetDefaultModule sets the module recorded for assets created without one.
func WithAssetDefaultModule(module string) AssetOption {
	return func(s *AssetService) {
		if module = strings.TrimSpace(module); module != "" {
			s.defaultModule = module
		}
	}
}

// NewAssetService constructs an asset service.
func NewAssetService(db *gorm.DB, audit *AuditService, opts ...AssetOption) (*AssetService, error) {
	if db == nil {
		return nil, errors.New("asset service: db is required")
	}
	svc := &AssetService{db: db, audit: audit, now: time.Now, defaultModule: DefaultModule}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// OnCreate registers fn to be called after an asset is stored. Listeners run
// in registration order and must not block.
func (s *AssetService) OnCreate(fn func(*models.Asset)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onCreate = append(s.onCreate, fn)
	s.mu.Unlock()
}

// List returns assets matching filter ordered by identifier.
func (s *AssetService) List(ctx context.Context, filter AssetFilter) ([]models.Asset, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Asset{})
	if module := strings.TrimSpace(filter.Module); module != "" {
		query = query.Where("category = ?", module)
	}
	if types := normaliseNames(filter.Types); len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if !filter.IncludePlaceholders {
		query = query.Where("is_placeholder = ?", false)
	}

	var assets []models.Asset
	if err := query.Order("id ASC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("asset service: list assets: %w", err)
	}
	return assets, nil
}

// RollupSource returns every asset of module, placeholders included, in the
// shape used by dashboard rollups.
func (s *AssetService) RollupSource(ctx context.Context, module string) ([]dashboard.Asset, error) {
	assets, err := s.List(ctx, AssetFilter{Module: module, IncludePlaceholders: true})
	if err != nil {
		return nil, err
	}
	out := make([]dashboard.Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, dashboard.Asset{
			ID:            a.ID,
			Type:          a.Type,
			Module:        a.Category,
			Status:        a.Status,
			IsPlaceholder: a.IsPlaceholder,
		})
	}
	return out, nil
}

// Get loads an asset by identifier.
func (s *AssetService) Get(ctx context.Context, id string) (*models.Asset, error) {
	ctx = ensureContext(ctx)

	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.NewNotFound("asset", id)
		}
		return nil, fmt.Errorf("asset service: load asset: %w", err)
	}
	return &asset, nil
}

// Create stores a new asset, generating its identifier when none is supplied.
func (s *AssetService) Create(ctx context.Context, actor string, input AssetInput) (*models.Asset, error) {
	ctx = ensureContext(ctx)

	asset := models.Asset{
		BaseModel:     models.BaseModel{ID: strings.TrimSpace(input.ID)},
		ItemName:      strings.TrimSpace(input.ItemName),
		Type:          strings.TrimSpace(input.Type),
		Category:      strings.TrimSpace(input.Category),
		Status:        strings.TrimSpace(input.Status),
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		Location:      strings.TrimSpace(input.Location),
		AssignedTo:    strings.TrimSpace(input.AssignedTo),
		IsPlaceholder: input.IsPlaceholder,
	}
	if asset.ItemName == "" {
		return nil, apperrors.NewBadRequest("asset item name is required")
	}
	if asset.Type == "" {
		return nil, apperrors.NewBadRequest("asset type is required")
	}
	if asset.Category == "" {
		asset.Category = s.defaultModule
	}
	if asset.Status == "" {
		asset.Status = dashboard.StatusInStore
	}
	if input.Metadata != nil {
		encoded, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, apperrors.NewBadRequest("invalid metadata payload")
		}
		asset.Metadata = datatypes.JSON(encoded)
	}

	generated := asset.ID == ""
	for attempt := 0; ; attempt++ {
		if generated {
			id, err := GenerateAssetID(asset.Location, s.now(), asset.IsPlaceholder, s.entropy)
			if err != nil {
				return nil, fmt.Errorf("asset service: %w", err)
			}
			asset.ID = id
		}
		err := s.db.WithContext(ctx).Create(&asset).Error
		if err == nil {
			break
		}
		if isUniqueConstraintError(err) {
			if generated && attempt+1 < assetIDAttempts {
				continue
			}
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("asset service: create asset: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:    actor,
		Action:   AuditAssetCreate,
		Resource: "asset:" + asset.ID,
		AssetID:  asset.ID,
		Details:  fmt.Sprintf("Created %s (%s)", asset.ItemName, asset.Type),
	})
	s.mu.RLock()
	listeners := s.onCreate
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(&asset)
	}
	return &asset, nil
}
