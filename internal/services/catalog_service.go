package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/internal/models"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

const (
	defaultFolderIcon = "📂"
	defaultKindIcon   = "📦"

	// DefaultModule is used when a folder or kind is saved without a module.
	DefaultModule = "IT"

	maxParentDepth = 256

	folderOrder = "ordering ASC, name ASC, id ASC"
)

// Rebuilder refreshes derived state after the catalog changes.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*Snapshot, error)
}

// CatalogService manages the folders and asset kinds that make up the hierarchy.
type CatalogService struct {
	db            *gorm.DB
	audit         *AuditService
	rebuilder     Rebuilder
	defaultModule string
	now           func() time.Time
}

// FolderInput describes folder create/update payloads.
type FolderInput struct {
	ID       string
	Name     string
	ParentID *string
	Module   string
	Icon     string
	Ordering *int
}

// KindInput describes asset kind create/update payloads.
type KindInput struct {
	Name       string
	Module     string
	Icon       string
	ParentName *string
}

// CatalogOption customises a CatalogService.
type CatalogOption func(*CatalogService)

// WithDefaultModule overrides the module assigned to records saved without one.
func WithDefaultModule(module string) CatalogOption {
	return func(s *CatalogService) {
		if module = strings.TrimSpace(module); module != "" {
			s.defaultModule = module
		}
	}
}

// WithCatalogClock overrides the clock used to derive folder identifiers.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(db *gorm.DB, audit *AuditService, opts ...CatalogOption) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("catalog service: db is required")
	}
	svc := &CatalogService{
		db:            db,
		audit:         audit,
		defaultModule: DefaultModule,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SetRebuilder registers the component rebuilt after every mutation.
func (s *CatalogService) SetRebuilder(r Rebuilder) {
	s.rebuilder = r
}

// ListFolders returns every folder ordered by ordering then name.
func (s *CatalogService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	ctx = ensureContext(ctx)

	var folders []models.Folder
	if err := s.db.WithContext(ctx).Order(folderOrder).Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list folders: %w", err)
	}
	return folders, nil
}

// ListKinds returns every asset kind in creation order.
func (s *CatalogService) ListKinds(ctx context.Context) ([]models.AssetKind, error) {
	ctx = ensureContext(ctx)

	var kinds []models.AssetKind
	if err := s.db.WithContext(ctx).Order("created_at ASC, name ASC").Find(&kinds).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list kinds: %w", err)
	}
	return kinds, nil
}

// Records returns the catalog normalized into hierarchy records.
func (s *CatalogService) Records(ctx context.Context) ([]hierarchy.Record, hierarchy.NormalizeReport, error) {
	folders, err := s.ListFolders(ctx)
	if err != nil {
		return nil, hierarchy.NormalizeReport{}, err
	}
	kinds, err := s.ListKinds(ctx)
	if err != nil {
		return nil, hierarchy.NormalizeReport{}, err
	}

	folderRecords := make([]hierarchy.FolderRecord, 0, len(folders))
	for _, f := range folders {
		folderRecords = append(folderRecords, hierarchy.FolderRecord{
			ID:       f.ID,
			Name:     f.Name,
			ParentID: derefString(f.ParentID),
			Module:   f.Module,
			Icon:     f.Icon,
			Order:    f.Ordering,
		})
	}
	kindRecords := make([]hierarchy.KindRecord, 0, len(kinds))
	for _, k := range kinds {
		kindRecords = append(kindRecords, hierarchy.KindRecord{
			Name:       k.Name,
			ParentName: derefString(k.ParentName),
			Module:     k.Module,
			Icon:       k.Icon,
		})
	}

	records, report := hierarchy.Normalize(folderRecords, kindRecords)
	return records, report, nil
}

// GetFolder loads a folder by identifier.
func (s *CatalogService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.NewNotFound("folder", id)
		}
		return nil, fmt.Errorf("catalog service: load folder: %w", err)
	}
	return &folder, nil
}

// SaveFolder creates or updates a folder. A missing ID is derived from the
// current time.
func (s *CatalogService) SaveFolder(ctx context.Context, actor string, input FolderInput) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("folder name is required")
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = fmt.Sprintf("F%d", s.now().UnixMilli())
	}
	parentID := trimmedPtr(input.ParentID)
	if parentID != nil && *parentID == id {
		return nil, apperrors.NewBadRequest("folder cannot be its own parent")
	}

	module := strings.TrimSpace(input.Module)
	if module == "" {
		module = s.defaultModule
	}
	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = defaultFolderIcon
	}

	var saved models.Folder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			cyclic, err := folderChainContains(tx, *parentID, id)
			if err != nil {
				return err
			}
			if cyclic {
				return apperrors.NewBadRequest("folder cannot be moved under its own descendant")
			}
		}

		var existing models.Folder
		err := tx.First(&existing, "id = ?", id).Error
		switch {
		case err == nil:
			updates := map[string]any{
				"name":      name,
				"parent_id": parentID,
				"module":    module,
				"icon":      icon,
			}
			if input.Ordering != nil {
				updates["ordering"] = *input.Ordering
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("catalog service: update folder: %w", err)
			}
		case isRecordNotFound(err):
			folder := models.Folder{
				BaseModel: models.BaseModel{ID: id},
				Name:      name,
				ParentID:  parentID,
				Module:    module,
				Icon:      icon,
			}
			if input.Ordering != nil {
				folder.Ordering = *input.Ordering
			}
			if err := tx.Create(&folder).Error; err != nil {
				if isUniqueConstraintError(err) {
					return apperrors.ErrConflict.WithInternal(err)
				}
				return fmt.Errorf("catalog service: create folder: %w", err)
			}
		default:
			return fmt.Errorf("catalog service: load folder: %w", err)
		}

		return tx.First(&saved, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:    actor,
		Action:   AuditFolderSave,
		Resource: "folder:" + saved.ID,
		Details:  fmt.Sprintf("Saved folder %s", saved.Name),
		Metadata: map[string]any{"module": saved.Module, "parent_id": derefString(saved.ParentID)},
	})
	s.rebuild(ctx)
	return &saved, nil
}

// DeleteFolder removes a folder. Child folders move to the deleted folder's
// parent and kinds filed under it follow the same parent.
func (s *CatalogService) DeleteFolder(ctx context.Context, actor, id string) error {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)

	var folder models.Folder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&folder, "id = ?", id).Error; err != nil {
			if isRecordNotFound(err) {
				return apperrors.NewNotFound("folder", id)
			}
			return fmt.Errorf("catalog service: load folder: %w", err)
		}

		if err := tx.Model(&models.Folder{}).
			Where("parent_id = ?", folder.ID).
			Update("parent_id", folder.ParentID).Error; err != nil {
			return fmt.Errorf("catalog service: reassign child folders: %w", err)
		}

		var parentName *string
		if folder.ParentID != nil {
			var parent models.Folder
			err := tx.First(&parent, "id = ?", *folder.ParentID).Error
			switch {
			case err == nil:
				parentName = &parent.Name
			case !isRecordNotFound(err):
				return fmt.Errorf("catalog service: load parent folder: %w", err)
			}
		}
		owner, err := folderNameOwner(tx, folder.Name, folder.Module)
		if err != nil {
			return err
		}
		if owner == folder.ID {
			if err := tx.Model(&models.AssetKind{}).
				Where("parent_name = ? AND module = ?", folder.Name, folder.Module).
				Update("parent_name", parentName).Error; err != nil {
				return fmt.Errorf("catalog service: reassign kinds: %w", err)
			}
		}

		if err := tx.Delete(&folder).Error; err != nil {
			return fmt.Errorf("catalog service: delete folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:    actor,
		Action:   AuditFolderDelete,
		Resource: "folder:" + folder.ID,
		Severity: models.SeverityWarning,
		Details:  fmt.Sprintf("Deleted folder %s", folder.Name),
	})
	s.rebuild(ctx)
	return nil
}

// GetKind loads an asset kind by name.
func (s *CatalogService) GetKind(ctx context.Context, name string) (*models.AssetKind, error) {
	ctx = ensureContext(ctx)

	var kind models.AssetKind
	if err := s.db.WithContext(ctx).First(&kind, "name = ?", strings.TrimSpace(name)).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.NewNotFound("asset kind", name)
		}
		return nil, fmt.Errorf("catalog service: load kind: %w", err)
	}
	return &kind, nil
}

// SaveKind creates or updates an asset kind keyed by name.
func (s *CatalogService) SaveKind(ctx context.Context, actor string, input KindInput) (*models.AssetKind, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("asset kind name is required")
	}
	parentName := trimmedPtr(input.ParentName)
	if parentName != nil && *parentName == name {
		return nil, apperrors.NewBadRequest("asset kind cannot be its own parent")
	}
	module := strings.TrimSpace(input.Module)
	if module == "" {
		module = s.defaultModule
	}
	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = defaultKindIcon
	}

	var saved models.AssetKind
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentName != nil {
			cyclic, err := kindChainContains(tx, *parentName, module, name)
			if err != nil {
				return err
			}
			if cyclic {
				return apperrors.NewBadRequest("asset kind cannot be filed under its own descendant")
			}
		}

		var existing models.AssetKind
		err := tx.First(&existing, "name = ?", name).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Updates(map[string]any{
				"module":      module,
				"icon":        icon,
				"parent_name": parentName,
			}).Error; err != nil {
				return fmt.Errorf("catalog service: update kind: %w", err)
			}
		case isRecordNotFound(err):
			kind := models.AssetKind{Name: name, Module: module, Icon: icon, ParentName: parentName}
			if err := tx.Create(&kind).Error; err != nil {
				if isUniqueConstraintError(err) {
					return apperrors.ErrConflict.WithInternal(err)
				}
				return fmt.Errorf("catalog service: create kind: %w", err)
			}
		default:
			return fmt.Errorf("catalog service: load kind: %w", err)
		}
		return tx.First(&saved, "name = ?", name).Error
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:    actor,
		Action:   AuditKindSave,
		Resource: "kind:" + saved.Name,
		Details:  fmt.Sprintf("Saved asset kind %s", saved.Name),
		Metadata: map[string]any{"module": saved.Module, "parent_name": derefString(saved.ParentName)},
	})
	s.rebuild(ctx)
	return &saved, nil
}

// DeleteKind removes an asset kind. Child kinds move to its parent. Kinds
// still referenced by assets cannot be deleted.
func (s *CatalogService) DeleteKind(ctx context.Context, actor, name string) error {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)

	var kind models.AssetKind
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kind, "name = ?", name).Error; err != nil {
			if isRecordNotFound(err) {
				return apperrors.NewNotFound("asset kind", name)
			}
			return fmt.Errorf("catalog service: load kind: %w", err)
		}

		var inUse int64
		if err := tx.Model(&models.Asset{}).Where("type = ?", kind.Name).Count(&inUse).Error; err != nil {
			return fmt.Errorf("catalog service: count assets: %w", err)
		}
		if inUse > 0 {
			return apperrors.New(apperrors.ErrConflict.Code,
				fmt.Sprintf("asset kind %q is used by %d assets", kind.Name, inUse),
				apperrors.ErrConflict.StatusCode)
		}

		if err := tx.Model(&models.AssetKind{}).
			Where("parent_name = ?", kind.Name).
			Update("parent_name", kind.ParentName).Error; err != nil {
			return fmt.Errorf("catalog service: reassign child kinds: %w", err)
		}
		if err := tx.Delete(&kind).Error; err != nil {
			return fmt.Errorf("catalog service: delete kind: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		Actor:    actor,
		Action:   AuditKindDelete,
		Resource: "kind:" + kind.Name,
		Severity: models.SeverityWarning,
		Details:  fmt.Sprintf("Deleted asset kind %s", kind.Name),
	})
	s.rebuild(ctx)
	return nil
}

// folderChainContains walks up from start and reports whether target is met.
func folderChainContains(tx *gorm.DB, start, target string) (bool, error) {
	current := start
	for depth := 0; depth < maxParentDepth; depth++ {
		if current == target {
			return true, nil
		}
		var folder models.Folder
		err := tx.Select("id", "parent_id").First(&folder, "id = ?", current).Error
		if isRecordNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("catalog service: walk parents: %w", err)
		}
		if folder.ParentID == nil {
			return false, nil
		}
		current = *folder.ParentID
	}
	return true, nil
}

// folderNameOwner returns the folder that kinds naming name in module
// resolve to: the first match in listing order.
func folderNameOwner(tx *gorm.DB, name, module string) (string, error) {
	var owner models.Folder
	err := tx.Select("id").
		Where("name = ? AND module = ?", name, module).
		Order(folderOrder).
		First(&owner).Error
	if isRecordNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog service: resolve folder name: %w", err)
	}
	return owner.ID, nil
}

// kindChainContains walks parent names from start and reports whether target
// is reached. A name that matches a folder in the current module ends the
// chain, since folders win name resolution.
func kindChainContains(tx *gorm.DB, start, module, target string) (bool, error) {
	current, currentModule := start, module
	for depth := 0; depth < maxParentDepth; depth++ {
		var folders int64
		if err := tx.Model(&models.Folder{}).
			Where("name = ? AND module = ?", current, currentModule).
			Count(&folders).Error; err != nil {
			return false, fmt.Errorf("catalog service: walk kind parents: %w", err)
		}
		if folders > 0 {
			return false, nil
		}
		if current == target {
			return true, nil
		}
		var kind models.AssetKind
		err := tx.Select("name", "module", "parent_name").First(&kind, "name = ?", current).Error
		if isRecordNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("catalog service: walk kind parents: %w", err)
		}
		if kind.ParentName == nil {
			return false, nil
		}
		current, currentModule = *kind.ParentName, kind.Module
	}
	return true, nil
}

func (s *CatalogService) rebuild(ctx context.Context) {
	if s.rebuilder == nil {
		return
	}
	if _, err := s.rebuilder.Rebuild(ctx); err != nil {
		logger.WithModule("catalog").Warn("hierarchy rebuild after mutation failed", zap.Error(err))
	}
}
