// Package seed loads catalog folders, asset kinds and assets from YAML.
package seed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/assetmgr/assetmgr/internal/database"
	"github.com/assetmgr/assetmgr/internal/services"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

// File is the YAML document accepted by the loader.
type File struct {
	Folders []Folder `yaml:"folders"`
	Kinds   []Kind   `yaml:"kinds"`
	Assets  []Asset  `yaml:"assets"`
}

// Folder is a folder entry. Parent references another folder ID.
type Folder struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Parent   string `yaml:"parent"`
	Module   string `yaml:"module"`
	Icon     string `yaml:"icon"`
	Ordering *int   `yaml:"ordering"`
}

// Kind is an asset kind entry. Parent is a folder or kind name.
type Kind struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
	Icon   string `yaml:"icon"`
	Parent string `yaml:"parent"`
}

// Asset is an asset entry.
type Asset struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Module      string         `yaml:"module"`
	Status      string         `yaml:"status"`
	Serial      string         `yaml:"serial"`
	Location    string         `yaml:"location"`
	AssignedTo  string         `yaml:"assigned_to"`
	Placeholder bool           `yaml:"placeholder"`
	Metadata    map[string]any `yaml:"metadata"`
}

// Result summarises an Apply call.
type Result struct {
	Fingerprint   string `json:"fingerprint"`
	Skipped       bool   `json:"skipped"`
	Folders       int    `json:"folders"`
	Kinds         int    `json:"kinds"`
	Assets        int    `json:"assets"`
	ExistingAsset int    `json:"existing_assets"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	for i, f := range file.Folders {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("seed: folder %d: name is required", i)
		}
	}
	for i, k := range file.Kinds {
		if strings.TrimSpace(k.Name) == "" {
			return nil, fmt.Errorf("seed: kind %d: name is required", i)
		}
	}
	for i, a := range file.Assets {
		if strings.TrimSpace(a.Type) == "" {
			return nil, fmt.Errorf("seed: asset %d: type is required", i)
		}
	}
	return &file, nil
}

// Fingerprint returns the hex sha256 of a seed document.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Loader applies seed documents through the catalog and asset services so
// that validation, auditing and hierarchy rebuilds match the API.
type Loader struct {
	db      *gorm.DB
	catalog *services.CatalogService
	assets  *services.AssetService
	audit   *services.AuditService
	log     *zap.Logger
}

// NewLoader constructs a Loader.
func NewLoader(db *gorm.DB, catalog *services.CatalogService, assets *services.AssetService, audit *services.AuditService) (*Loader, error) {
	if db == nil || catalog == nil || assets == nil {
		return nil, errors.New("seed: db, catalog and asset services are required")
	}
	return &Loader{
		db:      db,
		catalog: catalog,
		assets:  assets,
		audit:   audit,
		log:     logger.WithModule("seed"),
	}, nil
}

// ApplyFile reads path and applies it.
func (l *Loader) ApplyFile(ctx context.Context, actor, path string, force bool) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return l.Apply(ctx, actor, data, force)
}

// Apply loads data unless a document with the same fingerprint was already
// applied. force reapplies regardless. Folders and kinds are upserted;
// assets whose ID already exists are left untouched.
func (l *Loader) Apply(ctx context.Context, actor string, data []byte, force bool) (Result, error) {
	result := Result{Fingerprint: Fingerprint(data)}

	if !force {
		previous, err := database.GetSetting(ctx, l.db, database.SeedFingerprintSetting)
		if err != nil {
			return result, err
		}
		if previous == result.Fingerprint {
			l.log.Info("seed already applied", zap.String("fingerprint", result.Fingerprint))
			result.Skipped = true
			return result, nil
		}
	}

	file, err := Parse(data)
	if err != nil {
		return result, err
	}

	for _, f := range file.Folders {
		if _, err := l.catalog.SaveFolder(ctx, actor, services.FolderInput{
			ID:       f.ID,
			Name:     f.Name,
			ParentID: optional(f.Parent),
			Module:   f.Module,
			Icon:     f.Icon,
			Ordering: f.Ordering,
		}); err != nil {
			return result, fmt.Errorf("seed: folder %q: %w", f.Name, err)
		}
		result.Folders++
	}

	for _, k := range file.Kinds {
		if _, err := l.catalog.SaveKind(ctx, actor, services.KindInput{
			Name:       k.Name,
			Module:     k.Module,
			Icon:       k.Icon,
			ParentName: optional(k.Parent),
		}); err != nil {
			return result, fmt.Errorf("seed: kind %q: %w", k.Name, err)
		}
		result.Kinds++
	}

	for _, a := range file.Assets {
		_, err := l.assets.Create(ctx, actor, services.AssetInput{
			ID:            a.ID,
			ItemName:      a.Name,
			Type:          a.Type,
			Category:      a.Module,
			Status:        a.Status,
			SerialNumber:  a.Serial,
			Location:      a.Location,
			AssignedTo:    a.AssignedTo,
			IsPlaceholder: a.Placeholder,
			Metadata:      a.Metadata,
		})
		switch {
		case err == nil:
			result.Assets++
		case isConflict(err):
			result.ExistingAsset++
		default:
			return result, fmt.Errorf("seed: asset %q: %w", a.Name, err)
		}
	}

	if err := database.UpsertSetting(ctx, l.db, database.SeedFingerprintSetting, result.Fingerprint); err != nil {
		return result, err
	}

	if l.audit != nil {
		if err := l.audit.Log(ctx, services.AuditEntry{
			Actor:    actor,
			Action:   services.AuditCatalogSeed,
			Resource: "catalog",
			Details:  fmt.Sprintf("Applied seed with %d folders, %d kinds and %d assets", result.Folders, result.Kinds, result.Assets),
			Metadata: map[string]any{"fingerprint": result.Fingerprint, "existing_assets": result.ExistingAsset},
		}); err != nil {
			l.log.Warn("seed audit failed", zap.Error(err))
		}
	}

	l.log.Info("seed applied",
		zap.String("fingerprint", result.Fingerprint),
		zap.Int("folders", result.Folders),
		zap.Int("kinds", result.Kinds),
		zap.Int("assets", result.Assets),
	)
	return result, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func isConflict(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrConflict.Code
}
