// Package asset provides asset lifecycle operations, including moves
// between locations recorded as movement logs.
package asset

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// CreateOpts holds parameters for creating an asset.
type CreateOpts struct {
	Name              string
	AssetType         string
	Notes             string
	Quantity          *int
	CurrentLocationID *string
	ParentID          *string
}

// Create creates an asset. Quantity is only accepted for countable
// subtypes.
func Create(db *gorm.DB, opts CreateOpts) (*models.Asset, error) {
	if opts.Name == "" {
		return nil, apperr.Validation("required", "asset name is required")
	}
	if !models.ValidAssetType(opts.AssetType) {
		return nil, apperr.Validation("asset_type", "unknown asset type %q", opts.AssetType)
	}
	if opts.Quantity != nil {
		if !models.Countable(opts.AssetType) {
			return nil, apperr.Validation("quantity", "%s assets do not carry a quantity", opts.AssetType)
		}
		if *opts.Quantity < 0 {
			return nil, apperr.Validation("quantity", "quantity must not be negative")
		}
	}

	var asset *models.Asset
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.CurrentLocationID != nil {
			if _, err := hierarchy.Get[models.Location](tx, "location", *opts.CurrentLocationID); err != nil {
				return err
			}
		}
		if opts.ParentID != nil {
			if _, err := hierarchy.Get[models.Asset](tx, "asset", *opts.ParentID); err != nil {
				return err
			}
		}
		id, err := models.UniqueID(tx, "asset", &models.Asset{})
		if err != nil {
			return err
		}
		asset = &models.Asset{
			ID:                id,
			Name:              opts.Name,
			AssetType:         opts.AssetType,
			Status:            models.AssetActive,
			Notes:             opts.Notes,
			Quantity:          opts.Quantity,
			CurrentLocationID: opts.CurrentLocationID,
			ParentID:          opts.ParentID,
		}
		if err := tx.Create(asset).Error; err != nil {
			return fmt.Errorf("asset: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Get retrieves an asset by ID.
func Get(db *gorm.DB, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := db.Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("asset", id)
		}
		return nil, fmt.Errorf("asset: get %s: %w", id, err)
	}
	return &asset, nil
}

// UpdateOpts holds optional field changes; nil fields are untouched.
// The asset type is fixed at creation.
type UpdateOpts struct {
	Name        *string
	Notes       *string
	Quantity    *int
	ParentID    *string
	ClearParent bool
}

// Update applies a partial update. Location changes go through Move so
// that every relocation leaves a movement log.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Asset, error) {
	var updated *models.Asset
	err := db.Transaction(func(tx *gorm.DB) error {
		asset, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.Name != nil {
			if *opts.Name == "" {
				return apperr.Validation("required", "asset name is required")
			}
			asset.Name = *opts.Name
		}
		if opts.Notes != nil {
			asset.Notes = *opts.Notes
		}
		if opts.Quantity != nil {
			if !models.Countable(asset.AssetType) {
				return apperr.Validation("quantity", "%s assets do not carry a quantity", asset.AssetType)
			}
			if *opts.Quantity < 0 {
				return apperr.Validation("quantity", "quantity must not be negative")
			}
			asset.Quantity = opts.Quantity
		}
		if err := tx.Save(asset).Error; err != nil {
			return fmt.Errorf("asset: update %s: %w", id, err)
		}

		if opts.ClearParent {
			if err := hierarchy.SetParent[models.Asset](tx, "asset", id, nil); err != nil {
				return err
			}
			asset.ParentID = nil
		} else if opts.ParentID != nil {
			if err := hierarchy.SetParent[models.Asset](tx, "asset", id, opts.ParentID); err != nil {
				return err
			}
			asset.ParentID = opts.ParentID
		}

		updated = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Move relocates an asset to a new location, writing a movement log
// and the location change atomically. notes lands on the log entry.
func Move(db *gorm.DB, id, toLocationID, notes string) (*models.FarmLog, error) {
	var log *models.FarmLog
	err := db.Transaction(func(tx *gorm.DB) error {
		asset, err := Get(tx, id)
		if err != nil {
			return err
		}
		if !models.Movable(asset.AssetType) {
			return apperr.Validation("movable", "%s assets are fixed in place", asset.AssetType)
		}
		if asset.Status == models.AssetArchived {
			return apperr.Validation("archived", "asset %s is archived", id)
		}
		dest, err := hierarchy.Get[models.Location](tx, "location", toLocationID)
		if err != nil {
			return err
		}
		if asset.CurrentLocationID != nil && *asset.CurrentLocationID == toLocationID {
			return apperr.Validation("no_op", "asset %s is already at %s", id, toLocationID)
		}

		logID, err := models.UniqueID(tx, "log", &models.FarmLog{})
		if err != nil {
			return err
		}
		log = &models.FarmLog{
			ID:             logID,
			Name:           fmt.Sprintf("Move %s to %s", asset.Name, dest.Name),
			LogType:        models.LogMovement,
			Status:         models.LogDone,
			Notes:          notes,
			Timestamp:      time.Now().UTC(),
			FromLocationID: asset.CurrentLocationID,
			ToLocationID:   &dest.ID,
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("asset: create movement log: %w", err)
		}
		if err := tx.Create(&models.LogAsset{LogID: logID, AssetID: id}).Error; err != nil {
			return fmt.Errorf("asset: link movement log: %w", err)
		}
		if err := tx.Model(&models.Asset{}).Where("id = ?", id).
			Update("current_location_id", dest.ID).Error; err != nil {
			return fmt.Errorf("asset: update location: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// Archive soft-deletes an asset. Archived assets keep their history but
// drop out of counts and default listings.
func Archive(db *gorm.DB, id string) (*models.Asset, error) {
	asset, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if asset.Status == models.AssetArchived {
		return asset, nil
	}
	now := time.Now().UTC()
	asset.Status = models.AssetArchived
	asset.ArchivedAt = &now
	if err := db.Save(asset).Error; err != nil {
		return nil, fmt.Errorf("asset: archive %s: %w", id, err)
	}
	return asset, nil
}

// Unarchive restores an archived asset to active.
func Unarchive(db *gorm.DB, id string) (*models.Asset, error) {
	asset, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	asset.Status = models.AssetActive
	asset.ArchivedAt = nil
	if err := db.Save(asset).Error; err != nil {
		return nil, fmt.Errorf("asset: unarchive %s: %w", id, err)
	}
	return asset, nil
}

// ListFilters holds optional filters for listing assets. Archived
// assets are excluded unless IncludeArchived is set.
type ListFilters struct {
	AssetType       string
	LocationID      string
	ParentID        string
	IncludeArchived bool
}

// List returns assets matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Asset, error) {
	q := db.Model(&models.Asset{})
	if !filters.IncludeArchived {
		q = q.Where("status = ?", models.AssetActive)
	}
	if filters.AssetType != "" {
		q = q.Where("asset_type = ?", filters.AssetType)
	}
	if filters.LocationID != "" {
		q = q.Where("current_location_id = ?", filters.LocationID)
	}
	if filters.ParentID != "" {
		q = q.Where("parent_id = ?", filters.ParentID)
	}
	var assets []models.Asset
	if err := q.Order("created_at DESC").Order("id DESC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("asset: list: %w", err)
	}
	return assets, nil
}
